package scoring

import (
	"math"
	"strings"

	"github.com/okian/mentorlink/internal/domain/model"
)

// Depth estimator defaults.
const (
	// DefaultDepthFullTopics is the topic count at which one skill reaches full depth.
	DefaultDepthFullTopics = 8
	// NeutralDepth is returned when no subtopic entry qualifies.
	NeutralDepth = 0.35
)

// EstimateDepth averages min(1, topics/fullTopics) over the subtopic entries whose
// lowercased skill is in matched, or over every entry when matched is empty.
// Entries without topics count as zero depth. With nothing to average the
// neutral prior NeutralDepth is returned. fullTopics <= 0 selects the default.
func EstimateDepth(subtopics []model.Subtopic, matched map[string]struct{}, fullTopics int) float64 {
	if fullTopics <= 0 {
		fullTopics = DefaultDepthFullTopics
	}

	var total float64
	n := 0
	for _, st := range subtopics {
		if len(matched) > 0 {
			if _, ok := matched[strings.ToLower(strings.TrimSpace(st.Skill))]; !ok {
				continue
			}
		}
		total += math.Min(1, float64(topicCount(st.Topics))/float64(fullTopics))
		n++
	}
	if n == 0 {
		return NeutralDepth
	}
	return total / float64(n)
}
