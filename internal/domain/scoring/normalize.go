// Package scoring holds the mentor ranking engine: list normalization, depth
// estimation, the star-rank formula, recommendation scoring and the feedback
// rating update.
//
// The star-rank formula (ComputeMentorRank) and the recommendation score
// (Recommend) are separate on purpose. They weight factors differently and
// their outputs are consumed differently (persisted rank vs. per-request sort key).
//
// Rounding: every rounding step uses math.Round (half away from zero), so a raw
// rank of exactly 2.5 maps to 3.
package scoring

import (
	"fmt"
	"math"
	"strings"
)

// NormalizeList turns a loosely typed list value into trimmed, non-empty strings.
// Slices have each element stringified and trimmed, nil elements dropped. A string
// is split on commas. Anything else yields an empty list. Duplicates are kept.
func NormalizeList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if e == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(e)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// LowerList lowercases and trims values for matching, dropping empties.
func LowerList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// lowerSet returns the distinct lowercased values in first-seen order plus a lookup set.
func lowerSet(in []string) ([]string, map[string]struct{}) {
	set := make(map[string]struct{}, len(in))
	uniq := make([]string, 0, len(in))
	for _, s := range LowerList(in) {
		if _, ok := set[s]; ok {
			continue
		}
		set[s] = struct{}{}
		uniq = append(uniq, s)
	}
	return uniq, set
}

// topicCount counts the non-blank topics of a subtopic entry. Stored profiles
// already hold trimmed, non-empty topics (profile.ApplyUpdate), so for them
// this equals len(topics); skipping blanks only matters for raw input.
func topicCount(topics []string) int {
	n := 0
	for _, t := range topics {
		if strings.TrimSpace(t) != "" {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
