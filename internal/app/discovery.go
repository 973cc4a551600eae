package service

import (
	"context"
	"time"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/profile"
	"github.com/okian/mentorlink/internal/domain/scoring"
	"github.com/okian/mentorlink/internal/domain/types"
	"github.com/okian/mentorlink/pkg/metrics"
)

// Recommend ranks every other profile as a mentor for learnerID.
func (s *Service) Recommend(ctx context.Context, learnerID string) ([]scoring.MatchResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start := time.Now()

	learner, err := s.store.Get(ctx, learnerID)
	if err != nil {
		return nil, translate(err)
	}
	pool, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	results := s.engine.Recommend(learner, pool)
	metrics.RecordRecommendation(float64(time.Since(start).Microseconds())/1000, len(results))
	return results, nil
}

// SearchMentors returns profiles other than userID whose names or skills
// contain q, capped at the configured maximum.
func (s *Service) SearchMentors(ctx context.Context, userID, q string) ([]*model.Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Profile, 0, min(len(all), s.maxSearchResults))
	for _, p := range all {
		if p.ID == userID || !profile.MatchesQuery(p, q) {
			continue
		}
		out = append(out, p)
		if len(out) == s.maxSearchResults {
			break
		}
	}
	return out, nil
}

// TopMentors returns the first limit rows of the mentor leaderboard. The
// limit is capped at the configured maximum.
func (s *Service) TopMentors(ctx context.Context, limit int) ([]types.RankEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.index.TopN(ctx, min(limit, s.maxLeaderboardLimit))
}

// MentorRank returns the leaderboard row of mentorID.
func (s *Service) MentorRank(ctx context.Context, mentorID string) (types.RankEntry, error) {
	if err := s.ready(); err != nil {
		return types.RankEntry{}, err
	}
	entry, err := s.index.Rank(ctx, mentorID)
	return entry, translate(err)
}
