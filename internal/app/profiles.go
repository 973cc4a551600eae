package service

import (
	"context"
	"errors"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/profile"
)

// NewProfile is the data needed to create a profile for an authenticated user.
type NewProfile struct {
	Email     string
	FirstName string
	LastName  string
}

// CreateProfile creates the profile of userID with the marketplace defaults.
func (s *Service) CreateProfile(ctx context.Context, userID string, in NewProfile) (*model.Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p, err := profile.New(userID, in.Email, in.FirstName, in.LastName, s.now())
	if errors.Is(err, profile.ErrEmailRequired) {
		return nil, errors.Join(ErrInvalidRequest, err)
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, translate(err)
	}
	s.index.Upsert(ctx, p)
	return p, nil
}

// GetProfile returns the profile of id.
func (s *Service) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, id)
	return p, translate(err)
}

// UpdateProfile applies a partial edit to the profile of id.
func (s *Service) UpdateProfile(ctx context.Context, id string, u profile.Update) (*model.Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p, err := s.store.Update(ctx, id, func(p *model.Profile) error {
		profile.ApplyUpdate(p, u, s.now())
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	s.index.Upsert(ctx, p)
	return p, nil
}

// reindex refreshes the rank index for every profile a transaction committed.
func (s *Service) reindex(ctx context.Context, profiles map[string]*model.Profile) {
	for _, p := range profiles {
		s.index.Upsert(ctx, p)
	}
}
