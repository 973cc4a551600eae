// Package repository stores profiles and maintains the mentor rank index.
package repository

import (
	"context"

	"github.com/okian/mentorlink/internal/domain/model"
)

// Storage driver names used in metrics.
const (
	driverMemory = "memory"
	driverBadger = "badger"
)

// TxnFunc mutates the profiles loaded for a transaction. Returning an error
// aborts the transaction and leaves every profile untouched.
type TxnFunc func(profiles map[string]*model.Profile) error

// Store provides read/write access to profiles. Every method hands out
// copies, so callers never share memory with the stored state.
type Store interface {
	// Get returns the profile for id or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Profile, error)

	// List returns every profile ordered by id.
	List(ctx context.Context) ([]*model.Profile, error)

	// Create stores a new profile. Returns ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, p *model.Profile) error

	// Update applies fn to the profile for id atomically and returns the result.
	Update(ctx context.Context, id string, fn func(p *model.Profile) error) (*model.Profile, error)

	// Txn loads every id, applies fn and commits all changes atomically.
	// Each committed profile gets its Version bumped.
	Txn(ctx context.Context, ids []string, fn TxnFunc) (map[string]*model.Profile, error)

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int

	// Close releases the underlying resources.
	Close() error
}

// uniqueIDs drops repeated ids while keeping their order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func updateVia(ctx context.Context, s Store, id string, fn func(p *model.Profile) error) (*model.Profile, error) {
	out, err := s.Txn(ctx, []string{id}, func(m map[string]*model.Profile) error {
		return fn(m[id])
	})
	if err != nil {
		return nil, err
	}
	return out[id], nil
}
