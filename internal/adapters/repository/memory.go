package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/pkg/logger"
	"github.com/okian/mentorlink/pkg/metrics"
)

// MemoryStore keeps profiles in a map guarded by a single lock.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*model.Profile
	logger logger.Logger
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := newSettings("memory-store", opts)
	return &MemoryStore{
		byID:   make(map[string]*model.Profile),
		logger: s.logger,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]*model.Profile, error) {
	start := time.Now()
	defer observe(driverMemory, "list", start)

	s.mu.RLock()
	out := make([]*model.Profile, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, p *model.Profile) error {
	s.mu.Lock()
	if _, ok := s.byID[p.ID]; ok {
		s.mu.Unlock()
		return ErrAlreadyExists
	}
	p.Version = 1
	s.byID[p.ID] = p.Clone()
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateProfilesTotal(count)
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(p *model.Profile) error) (*model.Profile, error) {
	return updateVia(ctx, s, id, fn)
}

// Txn implements Store. The whole transaction runs under the write lock.
func (s *MemoryStore) Txn(ctx context.Context, ids []string, fn TxnFunc) (map[string]*model.Profile, error) {
	start := time.Now()
	defer observe(driverMemory, "txn", start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	work := make(map[string]*model.Profile, len(ids))
	for _, id := range ids {
		p, ok := s.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		work[id] = p.Clone()
	}

	if err := fn(work); err != nil {
		return nil, err
	}

	out := make(map[string]*model.Profile, len(work))
	for _, id := range ids {
		p := work[id]
		p.ID = id
		p.Version = s.byID[id].Version + 1
		s.byID[id] = p
		out[id] = p.Clone()
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func observe(driver, op string, start time.Time) {
	metrics.RecordStoreLatency(driver, op, float64(time.Since(start).Microseconds())/1000)
}
