package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/pkg/logger"
	"github.com/okian/mentorlink/pkg/metrics"
)

const profileKeyPrefix = "profile:"

// maxRetryBackoff bounds the jittered sleep between conflicting attempts.
const maxRetryBackoff = 2 * time.Millisecond

// BadgerStore persists profiles as JSON documents in badger. Transactions are
// optimistic; a commit that loses a conflict is retried from the start.
type BadgerStore struct {
	db         *badger.DB
	logger     logger.Logger
	maxRetries int
}

// OpenBadgerStore opens (or creates) a badger database in dir.
func OpenBadgerStore(dir string, opts ...Option) (*BadgerStore, error) {
	s := newSettings("badger-store", opts)

	bopts := badger.DefaultOptions(dir)
	if s.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, logger: s.logger, maxRetries: s.maxRetries}, nil
}

func profileKey(id string) []byte { return []byte(profileKeyPrefix + id) }

func readProfile(txn *badger.Txn, id string) (*model.Profile, error) {
	item, err := txn.Get(profileKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var p model.Profile
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &p) }); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	return &p, nil
}

func writeProfile(txn *badger.Txn, p *model.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := txn.Set(profileKey(p.ID), data); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, id string) (*model.Profile, error) {
	var p *model.Profile
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = readProfile(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List implements Store. Keys sort by id, so the result does too.
func (s *BadgerStore) List(ctx context.Context) ([]*model.Profile, error) {
	start := time.Now()
	defer observe(driverBadger, "list", start)

	var out []*model.Profile
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(profileKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p model.Profile
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &p) }); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
			out = append(out, &p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// Create implements Store.
func (s *BadgerStore) Create(ctx context.Context, p *model.Profile) error {
	err := s.retry(ctx, func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(profileKey(p.ID))
			switch {
			case err == nil:
				return ErrAlreadyExists
			case !errors.Is(err, badger.ErrKeyNotFound):
				return fmt.Errorf("get profile: %w", err)
			}
			stored := p.Clone()
			stored.Version = 1
			return writeProfile(txn, stored)
		})
	})
	if err != nil {
		return err
	}
	p.Version = 1
	metrics.UpdateProfilesTotal(s.Count(ctx))
	return nil
}

// Update implements Store.
func (s *BadgerStore) Update(ctx context.Context, id string, fn func(p *model.Profile) error) (*model.Profile, error) {
	return updateVia(ctx, s, id, fn)
}

// Txn implements Store.
func (s *BadgerStore) Txn(ctx context.Context, ids []string, fn TxnFunc) (map[string]*model.Profile, error) {
	start := time.Now()
	defer observe(driverBadger, "txn", start)

	ids = uniqueIDs(ids)
	var out map[string]*model.Profile
	err := s.retry(ctx, func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			work := make(map[string]*model.Profile, len(ids))
			for _, id := range ids {
				p, err := readProfile(txn, id)
				if err != nil {
					return fmt.Errorf("%w: %s", err, id)
				}
				work[id] = p
			}

			if err := fn(work); err != nil {
				return err
			}

			for _, id := range ids {
				p := work[id]
				p.ID = id
				p.Version++
				if err := writeProfile(txn, p); err != nil {
					return err
				}
			}
			out = work
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// retry runs op until it stops losing write conflicts.
func (s *BadgerStore) retry(ctx context.Context, op func() error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := op()
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		metrics.RecordStoreConflict(driverBadger)
		if attempt >= s.maxRetries {
			s.logger.Warn(ctx, "transaction conflict retries exhausted", logger.Int("attempts", attempt))
			return fmt.Errorf("%w: %w", ErrTooManyRetries, err)
		}
		s.logger.Debug(ctx, "transaction conflict, retrying", logger.Int("attempt", attempt))
		time.Sleep(rand.N(maxRetryBackoff)) //nolint:gosec // jitter only
	}
}

// Count implements Store.
func (s *BadgerStore) Count(ctx context.Context) int {
	n := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(profileKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}
