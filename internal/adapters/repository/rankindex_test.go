package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/okian/mentorlink/internal/domain/model"
)

func mentor(id string, rank int, rating float64) *model.Profile {
	return &model.Profile{ID: id, FirstName: id, Skills: []string{"go"}, Rank: rank, Rating: rating}
}

func TestRankIndex_Ordering(t *testing.T) {
	ctx := context.Background()
	idx := NewRankIndex()

	idx.Upsert(ctx, mentor("c", 4, 4.5))
	idx.Upsert(ctx, mentor("a", 5, 3.0))
	idx.Upsert(ctx, mentor("b", 4, 4.5))
	idx.Upsert(ctx, mentor("d", 4, 4.9))

	top, err := idx.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "d", "b", "c"}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, id := range want {
		if top[i].MentorID != id {
			t.Errorf("position %d: expected %s, got %s", i+1, id, top[i].MentorID)
		}
		if top[i].Position != i+1 {
			t.Errorf("expected position %d, got %d", i+1, top[i].Position)
		}
	}
	if top[1].Rating != 4.9 {
		t.Errorf("expected rating 4.9, got %f", top[1].Rating)
	}

	entry, err := idx.Rank(ctx, "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Position != 3 || entry.Rank != 4 || entry.Name != "b" {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestRankIndex_Upsert(t *testing.T) {
	ctx := context.Background()
	idx := NewRankIndex()

	idx.Upsert(ctx, mentor("a", 3, 3))
	idx.Upsert(ctx, mentor("b", 2, 3))
	idx.Upsert(ctx, mentor("b", 5, 4.2))

	if n := idx.Count(ctx); n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
	entry, err := idx.Rank(ctx, "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Position != 1 || entry.Rank != 5 {
		t.Errorf("expected b first with rank 5, got %+v", entry)
	}

	// Dropping every skill removes the mentor.
	idx.Upsert(ctx, &model.Profile{ID: "b", Rank: 5})
	if _, err := idx.Rank(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !idx.Remove(ctx, "a") {
		t.Error("expected a to be removed")
	}
	if idx.Remove(ctx, "a") {
		t.Error("expected second removal to report false")
	}
	if n := idx.Count(ctx); n != 0 {
		t.Errorf("expected empty index, got %d", n)
	}
}

func TestRankIndex_IgnoresStaleSnapshots(t *testing.T) {
	ctx := context.Background()
	idx := NewRankIndex()

	newer := mentor("m", 4, 4.2)
	newer.Version = 6
	older := mentor("m", 5, 4.8)
	older.Version = 5

	idx.Upsert(ctx, newer)
	idx.Upsert(ctx, older)

	entry, err := idx.Rank(ctx, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 4 || entry.Rating != 4.2 {
		t.Errorf("expected the v6 snapshot to stay, got %+v", entry)
	}

	// A newer snapshot without skills removes the mentor, and an older one
	// with skills must not bring it back.
	cleared := mentor("m", 4, 4.2)
	cleared.Skills = nil
	cleared.Version = 7
	idx.Upsert(ctx, cleared)
	idx.Upsert(ctx, older)
	if _, err := idx.Rank(ctx, "m"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after stale re-add, got %v", err)
	}

	next := mentor("m", 3, 3.9)
	next.Version = 8
	idx.Upsert(ctx, next)
	if entry, err := idx.Rank(ctx, "m"); err != nil || entry.Rank != 3 {
		t.Errorf("expected v8 snapshot, got %+v %v", entry, err)
	}
}

func TestRankIndex_EdgeCases(t *testing.T) {
	ctx := context.Background()
	idx := NewRankIndex()

	if _, err := idx.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	top, err := idx.TopN(ctx, 5)
	if err != nil || len(top) != 0 {
		t.Errorf("expected empty result, got %v %v", top, err)
	}
	if _, err := idx.Rank(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	idx.Upsert(ctx, nil)

	idx.Rebuild(ctx, []*model.Profile{mentor("x", 1, 1), mentor("y", 2, 1), {ID: "z"}})
	top, _ = idx.TopN(ctx, 1)
	if len(top) != 1 || top[0].MentorID != "y" {
		t.Errorf("expected y on top after rebuild, got %+v", top)
	}
	if n := idx.Count(ctx); n != 2 {
		t.Errorf("expected 2 indexed mentors, got %d", n)
	}
}

func TestRankIndex_MatchesSort(t *testing.T) {
	ctx := context.Background()
	idx := NewRankIndex()
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test data

	latest := map[string]*model.Profile{}
	for i := 0; i < 5000; i++ {
		p := mentor(fmt.Sprintf("m-%03d", rng.Intn(400)), 1+rng.Intn(5), 1+float64(rng.Intn(9))/2)
		latest[p.ID] = p
		idx.Upsert(ctx, p)
	}

	expected := make([]*model.Profile, 0, len(latest))
	for _, p := range latest {
		expected = append(expected, p)
	}
	sort.Slice(expected, func(i, j int) bool {
		a, b := expected[i], expected[j]
		if a.Rank != b.Rank {
			return a.Rank > b.Rank
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.ID < b.ID
	})

	top, err := idx.TopN(ctx, len(expected))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range expected {
		if top[i].MentorID != p.ID {
			t.Fatalf("position %d: expected %s, got %s", i+1, p.ID, top[i].MentorID)
		}
		entry, err := idx.Rank(ctx, p.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Position != i+1 {
			t.Fatalf("rank of %s: expected %d, got %d", p.ID, i+1, entry.Position)
		}
	}
}

func TestRankIndex_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	idx := NewRankIndex()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("m-%d-%d", g, i%20)
				idx.Upsert(ctx, mentor(id, 1+i%5, 3))
				_, _ = idx.TopN(ctx, 5)
				_, _ = idx.Rank(ctx, id)
			}
		}(g)
	}
	wg.Wait()

	if n := idx.Count(ctx); n != 160 {
		t.Errorf("expected 160 mentors, got %d", n)
	}
	if size := nsize(idx.root); size != 160 {
		t.Errorf("expected tree size 160, got %d", size)
	}
}
