package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/types"
	"github.com/okian/mentorlink/pkg/metrics"
)

// Treap-based mentor leaderboard.
//
// Ordering: rank DESC, rating DESC, then mentorID ASC (deterministic).
// "less" means ranks earlier, so an in-order traversal yields the
// leaderboard from best to worst. Subtree sizes give O(log n) positions.

// ratingScale controls fixed-point scaling of ratings.
const ratingScale = 1_000_000_000

type ratingFP int64

func toFixedPoint(x float64) ratingFP {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return ratingFP(math.Round(x * ratingScale))
}

func toFloat(x ratingFP) float64 { return float64(x) / ratingScale }

type key struct {
	rank   int
	rating ratingFP
	id     string
}

// less returns true if a should appear before b on the leaderboard.
func less(a, b key) bool {
	if a.rank != b.rank {
		return a.rank > b.rank
	}
	if a.rating != b.rating {
		return a.rating > b.rating
	}
	return a.id < b.id
}

type record struct {
	key  key
	name string
}

// treap node
type node struct {
	key   key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority hashes the id so the tree shape is random but reproducible.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, k key) *node {
	if n == nil {
		return &node{key: k, prio: priority(k.id), size: 1}
	}
	if less(k, n.key) {
		n.left = insert(n.left, k)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	switch {
	case k == n.key:
		// Rotate the higher priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	case less(k, n.key):
		n.left = deleteNode(n.left, k)
	default:
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// position returns the 1-based in-order position of k, or 0 when absent.
func position(n *node, k key) int {
	before := 0
	for n != nil {
		switch {
		case k == n.key:
			return before + nsize(n.left) + 1
		case less(k, n.key):
			n = n.left
		default:
			before += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit keys in leaderboard order.
func collectTopN(n *node, limit int, out *[]key) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.key)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// RankIndex orders mentors for the leaderboard endpoints. Only profiles that
// list at least one skill are indexed.
//
// Upserts arrive after the store has committed, so two writers can deliver
// their snapshots out of order. The last seen version of every profile is kept,
// including profiles that are not indexed, and older snapshots are ignored.
type RankIndex struct {
	mu       sync.RWMutex
	root     *node
	byID     map[string]record
	versions map[string]uint64
}

// NewRankIndex constructs an empty index.
func NewRankIndex() *RankIndex {
	return &RankIndex{byID: make(map[string]record), versions: make(map[string]uint64)}
}

// Rebuild replaces the index content with profiles.
func (x *RankIndex) Rebuild(ctx context.Context, profiles []*model.Profile) {
	x.mu.Lock()
	x.root = nil
	x.byID = make(map[string]record, len(profiles))
	x.versions = make(map[string]uint64, len(profiles))
	for _, p := range profiles {
		x.upsertLocked(p)
	}
	count := len(x.byID)
	x.mu.Unlock()

	metrics.UpdateMentorsIndexed(count)
}

// Upsert inserts or repositions p. A profile without skills is removed. A
// snapshot older than the last one seen for p.ID is ignored.
func (x *RankIndex) Upsert(ctx context.Context, p *model.Profile) {
	if p == nil {
		return
	}
	x.mu.Lock()
	x.upsertLocked(p)
	count := len(x.byID)
	x.mu.Unlock()

	metrics.UpdateMentorsIndexed(count)
}

func (x *RankIndex) upsertLocked(p *model.Profile) {
	if p == nil {
		return
	}
	if seen, ok := x.versions[p.ID]; ok && p.Version < seen {
		return
	}
	x.versions[p.ID] = p.Version
	if old, ok := x.byID[p.ID]; ok {
		x.root = deleteNode(x.root, old.key)
		delete(x.byID, p.ID)
	}
	if len(p.Skills) == 0 {
		return
	}
	k := key{rank: p.Rank, rating: toFixedPoint(p.Rating), id: p.ID}
	x.byID[p.ID] = record{key: k, name: p.FullName()}
	x.root = insert(x.root, k)
}

// Remove drops id from the index and reports whether it was present.
func (x *RankIndex) Remove(ctx context.Context, id string) bool {
	x.mu.Lock()
	old, ok := x.byID[id]
	if ok {
		x.root = deleteNode(x.root, old.key)
		delete(x.byID, id)
	}
	delete(x.versions, id)
	count := len(x.byID)
	x.mu.Unlock()

	metrics.UpdateMentorsIndexed(count)
	return ok
}

// Rank returns the leaderboard row for id in O(log n).
func (x *RankIndex) Rank(ctx context.Context, id string) (types.RankEntry, error) {
	start := time.Now()
	defer observe("rankindex", "rank", start)

	x.mu.RLock()
	defer x.mu.RUnlock()

	rec, ok := x.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.RankEntry{}, ErrNotFound
	}
	return rankEntry(position(x.root, rec.key), rec), nil
}

// TopN returns the first n leaderboard rows.
func (x *RankIndex) TopN(ctx context.Context, n int) ([]types.RankEntry, error) {
	start := time.Now()
	defer observe("rankindex", "top", start)

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	keys := make([]key, 0, min(n, len(x.byID)))
	collectTopN(x.root, n, &keys)

	out := make([]types.RankEntry, len(keys))
	for i, k := range keys {
		out[i] = rankEntry(i+1, x.byID[k.id])
	}
	return out, nil
}

// Count returns the number of indexed mentors.
func (x *RankIndex) Count(ctx context.Context) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byID)
}

func rankEntry(pos int, rec record) types.RankEntry {
	return types.RankEntry{
		Position: pos,
		MentorID: rec.key.id,
		Name:     rec.name,
		Rank:     rec.key.rank,
		Rating:   toFloat(rec.key.rating),
	}
}
