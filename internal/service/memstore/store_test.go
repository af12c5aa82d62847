package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/internal/service/priority"
)

var now = time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)

func newStore(shortCap, longCap int) *Store {
	cfg := config.DefaultMemoryConfig()
	cfg.ShortTermCapacity = shortCap
	cfg.LongTermCapacity = longCap
	return New(cfg, priority.New(config.DefaultPriorityConfig()), "user-1")
}

func item(t core.ContextType, confidence float64, extractedAt time.Time) core.ContextItem {
	return core.NewContextItem(t, "v", confidence, "turn-1", extractedAt)
}

// fakeRepo is an in-memory LongTermRepository.
type fakeRepo struct {
	mu    sync.Mutex
	items map[string][]core.ContextItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string][]core.ContextItem)}
}

func (r *fakeRepo) Get(_ context.Context, userID string, t *core.ContextType) ([]core.ContextItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.ContextItem
	for _, it := range r.items[userID] {
		if t == nil || it.Type == *t {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeRepo) Put(_ context.Context, userID string, it core.ContextItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[userID] = append(r.items[userID], it)
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[userID][:0]
	for _, it := range r.items[userID] {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	r.items[userID] = kept
	return nil
}

func TestPut_RejectsInvalidItems(t *testing.T) {
	ctx := context.Background()
	s := newStore(5, 10)

	bad := item(core.TypeTopic, 1.5, now)
	err := s.Put(ctx, bad, now)
	require.ErrorIs(t, err, core.ErrInvalidContextItem)
	assert.Zero(t, s.ShortTermLen())

	bad = item(core.ContextType("mood"), 0.5, now)
	require.ErrorIs(t, s.Put(ctx, bad, now), core.ErrInvalidContextItem)
}

func TestPut_NeverExceedsCapacity(t *testing.T) {
	ctx := context.Background()
	s := newStore(3, 10)

	for i := 0; i < 20; i++ {
		at := now.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.Put(ctx, item(core.TypeTopic, 0.5, at), at))
		assert.LessOrEqual(t, s.ShortTermLen(), 3)
	}
	assert.Equal(t, 3, s.ShortTermLen())
}

func TestPut_SupersedesOlderSameType(t *testing.T) {
	ctx := context.Background()
	s := newStore(5, 10)

	old := item(core.TypeLocation, 0.9, now.Add(-time.Minute))
	newer := item(core.TypeLocation, 0.8, now)
	require.NoError(t, s.Put(ctx, old, now))
	require.NoError(t, s.Put(ctx, newer, now))

	// Retrieval prefers the newer item; the older one stays resident
	// for audit but is no longer returned.
	loc := core.TypeLocation
	got := s.Query(QueryFilter{Type: &loc}, now)
	require.Len(t, got, 1)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, 2, s.ShortTermLen())
}

func TestEvict_LowestPriorityFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(2, 10)

	strong := item(core.TypeLocation, 0.9, now)
	weak := item(core.TypeIntent, 0.1, now.Add(-48*time.Hour))
	mid := item(core.TypeTopic, 0.6, now)

	require.NoError(t, s.Put(ctx, strong, now))
	require.NoError(t, s.Put(ctx, weak, now))
	require.NoError(t, s.Put(ctx, mid, now))

	got := s.Query(QueryFilter{}, now)
	ids := []string{got[0].ID, got[1].ID}
	assert.Contains(t, ids, strong.ID)
	assert.Contains(t, ids, mid.ID)
	assert.NotContains(t, ids, weak.ID)
}

func TestEvict_TieBreaksOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(2, 10)

	// Equal scores: location 0.3 and time 0.4 both score 0.072 in the
	// recent class. The older of the tied pair goes first.
	a := item(core.TypeLocation, 0.3, now.Add(-10*time.Minute))
	b := item(core.TypeTime, 0.4, now.Add(-5*time.Minute))
	c := item(core.TypeTopic, 0.9, now)

	require.NoError(t, s.Put(ctx, a, now))
	require.NoError(t, s.Put(ctx, b, now))
	require.NoError(t, s.Put(ctx, c, now))

	got := s.Query(QueryFilter{}, now)
	require.Len(t, got, 2)
	for _, it := range got {
		assert.NotEqual(t, a.ID, it.ID, "oldest of the tied pair must be evicted")
	}
}

func TestEvict_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(3, 10)

	for i := 0; i < 3; i++ {
		at := now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Put(ctx, item(core.TypeTopic, 0.5, at), at))
	}

	before := s.Query(QueryFilter{}, now)
	s.Evict(ctx, now)
	middle := s.Query(QueryFilter{}, now)
	s.Evict(ctx, now)
	after := s.Query(QueryFilter{}, now)

	assert.Equal(t, before, middle)
	assert.Equal(t, middle, after)
	assert.Equal(t, 3, s.ShortTermLen())
}

func TestObserve_PromotesAfterSustainedScore(t *testing.T) {
	ctx := context.Background()
	s := newStore(10, 10)

	it := item(core.TypeLocation, 0.9, now) // recent score 0.216 >= 0.15
	require.NoError(t, s.Put(ctx, it, now))

	s.Observe(ctx, now)
	assert.Zero(t, s.LongTermLen(), "absent before the sustain count")
	s.Observe(ctx, now.Add(time.Second))
	assert.Zero(t, s.LongTermLen(), "absent before the sustain count")
	s.Observe(ctx, now.Add(2*time.Second))
	assert.Equal(t, 1, s.LongTermLen(), "present after sustaining three turns")
}

func TestObserve_StreakResetsBelowThreshold(t *testing.T) {
	ctx := context.Background()
	s := newStore(10, 10)

	it := item(core.TypeIntent, 0.9, now) // recent score 0.6*0.1*0.9 = 0.054 < 0.15
	require.NoError(t, s.Put(ctx, it, now))

	for i := 0; i < 5; i++ {
		s.Observe(ctx, now.Add(time.Duration(i)*time.Second))
	}
	assert.Zero(t, s.LongTermLen())
}

func TestPromote_WritesThroughToRepository(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	var mu sync.Mutex
	s := newStore(10, 10).WithPersistence(repo, &mu)

	it := item(core.TypeLocation, 0.9, now)
	require.NoError(t, s.Put(ctx, it, now))
	s.Promote(ctx, it, now)

	stored, err := repo.Get(ctx, "user-1", nil)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, it.ID, stored[0].ID)

	// Promoting the same item again is a no-op, not a duplicate write.
	s.Promote(ctx, it, now)
	stored, err = repo.Get(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSweep_FlushesHighPriorityItems(t *testing.T) {
	ctx := context.Background()
	s := newStore(10, 10)

	keep := item(core.TypeLocation, 0.9, now)    // 0.216 >= threshold
	discard := item(core.TypeIntent, 0.2, now)   // 0.012 < threshold
	require.NoError(t, s.Put(ctx, keep, now))
	require.NoError(t, s.Put(ctx, discard, now))

	s.Sweep(ctx, now)

	require.Equal(t, 1, s.LongTermLen())
	got := s.Query(QueryFilter{}, now)
	assert.Equal(t, keep.ID, got[0].ID)
}

func TestQuery_Filters(t *testing.T) {
	ctx := context.Background()
	s := newStore(10, 10)

	loc := item(core.TypeLocation, 0.9, now)
	stale := item(core.TypeTopic, 0.9, now.Add(-3*time.Hour))
	weak := item(core.TypeIntent, 0.05, now)
	require.NoError(t, s.Put(ctx, loc, now))
	require.NoError(t, s.Put(ctx, stale, now))
	require.NoError(t, s.Put(ctx, weak, now))

	locType := core.TypeLocation
	byType := s.Query(QueryFilter{Type: &locType}, now)
	require.Len(t, byType, 1)
	assert.Equal(t, loc.ID, byType[0].ID)

	inWindow := s.Query(QueryFilter{Window: time.Hour}, now)
	for _, it := range inWindow {
		assert.NotEqual(t, stale.ID, it.ID)
	}

	scored := s.Query(QueryFilter{MinScore: 0.1}, now)
	for _, it := range scored {
		assert.NotEqual(t, weak.ID, it.ID)
	}
}

func TestTiers_IndependentCapacityDomains(t *testing.T) {
	ctx := context.Background()
	s := newStore(2, 1)

	a := item(core.TypeLocation, 0.9, now)
	b := item(core.TypeTopic, 0.9, now)
	require.NoError(t, s.Put(ctx, a, now))
	require.NoError(t, s.Put(ctx, b, now))

	s.Promote(ctx, a, now)
	s.Promote(ctx, b, now) // long-term evicts internally

	assert.Equal(t, 2, s.ShortTermLen(), "long-term eviction must not touch short-term")
	assert.Equal(t, 1, s.LongTermLen())
}
