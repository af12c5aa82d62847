package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/internal/service/priority"
	"github.com/sandevgo/kontext/pkg/log"
)

// Store owns the short-term and long-term memory tiers for one session.
// It is not safe for concurrent use: one session has one writer. The
// tiers are independent capacity domains; eviction in one never touches
// the other.
type Store struct {
	cfg    *config.MemoryConfig
	pri    *priority.Prioritizer
	userID string

	// Optional durable backend for promoted items. persistMu serializes
	// promotions for the same user across concurrent sessions.
	repo      core.LongTermRepository
	persistMu *sync.Mutex

	short []entry
	long  []entry

	// streaks tracks, per item ID, how many consecutive observed turns
	// the item has scored at or above the promotion threshold.
	streaks map[string]int
}

type entry struct {
	item core.ContextItem
	// superseded items lose retrieval preference to a newer same-type
	// item but stay resident for similarity and audit.
	superseded bool
}

func New(cfg *config.MemoryConfig, pri *priority.Prioritizer, userID string) *Store {
	return &Store{
		cfg:     cfg,
		pri:     pri,
		userID:  userID,
		streaks: make(map[string]int),
	}
}

// WithPersistence attaches a durable backend for promoted items. mu
// must be the per-user mutex shared by all sessions of this user.
func (s *Store) WithPersistence(repo core.LongTermRepository, mu *sync.Mutex) *Store {
	s.repo = repo
	s.persistMu = mu
	return s
}

// Put inserts an item into the short-term tier. A full tier is handled
// by evicting first, so Put always succeeds on a valid item; the only
// error is a malformed item rejected at this boundary.
func (s *Store) Put(ctx context.Context, item core.ContextItem, now time.Time) error {
	if err := item.Validate(); err != nil {
		return err
	}

	for i := range s.short {
		if s.short[i].item.Type == item.Type && s.short[i].item.ExtractedAt.Before(item.ExtractedAt) {
			s.short[i].superseded = true
		}
	}

	if len(s.short) >= s.cfg.ShortTermCapacity {
		s.evictShortTo(ctx, s.cfg.ShortTermCapacity-1, now)
	}
	s.short = append(s.short, entry{item: item})
	return nil
}

// Observe advances promotion streaks by one turn. Items at or above the
// promotion threshold for the configured number of consecutive turns
// are promoted to the long-term tier. Call exactly once per turn.
func (s *Store) Observe(ctx context.Context, now time.Time) {
	for _, e := range s.short {
		if e.superseded {
			delete(s.streaks, e.item.ID)
			continue
		}
		if s.pri.Score(e.item, now) >= s.cfg.PromotionThreshold {
			s.streaks[e.item.ID]++
			if s.streaks[e.item.ID] >= s.cfg.PromotionSustain {
				s.Promote(ctx, e.item, now)
			}
		} else {
			s.streaks[e.item.ID] = 0
		}
	}
}

// Promote copies an item into the long-term tier, evicting first when
// the tier is full, and writes it through to the durable backend when
// one is attached.
func (s *Store) Promote(ctx context.Context, item core.ContextItem, now time.Time) {
	for _, e := range s.long {
		if e.item.ID == item.ID {
			return
		}
	}

	if len(s.long) >= s.cfg.LongTermCapacity {
		s.evictLongTo(ctx, s.cfg.LongTermCapacity-1, now)
	}
	s.long = append(s.long, entry{item: item})
	delete(s.streaks, item.ID)

	log.FromCtx(ctx).Debug().
		Str("type", item.Type.String()).
		Str("item_id", item.ID).
		Msg("context item promoted to long-term memory")

	s.persist(ctx, item)
}

func (s *Store) persist(ctx context.Context, item core.ContextItem) {
	if s.repo == nil {
		return
	}
	if s.persistMu != nil {
		s.persistMu.Lock()
		defer s.persistMu.Unlock()
	}
	if err := s.repo.Put(ctx, s.userID, item); err != nil {
		log.FromCtx(ctx).Warn().Err(err).
			Str("item_id", item.ID).
			Msg("failed to persist promoted item")
	}
}

// Evict enforces both tier capacities. Running it twice in a row with
// no intervening Put is a no-op the second time.
func (s *Store) Evict(ctx context.Context, now time.Time) {
	s.evictShortTo(ctx, s.cfg.ShortTermCapacity, now)
	s.evictLongTo(ctx, s.cfg.LongTermCapacity, now)
}

func (s *Store) evictShortTo(ctx context.Context, n int, now time.Time) {
	s.short = s.evictTo(ctx, s.short, n, now)
}

func (s *Store) evictLongTo(ctx context.Context, n int, now time.Time) {
	s.long = s.evictTo(ctx, s.long, n, now)
}

// evictTo removes the lowest-score entries first, oldest first on ties,
// until at most n remain.
func (s *Store) evictTo(ctx context.Context, tier []entry, n int, now time.Time) []entry {
	logger := log.FromCtx(ctx)
	for len(tier) > n {
		victim := 0
		for i := 1; i < len(tier); i++ {
			vi, vv := tier[i], tier[victim]
			si, sv := s.pri.Score(vi.item, now), s.pri.Score(vv.item, now)
			if si < sv || (si == sv && vi.item.ExtractedAt.Before(vv.item.ExtractedAt)) {
				victim = i
			}
		}
		evicted := tier[victim].item
		tier = append(tier[:victim], tier[victim+1:]...)
		delete(s.streaks, evicted.ID)
		logger.Debug().
			Str("type", evicted.Type.String()).
			Str("item_id", evicted.ID).
			Msg("context item evicted")
	}
	return tier
}

// QueryFilter narrows a Query. Zero values mean "no constraint".
type QueryFilter struct {
	Type     *core.ContextType
	MinScore float64
	Window   time.Duration
}

// Query returns matching items from both tiers ranked by priority.
// Superseded items are excluded. Read-only: store state is unchanged.
func (s *Store) Query(f QueryFilter, now time.Time) []core.ContextItem {
	var out []core.ContextItem
	seen := make(map[string]struct{})

	collect := func(tier []entry) {
		for _, e := range tier {
			if e.superseded {
				continue
			}
			if _, ok := seen[e.item.ID]; ok {
				continue
			}
			if f.Type != nil && e.item.Type != *f.Type {
				continue
			}
			if f.Window > 0 && now.Sub(e.item.ExtractedAt) > f.Window {
				continue
			}
			if s.pri.Score(e.item, now) < f.MinScore {
				continue
			}
			seen[e.item.ID] = struct{}{}
			out = append(out, e.item)
		}
	}
	collect(s.short)
	collect(s.long)

	return s.pri.Rank(out, now)
}

// Sweep runs the session-close promotion pass: every live short-term
// item still at or above the promotion threshold is flushed to the
// long-term tier before teardown.
func (s *Store) Sweep(ctx context.Context, now time.Time) {
	for _, e := range s.short {
		if e.superseded {
			continue
		}
		if s.pri.Score(e.item, now) >= s.cfg.PromotionThreshold {
			s.Promote(ctx, e.item, now)
		}
	}
}

func (s *Store) ShortTermLen() int { return len(s.short) }
func (s *Store) LongTermLen() int  { return len(s.long) }
