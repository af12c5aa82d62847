package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/internal/service/extract"
	"github.com/sandevgo/kontext/internal/service/flow"
	"github.com/sandevgo/kontext/internal/service/memstore"
	"github.com/sandevgo/kontext/internal/service/similarity"
	"github.com/sandevgo/kontext/pkg/log"
)

// historyLimit bounds the per-session turn history kept for similarity
// retrieval.
const historyLimit = 50

// Session processes one conversation turn-by-turn. Single-writer: all
// methods are serialized by an internal mutex, and one session must not
// be driven from more than one goroutine at a time.
type Session struct {
	mu sync.Mutex

	id     string
	userID string

	extractor *extract.Extractor
	store     *memstore.Store
	engine    *similarity.Engine
	flow      *flow.Controller
	topK      int

	history []core.RawTurn
	closed  bool
}

// TurnResult is what one processed turn hands to the downstream
// response generator.
type TurnResult struct {
	TurnID             string
	Status             core.ConversationStatus
	NeedsClarification bool
	BestGuess          bool
	// Context is the full prioritized context visible this turn.
	Context []core.ContextItem
	// Similar holds the most similar prior turns, best first.
	Similar []core.SimilarityResult
}

// ProcessTurn runs the full pipeline for one user turn: extract context
// candidates, store and observe them, rank, retrieve similar prior
// turns, and advance the flow state machine.
func (s *Session) ProcessTurn(ctx context.Context, text string, now time.Time) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, core.ErrSessionClosed
	}

	logger := log.FromCtx(ctx)

	turn := core.RawTurn{
		ID:        uuid.NewString(),
		SessionID: s.id,
		UserID:    s.userID,
		Text:      text,
		Keywords:  similarity.Keywords(text),
		Timestamp: now,
	}

	items := s.extractor.Extract(ctx, &turn)

	var intent *core.ContextItem
	for i := range items {
		if err := s.store.Put(ctx, items[i], now); err != nil {
			// Malformed candidates are dropped, the turn goes on.
			logger.Warn().Err(err).Str("turn_id", turn.ID).Msg("context item rejected")
			continue
		}
		if items[i].Type == core.TypeIntent {
			intent = &items[i]
		}
	}
	s.store.Observe(ctx, now)

	ranked := s.store.Query(memstore.QueryFilter{}, now)

	similar := s.engine.MostSimilar(ctx, turn, s.history, s.topK)
	best := 0.0
	if len(similar) > 0 {
		best = similar[0].CombinedScore
	}

	decision, err := s.flow.Advance(ctx, flow.TurnInput{
		Intent:         intent,
		Ranked:         ranked,
		BestSimilarity: best,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	s.history = append(s.history, turn)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}

	return &TurnResult{
		TurnID:             turn.ID,
		Status:             decision.Status,
		NeedsClarification: decision.NeedsClarification,
		BestGuess:          decision.BestGuess,
		Context:            ranked,
		Similar:            similar,
	}, nil
}

// State returns the conversation state for the response generator.
func (s *Session) State() *core.ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.State()
}

// Close runs the promotion sweep, flushing sustained-high-priority
// short-term items to long-term memory, then moves the session to its
// terminal state. Idempotent.
func (s *Session) Close(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.store.Sweep(ctx, now)
	s.flow.Close()
	s.closed = true

	log.FromCtx(ctx).Info().
		Str("session_id", s.id).
		Int("long_term_items", s.store.LongTermLen()).
		Msg("session closed")
}
