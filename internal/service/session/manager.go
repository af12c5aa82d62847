package session

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/internal/service/extract"
	"github.com/sandevgo/kontext/internal/service/flow"
	"github.com/sandevgo/kontext/internal/service/memstore"
	"github.com/sandevgo/kontext/internal/service/priority"
	"github.com/sandevgo/kontext/internal/service/similarity"
	"github.com/sandevgo/kontext/pkg/log"
)

// Config bundles the per-concern configuration a Manager wires into
// each session.
type Config struct {
	Memory     *config.MemoryConfig
	Priority   *config.PriorityConfig
	Similarity *config.SimilarityConfig
	Flow       *config.FlowConfig
}

// Manager owns all active sessions. Sessions are independent; the only
// shared mutable resource is the long-term repository, guarded by a
// per-user mutex so concurrent promotions for the same user serialize.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	userLocks map[string]*sync.Mutex

	cfg      Config
	provider core.LanguageProvider
	repo     core.LongTermRepository // may be nil
}

func NewManager(cfg Config, provider core.LanguageProvider, repo core.LongTermRepository) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		userLocks: make(map[string]*sync.Mutex),
		cfg:       cfg,
		provider:  provider,
		repo:      repo,
	}
}

// Open creates (or returns) the session for the given IDs.
func (m *Manager) Open(sessionID, userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		return s
	}

	pri := priority.New(m.cfg.Priority)
	store := memstore.New(m.cfg.Memory, pri, userID)
	if m.repo != nil {
		store.WithPersistence(m.repo, m.userLock(userID))
	}

	s := &Session{
		id:        sessionID,
		userID:    userID,
		extractor: extract.New(m.provider),
		store:     store,
		engine:    similarity.New(m.cfg.Similarity, m.provider),
		flow:      flow.New(m.cfg.Flow, pri),
		topK:      m.cfg.Similarity.TopK,
	}
	m.sessions[sessionID] = s
	return s
}

// Get returns an open session or ErrStateInvariant when the session is
// unknown: an active conversation without state is fatal for that
// session only.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, core.ErrStateInvariant
	}
	return s, nil
}

// Close ends a session: promotion sweep, terminal state, removal.
func (m *Manager) Close(ctx context.Context, sessionID string, now time.Time) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok {
		s.Close(ctx, now)
	}
}

// CloseAll ends every active session, used at shutdown. Remaining turns
// are abandoned; each session goes straight to its closing sweep.
func (m *Manager) CloseAll(ctx context.Context, now time.Time) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close(ctx, now)
	}
	log.FromCtx(ctx).Info().Int("count", len(sessions)).Msg("all sessions closed")
}

func (m *Manager) userLock(userID string) *sync.Mutex {
	if mu, ok := m.userLocks[userID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	m.userLocks[userID] = mu
	return mu
}

// Start implements srv.Service; the manager is passive until turns
// arrive.
func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Shutdown implements srv.Service.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.CloseAll(context.WithoutCancel(ctx), time.Now())
	return nil
}
