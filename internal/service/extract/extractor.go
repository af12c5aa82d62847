package extract

import (
	"context"
	"time"

	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/pkg/log"
)

const defaultTimeout = 15 * time.Second

// Extractor turns raw conversational turns into typed, confidence-scored
// context candidates. Semantic extraction is delegated to the language
// collaborator; a failed or timed-out call degrades to an empty
// candidate set for the affected turn instead of failing it.
type Extractor struct {
	provider core.LanguageProvider
	timeout  time.Duration
}

func New(provider core.LanguageProvider) *Extractor {
	return &Extractor{
		provider: provider,
		timeout:  defaultTimeout,
	}
}

func (e *Extractor) WithTimeout(d time.Duration) *Extractor {
	e.timeout = d
	return e
}

// Extract produces zero or one candidate per context type for the turn.
// It also enriches the turn in place with collaborator keywords and
// sentiment when provided. Candidates with confidence 0 are dropped,
// not stored; malformed candidates are rejected and logged.
func (e *Extractor) Extract(ctx context.Context, turn *core.RawTurn) []core.ContextItem {
	logger := log.FromCtx(ctx)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	bundle, err := e.provider.ExtractSignals(callCtx, turn.Text)
	if err != nil {
		logger.Warn().Err(err).
			Str("turn_id", turn.ID).
			Msg("signal extraction unavailable, continuing without context")
		return nil
	}
	if bundle == nil {
		return nil
	}

	if len(bundle.Keywords) > 0 {
		turn.Keywords = bundle.Keywords
	}
	if bundle.Sentiment != "" {
		turn.Sentiment = bundle.Sentiment
	}

	var items []core.ContextItem
	for _, t := range core.ContextTypes() {
		sig, ok := bundle.Signals[t]
		if !ok || sig.Confidence == 0 || sig.Value == "" {
			continue
		}
		item := core.NewContextItem(t, sig.Value, sig.Confidence, turn.ID, turn.Timestamp)
		if err := item.Validate(); err != nil {
			logger.Warn().Err(err).
				Str("turn_id", turn.ID).
				Str("type", t.String()).
				Msg("dropping malformed context candidate")
			continue
		}
		items = append(items, item)
	}

	logger.Debug().
		Str("turn_id", turn.ID).
		Int("candidates", len(items)).
		Msg("context extracted")
	return items
}
