package flow

import (
	"context"
	"time"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/internal/service/priority"
	"github.com/sandevgo/kontext/pkg/log"
)

// Controller drives the conversation state machine for one session.
// Not safe for concurrent use; the session serializes calls.
type Controller struct {
	cfg   *config.FlowConfig
	pri   *priority.Prioritizer
	state *core.ConversationState

	// requirements maps an intent value to the context types it needs
	// before the conversation can proceed without clarification.
	requirements map[string][]core.ContextType
}

// TurnInput is everything the controller needs from one processed turn.
type TurnInput struct {
	// Intent is the extracted intent item, nil when none was detected.
	Intent *core.ContextItem
	// Ranked is the prioritized context available this turn.
	Ranked []core.ContextItem
	// BestSimilarity is the highest combined score among prior turns,
	// 0 when there are no candidates.
	BestSimilarity float64
	Now            time.Time
}

// Decision is the controller's verdict for one turn.
type Decision struct {
	Status             core.ConversationStatus
	NeedsClarification bool
	// BestGuess reports degraded mode: the clarification retry bound
	// was exhausted and the session proceeds on its best interpretation.
	BestGuess bool
}

func New(cfg *config.FlowConfig, pri *priority.Prioritizer) *Controller {
	return &Controller{
		cfg:          cfg,
		pri:          pri,
		state:        core.NewConversationState(),
		requirements: defaultRequirements(),
	}
}

// defaultRequirements declares, per intent value, the context types
// that must be present before the intent is actionable.
func defaultRequirements() map[string][]core.ContextType {
	return map[string][]core.ContextType{
		"recommendation": {core.TypeLocation},
		"schedule":       {core.TypeTime},
		"navigation":     {core.TypeLocation, core.TypeTime},
	}
}

// SetRequirements replaces the intent requirements map.
func (c *Controller) SetRequirements(req map[string][]core.ContextType) {
	c.requirements = req
}

// State exposes the conversation state for the downstream generator.
// Callers must treat it as read-only.
func (c *Controller) State() *core.ConversationState {
	return c.state
}

// Advance applies one turn to the state machine and returns the
// resulting decision.
func (c *Controller) Advance(ctx context.Context, in TurnInput) (Decision, error) {
	logger := log.FromCtx(ctx)

	if c.state == nil {
		return Decision{}, core.ErrStateInvariant
	}
	if c.state.Status == core.StatusClosed {
		return Decision{}, core.ErrSessionClosed
	}

	confidence := 0.0
	intentValue := ""
	if in.Intent != nil {
		confidence = in.Intent.Confidence
		intentValue = in.Intent.Value
	}
	c.state.LastIntentConfidence = confidence

	ambiguous := confidence < c.cfg.IntentThreshold
	resolved := in.BestSimilarity >= c.cfg.ResolutionThreshold
	missingInfo := c.missingRequiredInfo(intentValue, in.Ranked)

	needsClarification := (ambiguous || missingInfo) && !resolved

	switch c.state.Status {
	case core.StatusNormal:
		if needsClarification {
			c.state.Status = core.StatusAwaitingClarification
			c.state.ClarificationRetries = 0
			logger.Debug().
				Float64("confidence", confidence).
				Bool("missing_info", missingInfo).
				Msg("intent too ambiguous, requesting clarification")
		}

	case core.StatusAwaitingClarification:
		if !needsClarification {
			c.state.Status = core.StatusNormal
			c.state.ClarificationRetries = 0
		} else {
			c.state.ClarificationRetries++
			if c.state.ClarificationRetries > c.cfg.RetryLimit {
				// Out of retries: report it and continue in best-guess
				// mode rather than failing the session.
				c.state.Status = core.StatusNormal
				c.state.BestGuess = true
				needsClarification = false
				logger.Warn().
					Int("retries", c.state.ClarificationRetries).
					Msg("clarification retry bound exceeded, continuing in best-guess mode")
			}
		}
	}

	c.updateStack(in.Ranked, in.Now)

	return Decision{
		Status:             c.state.Status,
		NeedsClarification: needsClarification && c.state.Status == core.StatusAwaitingClarification,
		BestGuess:          c.state.BestGuess,
	}, nil
}

// missingRequiredInfo reports whether the intent declares required
// context types that the ranked context does not supply.
func (c *Controller) missingRequiredInfo(intentValue string, ranked []core.ContextItem) bool {
	required, ok := c.requirements[intentValue]
	if !ok {
		return false
	}
	present := make(map[core.ContextType]struct{}, len(ranked))
	for _, it := range ranked {
		present[it.Type] = struct{}{}
	}
	for _, t := range required {
		if _, ok := present[t]; !ok {
			return true
		}
	}
	return false
}

// updateStack maintains the most-relevant-first context stack: push
// when a new top-ranked item supersedes the current top by priority,
// pop when the dominant topic changes by more than the configured
// margin. The margin keeps minor score fluctuations from churning the
// stack.
func (c *Controller) updateStack(ranked []core.ContextItem, now time.Time) {
	if len(ranked) == 0 {
		return
	}
	top := ranked[0]

	current, ok := c.state.Top()
	if !ok {
		c.state.ContextStack = []core.ContextItem{top}
		return
	}
	if current.ID == top.ID {
		return
	}

	topScore := c.pri.Score(top, now)
	currentScore := c.pri.Score(current, now)

	if top.Type == core.TypeTopic && current.Type == core.TypeTopic &&
		top.Value != current.Value && topScore > currentScore+c.cfg.TopicMargin {
		// Topic changed decisively: pop the stale topic before pushing.
		c.state.ContextStack = c.state.ContextStack[1:]
	}

	if topScore > currentScore || len(c.state.ContextStack) == 0 {
		c.state.ContextStack = append([]core.ContextItem{top}, c.state.ContextStack...)
		if len(c.state.ContextStack) > c.cfg.StackLimit {
			c.state.ContextStack = c.state.ContextStack[:c.cfg.StackLimit]
		}
	}
}

// Close moves the session to its terminal state. Idempotent.
func (c *Controller) Close() {
	c.state.Status = core.StatusClosed
}
