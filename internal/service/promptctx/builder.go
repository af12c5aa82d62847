package promptctx

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
)

// Builder renders the ranked context and conversation state into the
// block handed to the response generator, capped by a token budget.
// Message wording and formatting for the user stay with the generator;
// this only assembles its context input.
type Builder struct {
	cfg *config.PromptConfig
	enc *tiktoken.Tiktoken
}

func NewBuilder(cfg *config.PromptConfig) (*Builder, error) {
	enc, err := tiktoken.GetEncoding(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("load token encoding %q: %w", cfg.Encoding, err)
	}
	return &Builder{cfg: cfg, enc: enc}, nil
}

// Build assembles the context block. Items are taken in rank order and
// appended until the token budget is spent; lower-ranked items are the
// ones dropped.
func (b *Builder) Build(state *core.ConversationState, ranked []core.ContextItem, similar []core.SimilarityResult) string {
	var sb strings.Builder
	used := 0

	write := func(line string) bool {
		cost := b.countTokens(line)
		if used+cost > b.cfg.TokenBudget {
			return false
		}
		sb.WriteString(line)
		used += cost
		return true
	}

	if len(ranked) > 0 {
		write("### Active Context\n")
		for _, it := range ranked {
			line := fmt.Sprintf("- %s: %s (confidence %.2f)\n", it.Type, it.Value, it.Confidence)
			if !write(line) {
				break
			}
		}
	}

	if state != nil && len(state.ContextStack) > 0 {
		write("\n### Conversation Focus\n")
		for _, it := range state.ContextStack {
			line := fmt.Sprintf("- %s: %s\n", it.Type, it.Value)
			if !write(line) {
				break
			}
		}
	}

	if state != nil {
		if state.Status == core.StatusAwaitingClarification {
			write("\nThe user's intent is unclear; ask a clarifying question.\n")
		} else if state.BestGuess {
			write("\nProceed with the best interpretation of the user's intent.\n")
		}
	}

	if len(similar) > 0 {
		write("\n### Related Past Turns\n")
		for _, s := range similar {
			line := fmt.Sprintf("- turn %s (similarity %.2f)\n", s.TurnB, s.CombinedScore)
			if !write(line) {
				break
			}
		}
	}

	return sb.String()
}

// CountTokens reports the token cost of a context block.
func (b *Builder) CountTokens(text string) int {
	return b.countTokens(text)
}

func (b *Builder) countTokens(text string) int {
	return len(b.enc.Encode(text, nil, nil))
}
