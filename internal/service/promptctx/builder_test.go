package promptctx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
)

var now = time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)

func ranked() []core.ContextItem {
	return []core.ContextItem{
		core.NewContextItem(core.TypeLocation, "seoul", 0.9, "t1", now),
		core.NewContextItem(core.TypeTime, "tomorrow", 0.8, "t1", now),
		core.NewContextItem(core.TypeTopic, "travel", 0.7, "t1", now),
	}
}

func TestBuild_Sections(t *testing.T) {
	b, err := NewBuilder(config.DefaultPromptConfig())
	require.NoError(t, err)

	state := core.NewConversationState()
	state.ContextStack = ranked()[:1]

	out := b.Build(state, ranked(), []core.SimilarityResult{
		{TurnA: "cur", TurnB: "old", CombinedScore: 0.62},
	})

	assert.Contains(t, out, "### Active Context")
	assert.Contains(t, out, "- location: seoul (confidence 0.90)")
	assert.Contains(t, out, "### Conversation Focus")
	assert.Contains(t, out, "### Related Past Turns")
	assert.Contains(t, out, "similarity 0.62")
	assert.NotContains(t, out, "clarifying question")
}

func TestBuild_ClarificationHint(t *testing.T) {
	b, err := NewBuilder(config.DefaultPromptConfig())
	require.NoError(t, err)

	state := core.NewConversationState()
	state.Status = core.StatusAwaitingClarification

	out := b.Build(state, ranked(), nil)
	assert.Contains(t, out, "ask a clarifying question")
}

func TestBuild_BestGuessHint(t *testing.T) {
	b, err := NewBuilder(config.DefaultPromptConfig())
	require.NoError(t, err)

	state := core.NewConversationState()
	state.BestGuess = true

	out := b.Build(state, ranked(), nil)
	assert.Contains(t, out, "best interpretation")
}

func TestBuild_RespectsTokenBudget(t *testing.T) {
	cfg := config.DefaultPromptConfig()
	cfg.TokenBudget = 25
	b, err := NewBuilder(cfg)
	require.NoError(t, err)

	full, err := NewBuilder(config.DefaultPromptConfig())
	require.NoError(t, err)

	out := b.Build(core.NewConversationState(), ranked(), nil)

	assert.LessOrEqual(t, b.CountTokens(out), 25)

	unbounded := full.Build(core.NewConversationState(), ranked(), nil)
	assert.Less(t, len(out), len(unbounded), "lower-ranked items are dropped first")
	assert.True(t, strings.HasPrefix(unbounded, out), "truncation keeps the highest-ranked prefix")
}

func TestBuild_EmptyInputs(t *testing.T) {
	b, err := NewBuilder(config.DefaultPromptConfig())
	require.NoError(t, err)

	out := b.Build(core.NewConversationState(), nil, nil)
	assert.Empty(t, out)
}
