package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
)

var now = time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)

func item(t core.ContextType, confidence float64, extractedAt time.Time) core.ContextItem {
	return core.NewContextItem(t, "v", confidence, "turn-1", extractedAt)
}

func TestClassify(t *testing.T) {
	p := New(config.DefaultPriorityConfig())

	tests := []struct {
		name        string
		extractedAt time.Time
		want        RecencyClass
	}{
		{"just now", now.Add(-time.Minute), ClassRecent},
		{"window boundary", now.Add(-time.Hour), ClassRecent},
		{"earlier today", now.Add(-5 * time.Hour), ClassSameDay},
		{"this morning", time.Date(2025, 6, 12, 0, 30, 0, 0, time.UTC), ClassSameDay},
		{"yesterday", now.Add(-24 * time.Hour), ClassEarlier},
		{"last week", now.Add(-7 * 24 * time.Hour), ClassEarlier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Classify(tt.extractedAt, now))
		})
	}
}

func TestScore_Formula(t *testing.T) {
	p := New(config.DefaultPriorityConfig())

	// recent location at confidence 0.9: 0.6 * 0.4 * 0.9
	got := p.Score(item(core.TypeLocation, 0.9, now.Add(-time.Minute)), now)
	assert.InDelta(t, 0.216, got, 1e-9)
}

func TestScore_Bounds(t *testing.T) {
	p := New(config.DefaultPriorityConfig())

	ages := []time.Duration{time.Minute, 5 * time.Hour, 48 * time.Hour}
	confidences := []float64{0, 0.25, 0.5, 1}

	for _, typ := range core.ContextTypes() {
		for _, age := range ages {
			for _, c := range confidences {
				s := p.Score(item(typ, c, now.Add(-age)), now)
				require.GreaterOrEqual(t, s, 0.0)
				require.LessOrEqual(t, s, 1.0)
			}
		}
	}
}

func TestScore_RecencyMonotonic(t *testing.T) {
	p := New(config.DefaultPriorityConfig())

	// Same type and confidence: the item in a more recent class always
	// scores at least as high.
	recent := p.Score(item(core.TypeTopic, 0.7, now.Add(-time.Minute)), now)
	sameDay := p.Score(item(core.TypeTopic, 0.7, now.Add(-5*time.Hour)), now)
	earlier := p.Score(item(core.TypeTopic, 0.7, now.Add(-48*time.Hour)), now)

	assert.GreaterOrEqual(t, recent, sameDay)
	assert.GreaterOrEqual(t, sameDay, earlier)
}

func TestScore_DecaysWithAdvancingNow(t *testing.T) {
	p := New(config.DefaultPriorityConfig())

	it := item(core.TypeLocation, 0.8, now)

	atExtraction := p.Score(it, now)
	laterToday := p.Score(it, now.Add(3*time.Hour))
	nextDay := p.Score(it, now.Add(26*time.Hour))

	assert.Greater(t, atExtraction, laterToday)
	assert.Greater(t, laterToday, nextDay)
}

func TestRank_Ordering(t *testing.T) {
	p := New(config.DefaultPriorityConfig())

	low := item(core.TypeIntent, 0.2, now.Add(-48*time.Hour))
	mid := item(core.TypeTopic, 0.9, now.Add(-time.Minute))
	high := item(core.TypeLocation, 0.9, now.Add(-time.Minute))

	ranked := p.Rank([]core.ContextItem{low, mid, high}, now)

	require.Len(t, ranked, 3)
	assert.Equal(t, high.ID, ranked[0].ID)
	assert.Equal(t, mid.ID, ranked[1].ID)
	assert.Equal(t, low.ID, ranked[2].ID)
}

func TestRank_TieBreaks(t *testing.T) {
	p := New(config.DefaultPriorityConfig())

	// Equal scores, different extraction times: newer first.
	older := item(core.TypeTopic, 0.5, now.Add(-10*time.Minute))
	newer := item(core.TypeTopic, 0.5, now.Add(-time.Minute))

	ranked := p.Rank([]core.ContextItem{older, newer}, now)
	assert.Equal(t, newer.ID, ranked[0].ID)

	// Equal score and time: higher type weight first. Weights chosen so
	// 0.4*0.3 == 0.3*0.4.
	loc := item(core.TypeLocation, 0.3, now.Add(-time.Minute))
	tim := item(core.TypeTime, 0.4, now.Add(-time.Minute))
	require.InDelta(t, p.Score(loc, now), p.Score(tim, now), 1e-9)

	ranked = p.Rank([]core.ContextItem{tim, loc}, now)
	assert.Equal(t, loc.ID, ranked[0].ID)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	p := New(config.DefaultPriorityConfig())

	a := item(core.TypeIntent, 0.1, now.Add(-48*time.Hour))
	b := item(core.TypeLocation, 0.9, now.Add(-time.Minute))
	in := []core.ContextItem{a, b}

	_ = p.Rank(in, now)

	assert.Equal(t, a.ID, in[0].ID)
	assert.Equal(t, b.ID, in[1].ID)
}
