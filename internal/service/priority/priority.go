package priority

import (
	"sort"
	"time"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
)

// RecencyClass buckets an item by elapsed time since extraction. It is
// derived at scoring time, never stored: context value decays as "now"
// advances, so scores must be recomputed on every access.
type RecencyClass string

const (
	ClassRecent  RecencyClass = "recent"
	ClassSameDay RecencyClass = "same_day"
	ClassEarlier RecencyClass = "earlier"
)

type Prioritizer struct {
	cfg *config.PriorityConfig
}

func New(cfg *config.PriorityConfig) *Prioritizer {
	return &Prioritizer{cfg: cfg}
}

// Classify is a pure function of (extractedAt, now) and the configured
// recent-window boundary.
func (p *Prioritizer) Classify(extractedAt, now time.Time) RecencyClass {
	elapsed := now.Sub(extractedAt)
	if elapsed <= p.cfg.RecentWindow {
		return ClassRecent
	}
	ey, em, ed := extractedAt.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	if ey == ny && em == nm && ed == nd {
		return ClassSameDay
	}
	return ClassEarlier
}

// Score computes recency_weight * type_weight * confidence. With weight
// tables summing to 1.0 and confidence in [0,1], the result lies in
// [0,1].
func (p *Prioritizer) Score(item core.ContextItem, now time.Time) float64 {
	return p.recencyWeight(p.Classify(item.ExtractedAt, now)) *
		p.TypeWeight(item.Type) *
		item.Confidence
}

// Rank orders items by descending score; ties break by more recent
// extraction, then by higher type weight. The input is not modified.
func (p *Prioritizer) Rank(items []core.ContextItem, now time.Time) []core.ContextItem {
	ranked := make([]core.ContextItem, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := p.Score(ranked[i], now), p.Score(ranked[j], now)
		if si != sj {
			return si > sj
		}
		if !ranked[i].ExtractedAt.Equal(ranked[j].ExtractedAt) {
			return ranked[i].ExtractedAt.After(ranked[j].ExtractedAt)
		}
		return p.TypeWeight(ranked[i].Type) > p.TypeWeight(ranked[j].Type)
	})

	return ranked
}

// TypeWeight is exhaustive over the closed context type set.
func (p *Prioritizer) TypeWeight(t core.ContextType) float64 {
	switch t {
	case core.TypeLocation:
		return p.cfg.LocationWeight
	case core.TypeTime:
		return p.cfg.TimeWeight
	case core.TypeTopic:
		return p.cfg.TopicWeight
	case core.TypeIntent:
		return p.cfg.IntentWeight
	}
	return 0
}

func (p *Prioritizer) recencyWeight(c RecencyClass) float64 {
	switch c {
	case ClassRecent:
		return p.cfg.RecentWeight
	case ClassSameDay:
		return p.cfg.SameDayWeight
	case ClassEarlier:
		return p.cfg.EarlierWeight
	}
	return 0
}
