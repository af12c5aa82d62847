package similarity

import (
	"context"
	"sort"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/pkg/log"
)

// Engine compares conversational turns. The keyword score is always
// computed locally and never fails; the semantic score comes from the
// language collaborator and is requested only for pairs inside the time
// horizon whose keyword overlap clears a low floor.
type Engine struct {
	cfg      *config.SimilarityConfig
	provider core.LanguageProvider
}

// New builds an engine. provider may be nil; comparisons then run on
// keywords alone.
func New(cfg *config.SimilarityConfig, provider core.LanguageProvider) *Engine {
	return &Engine{cfg: cfg, provider: provider}
}

// Compare produces a SimilarityResult for two turns. Symmetric:
// Compare(a,b) and Compare(b,a) yield the same combined score.
func (e *Engine) Compare(ctx context.Context, a, b core.RawTurn) core.SimilarityResult {
	res := core.SimilarityResult{
		TurnA:        a.ID,
		TurnB:        b.ID,
		KeywordScore: Jaccard(a.Keywords, b.Keywords),
	}

	gap := a.Timestamp.Sub(b.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	res.WithinTimeWindow = gap <= e.cfg.TimeHorizon

	if res.WithinTimeWindow && res.KeywordScore >= e.cfg.KeywordFloor {
		if score, ok := e.semantic(ctx, a.Text, b.Text); ok {
			res.SemanticScore = &score
		}
	}

	if res.SemanticScore != nil {
		res.CombinedScore = e.cfg.KeywordWeight*res.KeywordScore + e.cfg.SemanticWeight**res.SemanticScore
	} else {
		res.CombinedScore = res.KeywordScore
	}
	return res
}

// semantic asks the collaborator for a score, ordering the pair
// canonically so the result cannot depend on argument order. A failed
// or absent collaborator degrades to "no semantic signal".
func (e *Engine) semantic(ctx context.Context, textA, textB string) (float64, bool) {
	if e.provider == nil {
		return 0, false
	}
	if textA > textB {
		textA, textB = textB, textA
	}
	score, err := e.provider.SemanticSimilarity(ctx, textA, textB)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("semantic similarity unavailable")
		return 0, false
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, true
}

// MostSimilar ranks candidates against the current turn by descending
// combined score, more recent candidate first on ties, and returns the
// top k results.
func (e *Engine) MostSimilar(ctx context.Context, current core.RawTurn, candidates []core.RawTurn, topK int) []core.SimilarityResult {
	if topK <= 0 {
		topK = e.cfg.TopK
	}

	results := make([]core.SimilarityResult, 0, len(candidates))
	order := make(map[string]int, len(candidates)) // turn ID -> candidate index
	for i, c := range candidates {
		order[c.ID] = i
		results = append(results, e.Compare(ctx, current, c))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		ti := candidates[order[results[i].TurnB]].Timestamp
		tj := candidates[order[results[j].TurnB]].Timestamp
		return ti.After(tj)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Jaccard is the normalized overlap of two keyword sets.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}

	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
