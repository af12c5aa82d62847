package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/kontext/pkg/log"
)

type SimilarityConfig struct {
	// TimeHorizon gates semantic comparison: turns farther apart are
	// compared on keywords only.
	TimeHorizon time.Duration `env:"KONTEXT_SIMILARITY_HORIZON" envDefault:"1h"`

	// KeywordFloor is the minimum keyword score required before the
	// semantic signal is requested at all.
	KeywordFloor float64 `env:"KONTEXT_KEYWORD_FLOOR" envDefault:"0.1"`

	// Blend weights; keyword weight becomes 1 when semantic is absent.
	KeywordWeight  float64 `env:"KONTEXT_KEYWORD_WEIGHT" envDefault:"0.4"`
	SemanticWeight float64 `env:"KONTEXT_SEMANTIC_WEIGHT" envDefault:"0.6"`

	TopK int `env:"KONTEXT_SIMILARITY_TOP_K" envDefault:"2"`
}

func NewSimilarityConfig(ctx context.Context) *SimilarityConfig {
	c := &SimilarityConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse similarity config")
	}
	return c
}

func DefaultSimilarityConfig() *SimilarityConfig {
	return &SimilarityConfig{
		TimeHorizon:    time.Hour,
		KeywordFloor:   0.1,
		KeywordWeight:  0.4,
		SemanticWeight: 0.6,
		TopK:           2,
	}
}
