package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/kontext/pkg/log"
)

type MemoryConfig struct {
	// ShortTermCapacity bounds the short-term tier in items.
	ShortTermCapacity int `env:"KONTEXT_SHORT_TERM_CAPACITY" envDefault:"10"`
	// LongTermCapacity bounds the in-process long-term tier in items.
	LongTermCapacity int `env:"KONTEXT_LONG_TERM_CAPACITY" envDefault:"100"`

	// PromotionThreshold is the priority score an item must sustain for
	// PromotionSustain consecutive turns to be promoted to long-term.
	PromotionThreshold float64 `env:"KONTEXT_PROMOTION_THRESHOLD" envDefault:"0.15"`
	PromotionSustain   int     `env:"KONTEXT_PROMOTION_SUSTAIN" envDefault:"3"`
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c := &MemoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse memory config")
	}
	return c
}

func DefaultMemoryConfig() *MemoryConfig {
	return &MemoryConfig{
		ShortTermCapacity:  10,
		LongTermCapacity:   100,
		PromotionThreshold: 0.15,
		PromotionSustain:   3,
	}
}
