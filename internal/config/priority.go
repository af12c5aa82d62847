package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/kontext/pkg/log"
)

// PriorityConfig holds the recency and type weight tables. Each table
// sums to 1.0 with the defaults; overrides are trusted as-is.
type PriorityConfig struct {
	RecentWindow time.Duration `env:"KONTEXT_RECENT_WINDOW" envDefault:"1h"`

	RecentWeight  float64 `env:"KONTEXT_WEIGHT_RECENT" envDefault:"0.6"`
	SameDayWeight float64 `env:"KONTEXT_WEIGHT_SAME_DAY" envDefault:"0.3"`
	EarlierWeight float64 `env:"KONTEXT_WEIGHT_EARLIER" envDefault:"0.1"`

	LocationWeight float64 `env:"KONTEXT_WEIGHT_LOCATION" envDefault:"0.4"`
	TimeWeight     float64 `env:"KONTEXT_WEIGHT_TIME" envDefault:"0.3"`
	TopicWeight    float64 `env:"KONTEXT_WEIGHT_TOPIC" envDefault:"0.2"`
	IntentWeight   float64 `env:"KONTEXT_WEIGHT_INTENT" envDefault:"0.1"`
}

func NewPriorityConfig(ctx context.Context) *PriorityConfig {
	c := &PriorityConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse priority config")
	}
	return c
}

// DefaultPriorityConfig returns the built-in weight tables without
// consulting the environment. Used by tests and as a library default.
func DefaultPriorityConfig() *PriorityConfig {
	return &PriorityConfig{
		RecentWindow:   time.Hour,
		RecentWeight:   0.6,
		SameDayWeight:  0.3,
		EarlierWeight:  0.1,
		LocationWeight: 0.4,
		TimeWeight:     0.3,
		TopicWeight:    0.2,
		IntentWeight:   0.1,
	}
}
