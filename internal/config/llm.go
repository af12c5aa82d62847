package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/kontext/pkg/log"
)

type LLMConfig struct {
	BaseURL string `env:"KONTEXT_LLM_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey  string `env:"KONTEXT_LLM_API_KEY"`
	Model   string `env:"KONTEXT_LLM_MODEL" envDefault:"gpt-4o-mini"`

	// Timeout applies per collaborator call; expiry degrades the signal
	// instead of failing the turn.
	Timeout time.Duration `env:"KONTEXT_LLM_TIMEOUT" envDefault:"15s"`

	Temperature float64 `env:"KONTEXT_LLM_TEMPERATURE" envDefault:"0.3"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
