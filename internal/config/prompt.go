package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/kontext/pkg/log"
)

type PromptConfig struct {
	// TokenBudget caps the assembled context block handed to the
	// response generator.
	TokenBudget int `env:"KONTEXT_CONTEXT_TOKEN_BUDGET" envDefault:"600"`

	Encoding string `env:"KONTEXT_TOKEN_ENCODING" envDefault:"cl100k_base"`
}

func NewPromptConfig(ctx context.Context) *PromptConfig {
	c := &PromptConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse prompt config")
	}
	return c
}

func DefaultPromptConfig() *PromptConfig {
	return &PromptConfig{
		TokenBudget: 600,
		Encoding:    "cl100k_base",
	}
}
