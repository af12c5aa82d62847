package llm

import (
	"context"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/pkg/log"
)

// NewProvider creates the language collaborator from configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) core.LanguageProvider {
	log.FromCtx(ctx).Info().
		Str("base_url", cfg.BaseURL).
		Str("model", cfg.Model).
		Msg("starting language provider")

	return NewOpenAICompatible(cfg)
}
