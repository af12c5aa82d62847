package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/kontext/pkg/log"
)

type FlowConfig struct {
	// IntentThreshold is the minimum intent confidence to proceed
	// without clarification.
	IntentThreshold float64 `env:"KONTEXT_INTENT_THRESHOLD" envDefault:"0.5"`

	// ResolutionThreshold is the combined similarity score above which
	// a prior turn is considered to resolve a weak intent.
	ResolutionThreshold float64 `env:"KONTEXT_RESOLUTION_THRESHOLD" envDefault:"0.3"`

	// RetryLimit bounds consecutive clarification prompts; once it is
	// exceeded the session continues in best-guess mode.
	RetryLimit int `env:"KONTEXT_CLARIFICATION_RETRIES" envDefault:"2"`

	// StackLimit caps the context stack depth.
	StackLimit int `env:"KONTEXT_CONTEXT_STACK_LIMIT" envDefault:"5"`

	// TopicMargin is how much a new top-ranked topic must beat the
	// current one by before the stack is popped. Prevents churn from
	// minor score fluctuations.
	TopicMargin float64 `env:"KONTEXT_TOPIC_MARGIN" envDefault:"0.05"`
}

func NewFlowConfig(ctx context.Context) *FlowConfig {
	c := &FlowConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse flow config")
	}
	return c
}

func DefaultFlowConfig() *FlowConfig {
	return &FlowConfig{
		IntentThreshold:     0.5,
		ResolutionThreshold: 0.3,
		RetryLimit:          2,
		StackLimit:          5,
		TopicMargin:         0.05,
	}
}
