package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/kontext/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"KONTEXT_RUNTIME_PATH" envDefault:".kontext"`

	// Long-term persistence backend: sqlite, redis or none.
	LongTermBackend string `env:"KONTEXT_LONGTERM_BACKEND" envDefault:"sqlite"`

	RedisAddr string `env:"KONTEXT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"KONTEXT_REDIS_DB" envDefault:"0"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "kontext.db")
}

// GetRuntimePath reads the runtime dir before configs are parsed, for
// locating the .env file that feeds the parse itself.
func GetRuntimePath() string {
	if p := os.Getenv("KONTEXT_RUNTIME_PATH"); p != "" {
		return p
	}
	return ".kontext"
}
