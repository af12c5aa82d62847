package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/internal/providers/llm"
	"github.com/sandevgo/kontext/internal/service/promptctx"
	"github.com/sandevgo/kontext/internal/service/session"
	"github.com/sandevgo/kontext/internal/storage/redis"
	"github.com/sandevgo/kontext/internal/storage/sqlite"
	"github.com/sandevgo/kontext/internal/transport/cli"
	"github.com/sandevgo/kontext/pkg/log"
	"github.com/sandevgo/kontext/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	promptCfg := config.NewPromptConfig(ctx)
	sessionCfg := session.Config{
		Memory:     config.NewMemoryConfig(ctx),
		Priority:   config.NewPriorityConfig(ctx),
		Similarity: config.NewSimilarityConfig(ctx),
		Flow:       config.NewFlowConfig(ctx),
	}

	// 2. Long-term storage backend
	repo, cleanups, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, cleanups...)

	// 3. Language collaborator
	provider := llm.NewProvider(ctx, llmCfg)

	// 4. Session manager
	manager := session.NewManager(sessionCfg, provider, repo)
	services = append(services, manager)

	// 5. Context block builder
	builder, err := promptctx.NewBuilder(promptCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize context builder")
	}

	// 6. Interactive transport
	repl, err := cli.NewReadLine(manager, builder, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize interactive transport")
	}
	services = append(services, repl)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (core.LongTermRepository, []srv.Service, error) {
	logger := log.FromCtx(ctx)

	switch cfg.LongTermBackend {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewLongTermRepo(db), []srv.Service{srv.NewCleanup(db.Close)}, nil

	case "redis":
		repo := redis.NewLongTermRepo(cfg.RedisAddr, cfg.RedisDB)
		return repo, []srv.Service{srv.NewCleanup(repo.Close)}, nil

	case "none":
		logger.Warn().Msg("long-term memory disabled, promotions stay in process")
		return nil, nil, nil

	default:
		logger.Fatal().Str("backend", cfg.LongTermBackend).Msg("unknown long-term backend")
		return nil, nil, nil
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
