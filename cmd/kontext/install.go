package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/pkg/log"
)

const envTemplate = `# Kontext configuration
KONTEXT_LLM_BASE_URL=https://api.openai.com
KONTEXT_LLM_API_KEY=
KONTEXT_LLM_MODEL=gpt-4o-mini

# sqlite, redis or none
KONTEXT_LONGTERM_BACKEND=sqlite
KONTEXT_REDIS_ADDR=localhost:6379
`

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Initialize the Kontext runtime directory",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0755); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}

		envPath := filepath.Join(runtimePath, ".env")
		if _, err := os.Stat(envPath); err == nil {
			logger.Info().Str("path", envPath).Msg("config already exists, leaving it untouched")
			return nil
		}

		if err := os.WriteFile(envPath, []byte(envTemplate), 0600); err != nil {
			return fmt.Errorf("failed to write config template: %w", err)
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Fill in the API key, then run 'kontext start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
