package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "kontext",
	Short: "Kontext — conversational context memory",
	Long:  `Kontext extracts, prioritizes and remembers conversational context across turns.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
