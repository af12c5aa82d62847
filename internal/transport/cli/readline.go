package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/internal/service/promptctx"
	"github.com/sandevgo/kontext/internal/service/session"
	"github.com/sandevgo/kontext/pkg/log"
)

const defaultUserID = "cli-local"

// ReadLine is the interactive transport: each input line is one
// conversational turn, and the assembled context block is printed so
// the prioritization pipeline can be inspected live.
type ReadLine struct {
	cfg     *config.AppConfig
	manager *session.Manager
	builder *promptctx.Builder
	rl      *readline.Instance

	sessionID string
}

func NewReadLine(manager *session.Manager, builder *promptctx.Builder, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:       cfg,
		manager:   manager,
		builder:   builder,
		rl:        rl,
		sessionID: uuid.NewString(),
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("session_id", r.sessionID).Msg("interactive session started, type 'exit' to quit")

	sess := r.manager.Open(r.sessionID, defaultUserID)

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		res, err := sess.ProcessTurn(ctx, line, time.Now())
		if err != nil {
			logger.Error().Err(err).Msg("turn processing failed")
			fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
			continue
		}

		r.printResult(res, sess.State())
	}
}

func (r *ReadLine) printResult(res *session.TurnResult, state *core.ConversationState) {
	out := r.rl.Stdout()

	if res.NeedsClarification {
		fmt.Fprintf(out, "\033[33m[clarification needed]\033[0m\n")
	}
	if res.BestGuess {
		fmt.Fprintf(out, "\033[33m[proceeding on best guess]\033[0m\n")
	}

	block := r.builder.Build(state, res.Context, res.Similar)
	if block != "" {
		fmt.Fprintf(out, "\033[38;5;240m%s\033[0m\n", block)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	r.manager.Close(context.WithoutCancel(ctx), r.sessionID, time.Now())
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
