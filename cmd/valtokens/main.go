package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dimitrije/valtokens/internal/api"
	"github.com/dimitrije/valtokens/internal/config"
	"github.com/dimitrije/valtokens/internal/listing"
	"github.com/dimitrije/valtokens/internal/session"
	"github.com/dimitrije/valtokens/internal/tui"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	sess := session.New(session.NewFileStore(cfg.TokenFile), logger)

	opts := []api.Option{api.WithLogger(logger)}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.RequestTimeout))
	}
	client := api.New(cfg.APIBaseURL, sess, opts...)

	auth := session.NewController(sess, client, logger)

	model := tui.New(ctx, tui.Deps{
		Auth:    auth,
		AuthAPI: client,
		NewListing: func() *listing.Controller {
			return listing.New(client, sess,
				listing.WithPollInterval(cfg.PollInterval),
				listing.WithBannerTTL(cfg.BannerTTL),
				listing.WithLogger(logger),
			)
		},
		Logger: logger,
	})
	defer model.Shutdown()

	logger.Info("starting client", "api", cfg.APIBaseURL, "token_file", cfg.TokenFile)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running terminal ui: %w", err)
	}
	return nil
}
