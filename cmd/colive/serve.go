package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/colive/internal/anthropic"
	"github.com/MikeSquared-Agency/colive/internal/api"
	"github.com/MikeSquared-Agency/colive/internal/config"
	"github.com/MikeSquared-Agency/colive/internal/extractor"
	"github.com/MikeSquared-Agency/colive/internal/gemini"
	"github.com/MikeSquared-Agency/colive/internal/hermes"
	"github.com/MikeSquared-Agency/colive/internal/llm"
	"github.com/MikeSquared-Agency/colive/internal/openai"
	"github.com/MikeSquared-Agency/colive/internal/persona"
	"github.com/MikeSquared-Agency/colive/internal/processor"
	"github.com/MikeSquared-Agency/colive/internal/store"
	"github.com/MikeSquared-Agency/colive/internal/tracing"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	slog.Info("colive starting", "port", cfg.Port, "provider", cfg.Provider, "variant", cfg.Variant)

	var traceOut io.Writer
	if cfg.TraceStdout {
		traceOut = os.Stdout
	}
	shutdownTracing, err := tracing.Init("colive", traceOut)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("trace shutdown failed", "error", err)
		}
	}()

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("llm client ready", "provider", cfg.Provider, "model", cfg.Model)

	personas, closePersonas, err := openPersonas(ctx, cfg)
	if err != nil {
		slog.Error("failed to load personas", "error", err)
		return err
	}
	defer closePersonas()

	// NATS is optional; without it no events are published.
	var pub processor.Publisher
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			return err
		}
		defer hermesClient.Close()
		pub = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, dialogue events disabled")
	}

	proc := processor.New(personas, completer, extractor.New(slog.Default()), pub, processor.Options{
		DefaultVariant: cfg.Variant,
		Model:          cfg.Model,
		Timeout:        cfg.CompletionTimeout,
		Strict:         cfg.StrictVocabulary,
	}, slog.Default())

	if _, err := proc.Variant(""); err != nil {
		slog.Error("invalid default variant", "variant", cfg.Variant, "error", err)
		return err
	}

	if hermesClient != nil {
		if err := hermesClient.Respond(hermes.SubjectGenerate, hermes.QueueGenerate, proc.HandleGenerate); err != nil {
			slog.Error("failed to subscribe to generate requests", "error", err)
			return err
		}
	}

	srv := api.NewServer(cfg.Port, proc, api.Info{
		Provider:       cfg.Provider,
		DefaultVariant: cfg.Variant,
		Model:          cfg.Model,
	}, slog.Default())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("colive ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	slog.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown failed", "error", err)
	}
	slog.Info("colive stopped")
	return nil
}

func newCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	var c llm.Completer
	switch cfg.Provider {
	case config.ProviderAnthropic:
		c = anthropic.NewClient(cfg.AnthropicAPIKey, cfg.Model)
	case config.ProviderGemini:
		g, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.Model, "")
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		c = g
	case config.ProviderOpenAI:
		c = openai.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	return llm.Traced(cfg.Provider, c), nil
}

// openPersonas prefers the database when configured, else a persona file.
func openPersonas(ctx context.Context, cfg config.Config) (persona.Store, func(), error) {
	if cfg.PersonaDatabaseURL != "" {
		db, err := store.New(ctx, cfg.PersonaDatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect persona database: %w", err)
		}
		slog.Info("persona database connected")
		return db, db.Close, nil
	}

	path, err := persona.ResolvePath(cfg.PersonaFile)
	if err != nil {
		return nil, nil, err
	}
	fileStore, err := persona.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("personas loaded", "path", fileStore.Path(), "count", len(fileStore.Names()))
	return fileStore, func() {}, nil
}
