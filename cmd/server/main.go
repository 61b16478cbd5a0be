package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/clausecheck/internal/ai"
	"github.com/dgallion1/clausecheck/internal/api"
	"github.com/dgallion1/clausecheck/internal/config"
	"github.com/dgallion1/clausecheck/internal/metrics"
	"github.com/dgallion1/clausecheck/internal/pipeline"
	"github.com/dgallion1/clausecheck/internal/rules"
	"github.com/dgallion1/clausecheck/internal/store"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(nil)

	// Initialize storage.
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Error("open review store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// Initialize the optional AI layer.
	var analyzer *ai.Analyzer
	provider, err := ai.NewProvider(cfg)
	switch {
	case errors.Is(err, ai.ErrNoProvider):
		log.Info("ai analysis disabled")
	case err != nil:
		log.Error("init ai provider", "provider", cfg.AIProvider, "error", err)
		os.Exit(1)
	default:
		analyzer = ai.NewAnalyzer(provider, log, ai.NewLLMStats(time.Hour), ai.WithCallObserver(m))
		log.Info("ai analysis enabled", "provider", provider.Name(), "model", provider.Model())
	}

	// Initialize pipeline.
	engine := rules.NewEngine(log, rules.WithObserver(m))
	reviewer := pipeline.NewReviewer(engine, analyzer, st, log, pipeline.ReviewerConfig{
		DefaultPack:     cfg.DefaultPack,
		ChunkTokens:     cfg.AIChunkTokens,
		MaxConcurrentAI: cfg.MaxConcurrentAI,
	})
	if _, err := reviewer.PackKey(""); err != nil {
		log.Error("invalid DEFAULT_PACK", "error", err)
		os.Exit(1)
	}
	orch := pipeline.NewOrchestrator(cfg, reviewer, log, m)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, m, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if provider != nil {
			provider.Close()
		}
		if err := st.Close(); err != nil {
			log.Warn("close review store", "error", err)
		}
	}()

	log.Info("starting clausecheck", "port", cfg.Port, "store", cfg.StoreDriver, "default_pack", cfg.DefaultPack)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
