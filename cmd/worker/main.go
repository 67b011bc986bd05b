package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/taglia21/App-Builder-sub001/internal/activity"
	"github.com/taglia21/App-Builder-sub001/internal/config"
	"github.com/taglia21/App-Builder-sub001/internal/engine"
	"github.com/taglia21/App-Builder-sub001/internal/github"
	"github.com/taglia21/App-Builder-sub001/internal/logging"
	"github.com/taglia21/App-Builder-sub001/internal/metrics"
	"github.com/taglia21/App-Builder-sub001/internal/orchestrator"
	"github.com/taglia21/App-Builder-sub001/internal/provider"
	"github.com/taglia21/App-Builder-sub001/internal/tracker"
	"github.com/taglia21/App-Builder-sub001/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var history tracker.Store
	if cfg.TrackerDatabaseURL != "" {
		pgStore, err := tracker.NewPostgresStore(ctx, cfg.TrackerDatabaseURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to tracker database")
		}
		metrics.RegisterPgxPoolMetrics(pgStore.Pool())
		history = pgStore
	} else {
		sqliteStore, err := tracker.NewSQLiteStore(cfg.TrackerPath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open tracker database")
		}
		history = sqliteStore
	}
	defer history.Close()

	if err := history.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate tracker database")
	}

	registry := provider.NewRegistry()
	registry.Register("vercel", func() provider.Provider {
		return provider.NewVercel(cfg.VercelToken, logger)
	})
	registry.Register("render", func() provider.Provider {
		return provider.NewRender(cfg.RenderToken, logger)
	})

	var repos github.RepositoryHost
	if cfg.GitHubToken != "" {
		repos = github.NewClient(cfg.GitHubToken, cfg.GitHubOwner, logger)
	} else {
		logger.Warn().Msg("GITHUB_TOKEN not set, repository stage disabled")
	}

	eng := engine.New(registry, logger)
	orch := orchestrator.New(orchestrator.Options{}, eng, registry, repos, history, logger)

	tc, err := temporalclient.Dial(temporalclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	w := worker.New(tc, cfg.TaskQueue, worker.Options{})

	w.RegisterActivity(activity.NewDeployment(orch))

	w.RegisterWorkflow(workflow.DeployProjectWorkflow)
	w.RegisterWorkflow(workflow.RollbackDeploymentWorkflow)

	if cfg.HTTPListenAddr != "" {
		metricsSrv := metrics.NewServer(cfg.HTTPListenAddr)
		go func() {
			logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("taskQueue", cfg.TaskQueue).Msg("starting temporal worker")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("worker failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")
	cancel()
}
