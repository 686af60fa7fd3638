package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/marisol/atelier/internal/analysis"
	"github.com/marisol/atelier/internal/config"
	"github.com/marisol/atelier/internal/content"
	"github.com/marisol/atelier/internal/gateway"
	"github.com/marisol/atelier/internal/llm"
	"github.com/marisol/atelier/internal/logging"
	"github.com/marisol/atelier/internal/server"
	"github.com/marisol/atelier/internal/session"
	"github.com/marisol/atelier/internal/settings"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the orchestration HTTP API",
	Long:  "Start the HTTP server exposing analysis jobs, provider settings, and the agent posting endpoint.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	// Agent posting is optional: without AGENT_TOKEN the route is simply
	// not registered.
	agentCfg, agentErr := config.NewAgentConfig()
	if agentErr != nil {
		log.Warn("agent posting disabled", "reason", agentErr)
		agentCfg = nil
	}

	settingsStore := settings.NewStore(pool)
	settingsCache := settings.NewCache(settingsStore, cfg.SettingsCacheTTL)

	registry := gateway.NewRegistry(llm.Credentials{
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	})
	defer registry.Close()

	gw := gateway.New(settingsCache, registry, cfg.GenerationTimeout, log)
	pipeline := analysis.New(gw, log)
	sessions := session.NewManager(pipeline, session.NewStore(pool), log)

	srv, err := server.New(cfg.Port, server.Deps{
		Sessions:      sessions,
		SettingsStore: settingsStore,
		SettingsCache: settingsCache,
		Poster:        content.NewPgPoster(pool),
		JWT:           server.NewJWTService(jwtCfg),
		Agent:         agentCfg,
		Log:           log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
