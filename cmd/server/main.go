package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/todmy/doc-reconciler/internal/api"
	"github.com/todmy/doc-reconciler/internal/config"
	"github.com/todmy/doc-reconciler/internal/registry"
	"github.com/todmy/doc-reconciler/internal/workspace"
	"github.com/todmy/doc-reconciler/pkg/models"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	conflicts, err := loadConflicts(cfg, logger)
	if err != nil {
		logger.Error("failed to load conflicts", "error", err)
		os.Exit(1)
	}

	reg := registry.New()
	if err := reg.Load(conflicts); err != nil {
		logger.Error("failed to ingest conflicts", "error", err)
		os.Exit(1)
	}

	verifier := workspace.NewVerifier(workspace.VerifierConfig{
		Delay: delayFunc(cfg.Verification),
	})
	ws := workspace.New(workspace.Config{
		Registry: reg,
		Verifier: verifier,
		Logger:   logger,
	})

	server := api.NewServer(api.ServerConfig{
		Registry:  reg,
		Workspace: ws,
		JWTSecret: cfg.JWTSecret,
	})

	logger.Info("starting doc-reconciler server",
		"port", cfg.Port,
		"conflicts", len(conflicts),
	)
	if err := server.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// loadConflicts picks the conflict source: the detection engine's database
// when configured, a JSON fixture otherwise, falling back to the built-in
// sample snapshot.
func loadConflicts(cfg config.Config, logger *slog.Logger) ([]models.Conflict, error) {
	ctx := context.Background()

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return nil, err
		}
		logger.Info("loading conflicts from database")
		return registry.NewPostgresSource(db).Load(ctx)
	}

	if cfg.FixturePath != "" {
		logger.Info("loading conflicts from fixture", "path", cfg.FixturePath)
		return registry.NewFixtureSource(cfg.FixturePath).Load(ctx)
	}

	logger.Info("no conflict source configured, using built-in sample")
	return registry.SampleConflicts(), nil
}

func delayFunc(vc config.VerificationConfig) func() time.Duration {
	spread := vc.MaxDelayMs - vc.MinDelayMs
	return func() time.Duration {
		ms := vc.MinDelayMs
		if spread > 0 {
			ms += rand.Intn(spread + 1)
		}
		return time.Duration(ms) * time.Millisecond
	}
}
