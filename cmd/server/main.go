package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/MHostile/root-automated-setup/internal/config"
	"github.com/MHostile/root-automated-setup/internal/repository"
	"github.com/MHostile/root-automated-setup/internal/server"
	"github.com/MHostile/root-automated-setup/internal/session"
	"github.com/MHostile/root-automated-setup/internal/setup"
	"github.com/MHostile/root-automated-setup/internal/setup/random"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting setup server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("expansions", len(cat.Expansions)),
		zap.Int("factions", len(cat.Factions)),
	)

	seed := cfg.Setup.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			logger.Fatal("failed to draw seed", zap.Error(err))
		}
	}
	logger.Info("random source seeded", zap.Int64("seed", seed))

	engine := setup.NewEngine(cat, random.NewLocked(random.NewSeeded(seed)), logger,
		setup.WithStateOptions(setup.StateOptions{
			PlayerCount:      cfg.Setup.DefaultPlayerCount,
			LandmarkCount:    cfg.Setup.DefaultLandmarkCount,
			FixedFirstPlayer: cfg.Setup.FixedFirstPlayer,
		}),
	)

	repo, err := repository.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer repo.Close()

	opts := []session.Option{
		session.WithMaxSessions(cfg.Server.MaxSessions),
		session.WithLanguage(language.Make(cfg.Setup.Language)),
	}
	if cfg.Replay.Enabled {
		if err := os.MkdirAll(cfg.Replay.Directory, 0o755); err != nil {
			logger.Fatal("failed to create replay directory", zap.Error(err))
		}
		opts = append(opts, session.WithRecorder(setup.NewReplayRecorder(logger, cfg.Replay.Directory)))
		logger.Info("replay recording enabled", zap.String("directory", cfg.Replay.Directory))
	}
	sessionMgr := session.NewManager(engine, repo, logger, opts...)

	stored, err := sessionMgr.StoredSessions(ctx)
	if err != nil {
		logger.Fatal("failed to read stored sessions", zap.Error(err))
	}
	logger.Info("session manager initialized",
		zap.Int("stored_sessions", len(stored)),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	hub := server.NewHub(sessionMgr, cat, cfg.Server.WebSocket, logger)
	go hub.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.WebSocket.Address,
		Handler: hub.Handler(),
	}
	go func() {
		logger.Info("starting WebSocket server", zap.String("address", cfg.Server.WebSocket.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("WebSocket server error", zap.Error(serveErr))
			sigChan <- syscall.SIGTERM
		}
	}()

	logger.Info("setup server initialized",
		zap.String("version", version),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	cancel()

	// Persist every live session before storage closes
	sessionMgr.CloseAll(shutdownCtx)

	logger.Info("setup server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
