package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openmonopoly/monopoly-server-go/internal/config"
	"github.com/openmonopoly/monopoly-server-go/internal/lobby"
	"github.com/openmonopoly/monopoly-server-go/internal/monitor"
	"github.com/openmonopoly/monopoly-server-go/internal/repository"
	"github.com/openmonopoly/monopoly-server-go/internal/server"
	"github.com/openmonopoly/monopoly-server-go/internal/session"
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

	logger.Info("starting monopoly server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize storage
	var store repository.Store
	if cfg.Database.Enabled {
		pg, err := repository.NewPostgres(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		store = pg
		logger.Info("database connection pool initialized",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
		)
	} else {
		store = repository.NewMemoryStore()
		logger.Warn("database disabled; games will not survive a restart")
	}
	defer store.Close()

	// Initialize session manager
	sessionMgr := session.NewManager(logger)
	logger.Info("session manager initialized")

	// Initialize lobby manager
	lobbyMgr := lobby.NewManager(store, cfg.Game.SnapshotsToKeep, logger)
	logger.Info("lobby manager initialized")

	// Initialize metrics
	var metrics *monitor.Monitor
	if cfg.Metrics.Enabled {
		metrics = monitor.NewMonitor("monopoly")
		metrics.StartServer(cfg.Metrics.Address)
		logger.Info("metrics server started", zap.String("address", cfg.Metrics.Address))
	}

	srv := server.New(cfg.Server, sessionMgr, lobbyMgr, metrics, logger)

	go func() {
		if serveErr := srv.Start(); serveErr != nil {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}()

	logger.Info("monopoly server initialized",
		zap.String("version", version),
		zap.String("websocket_address", cfg.Server.Address),
		zap.Bool("persistence", cfg.Database.Enabled),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("monopoly server stopped")
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
