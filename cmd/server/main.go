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

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riftbound/duel-server-go/internal/carddef"
	"github.com/riftbound/duel-server-go/internal/config"
	"github.com/riftbound/duel-server-go/internal/game"
	"github.com/riftbound/duel-server-go/internal/game/ai"
	"github.com/riftbound/duel-server-go/internal/repository"
	"github.com/riftbound/duel-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting duel server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	library, err := loadLibrary(cfg.Cards.Path)
	if err != nil {
		logger.Fatal("failed to load card library", zap.Error(err))
	}
	logger.Info("card library loaded",
		zap.String("path", cfg.Cards.Path),
		zap.Int("cards", len(library)),
	)

	// Match persistence is optional; without a database URL the server
	// keeps everything in memory.
	var matches *repository.MatchRepository
	if cfg.Database.URL != "" {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		matches = repository.NewMatchRepository(db)
	} else {
		logger.Warn("no database configured; matches will not be persisted")
	}

	difficulty, err := ai.ParseDifficulty(cfg.AI.Difficulty)
	if err != nil {
		logger.Fatal("invalid AI difficulty", zap.Error(err))
	}

	engine := game.NewEngine(logger)
	srv := server.New(server.Options{
		Engine:          engine,
		Library:         library,
		Matches:         matches,
		Privacy: game.Privacy{
			RevealHands:     cfg.Privacy.RevealHands,
			RevealFaceDown:  cfg.Privacy.RevealFaceDown,
			RevealDeckOrder: cfg.Privacy.RevealDeckOrder,
		},
		AIDifficulty:    difficulty,
		AIThinkDelay:    cfg.AI.ThinkDelay,
		AllowAllOrigins: cfg.Server.AllowAllOrigins,
		Logger:          logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("serving HTTP", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	logger.Info("duel server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.String("ai_difficulty", string(difficulty)),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("duel server stopped")
}

// loadLibrary reads the card database and indexes it by card id.
func loadLibrary(path string) (map[string]*carddef.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card database: %w", err)
	}
	cards, err := carddef.DecodeSet(data)
	if err != nil {
		return nil, err
	}
	library := make(map[string]*carddef.Card, len(cards))
	for i := range cards {
		library[cards[i].ID] = &cards[i]
	}
	return library, nil
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
