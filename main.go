package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eudaimonia/confs"
	"eudaimonia/db"
	"eudaimonia/logging"
	"eudaimonia/repositories"
	"eudaimonia/server"
	"eudaimonia/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// load config
	cfg, err := confs.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.GinMode)
	logger.Info("starting eudaimonia",
		zap.String("storage", cfg.Storage),
		zap.Bool("openai_key_present", cfg.OpenAIAPIKey != ""))

	var repos *repositories.Repositories
	switch cfg.Storage {
	case confs.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		repos = repositories.NewMemoryRepositories()
	default:
		database, err := db.Connect(cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		repos = repositories.NewPgRepositories(database)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, repos, logger)

	services.NewJanitor(time.Minute, 10*time.Minute, logger).
		Add("rate_limiters", services.PrunerFunc(srv.Limiter().Cleanup)).
		Add("websockets", srv.Hub()).
		Start(ctx)

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
