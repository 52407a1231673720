package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/propshare/exchange/internal/app/api"
	"github.com/propshare/exchange/internal/bootstrap"
	"github.com/propshare/exchange/internal/fixture"
	"github.com/propshare/exchange/pkg/config"
	"github.com/propshare/exchange/pkg/logger"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(err)
	}

	log, err = logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		panic(err)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	boot, err := (&bootstrap.Bootstrap{}).Init(ctx, bootstrap.BootstrapConfig{
		Config: cfg,
		Logger: log,
	})
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "bootstrap",
		})
		return
	}

	if err := boot.Engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	if cfg.Fixture.Enabled {
		loader := fixture.NewLoader(boot, cfg.Fixture, log)
		if err := loader.Load(ctx); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "load_fixtures",
			})
			return
		}
	}

	server := api.NewServer(boot.Engine, boot.Health, log, &cfg.App)
	go func() {
		if err := server.Start(); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "serve_http",
			})
			cancel()
		}
	}()

	log.Info("Exchange started", logger.Field{
		Key:   "environment",
		Value: cfg.App.Environment,
	})

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.Field{
			Key:   "signal",
			Value: sig.String(),
		})
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_http",
		})
	}
	if err := boot.Engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}
	if err := boot.Usecase.Publisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_publisher",
		})
	}

	log.Info("Exchange stopped")
}
