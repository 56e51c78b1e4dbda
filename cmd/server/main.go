package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"talent-track/internal/app"
	"talent-track/internal/config"
	"talent-track/internal/logger"

	"go.uber.org/zap"
)

func main() {
	v, err := config.New(os.Getenv("TALENT_CONFIG"))
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.NewContainer(ctx, cfg, lg, app.Options{Migrate: true})
	if err != nil {
		lg.Fatal("failed to bootstrap app", zap.Error(err))
	}
	config.Watch(v, lg.Named("config"), c.ApplyConfig)

	if err := app.Serve(ctx, c); err != nil {
		lg.Error("server error", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
