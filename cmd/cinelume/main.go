package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cinelume/internal/config"
	"cinelume/internal/container"
	"cinelume/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	loaded := config.LoadEnv()
	cfg := config.Load()

	logger.InitWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logger.Get()
	if !loaded {
		log.Debug("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, cfg, os.Stdout, &terminalNavigator{out: os.Stdout})
	if err != nil {
		log.WithError(err).Error("Failed to start")
		return 1
	}
	defer c.Close()

	return newApp(c, os.Stdout).run(ctx, os.Args[1:])
}
