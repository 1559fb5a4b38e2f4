package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"agent-bridge/internal/di"
	"agent-bridge/internal/infrastructure/env"
)

func main() {
	os.Exit(run())
}

// run keeps deferred cleanup ahead of os.Exit.
func run() int {
	envService := env.NewEnvService()
	cfg := di.ConfigFromEnv(envService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	container := di.NewContainer(cfg, os.Stdout, args)
	defer container.Close()

	container.Logger.Info("Configuration loaded",
		"app_env", envService.AppEnv(),
		"env_files", envService.LoadedFiles(),
		"headless", cfg.BrowserHeadless,
		"max_steps", cfg.MaxSteps,
		"vision", cfg.UseVision,
		"verify", cfg.Verify,
	)

	return container.Bridge.Run(ctx, args)
}
