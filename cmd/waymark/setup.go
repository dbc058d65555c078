package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"waymark/internal/config"
	"waymark/internal/logging"
)

// loadProject reads the project config and returns a context carrying the
// configured logger.
func loadProject(ctx context.Context) (context.Context, *config.ProjectConfig, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return ctx, nil, err
	}

	log, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		return ctx, nil, err
	}
	return log.WithContext(ctx), cfg, nil
}

// fallbackContext attaches a console logger for commands that run without a
// project file.
func fallbackContext(ctx context.Context) context.Context {
	log, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: os.Stderr})
	if err != nil {
		nop := zerolog.Nop()
		return nop.WithContext(ctx)
	}
	return log.WithContext(ctx)
}
