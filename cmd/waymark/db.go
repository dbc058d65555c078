package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"waymark/internal/config"
	"waymark/internal/store"
	"waymark/internal/store/postgres"
	"waymark/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	log := *zerolog.Ctx(ctx)
	dsn := cfg.Storage.DSN

	var (
		db  store.Store
		err error
	)
	switch config.Backend(dsn) {
	case "sqlite":
		db, err = sqlite.New(ctx, dsn, log)
	case "postgres":
		db, err = postgres.New(ctx, dsn, log)
	default:
		return nil, fmt.Errorf("unsupported storage dsn: %s", dsn)
	}
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}
