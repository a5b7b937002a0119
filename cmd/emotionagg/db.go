package main

import (
	"context"
	"fmt"
	"strings"

	"emotionagg/internal/config"
	"emotionagg/internal/store"
	"emotionagg/internal/store/postgres"
	"emotionagg/internal/store/sqlite"
)

// openStore picks the backend from the DSN scheme and makes sure both tables
// exist before returning.
func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	if strings.HasPrefix(cfg.Database.DSN, sqlite.Scheme) {
		db, err = sqlite.New(ctx, cfg.Database.DSN)
	} else {
		db, err = postgres.New(ctx, cfg.Database.DSN)
	}
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("preparing schema: %w", err)
	}
	return db, nil
}
