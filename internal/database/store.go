package database

import (
	"context"
	"fmt"
	"time"

	gfs "cloud.google.com/go/firestore"

	"portfolioapi/internal/config"
	"portfolioapi/internal/database/migration"
	"portfolioapi/internal/repository"
	"portfolioapi/internal/repository/firestore"
	"portfolioapi/internal/repository/memory"
	"portfolioapi/internal/repository/postgres"
)

// OpenStore creates the document store selected by cfg.StoreBackend.
//
// Supported backends:
//
//	"postgres"  - JSONB documents table, migrated on first start
//	"firestore" - Cloud Firestore through fsClient, which the caller owns
//	"memory"    - in-process map, ephemeral
//
// The returned close function releases resources owned by the store.
func OpenStore(ctx context.Context, cfg *config.AppConfig, fsClient *gfs.Client, loc *time.Location) (repository.DocumentStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewDocumentPostgres(db), db.Close, nil
	case config.BackendFirestore:
		if fsClient == nil {
			return nil, nil, fmt.Errorf("firestore backend selected but no firestore client was provided")
		}
		return firestore.NewDocumentFirestore(fsClient), noop, nil
	case config.BackendMemory:
		return memory.NewDocumentMemory(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %q", cfg.StoreBackend)
	}
}
