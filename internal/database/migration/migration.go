package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"portfolioapi/internal/logging"
)

type step struct {
	name string
	sql  string
}

// Every collection shares one JSONB table; the document id is unique per collection.
var steps = []step{
	{
		name: "create_table_documents",
		sql: `CREATE TABLE IF NOT EXISTS documents (
  collection  TEXT        NOT NULL,
  id          TEXT        NOT NULL,
  data        JSONB       NOT NULL DEFAULT '{}'::jsonb,
  inserted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (collection, id)
);`,
	},
	{
		name: "create_index_documents_created_at",
		sql:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (collection, (data->>'created_at'));`,
	},
}

const sentinelQuery = "SELECT to_regclass('public.documents') IS NOT NULL"

// run carries the fields shared by every event of one migration attempt.
type run struct {
	loc    *time.Location
	dbHost string
	start  time.Time
}

func (r run) log(event, status string, extra map[string]any) {
	e := map[string]any{
		"component":   "database",
		"event":       event,
		"status":      status,
		"db_host":     r.dbHost,
		"duration_ms": time.Since(r.start).Milliseconds(),
	}
	for k, v := range extra {
		e[k] = v
	}
	logging.Event(r.loc, e)
}

// EnsureMigrated creates the documents table when it is missing. All steps run in a
// single transaction, so a failed step leaves the database untouched.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	r := run{loc: loc, dbHost: dbHost, start: time.Now()}
	r.log("db_migration_check", "starting", nil)

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery).Scan(&exists); err != nil {
		r.log("db_migration_failed", "error", map[string]any{"error_message": err.Error()})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		r.log("db_migration_skip", "success", map[string]any{"msg": "schema already exists, skipping migration"})
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		r.log("db_migration_failed", "error", map[string]any{"error_message": err.Error()})
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, s.sql); err != nil {
			r.log("db_migration_failed", "error", map[string]any{
				"migration_step": s.name,
				"error_message":  err.Error(),
			})
			return fmt.Errorf("migration step %s failed: %w", s.name, err)
		}
		r.log("db_migration_step", "success", map[string]any{
			"migration_step":   s.name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	if err := tx.Commit(); err != nil {
		r.log("db_migration_failed", "error", map[string]any{"error_message": err.Error()})
		return fmt.Errorf("commit migration: %w", err)
	}

	r.log("db_migration_success", "success", map[string]any{"steps": len(steps)})
	return nil
}
