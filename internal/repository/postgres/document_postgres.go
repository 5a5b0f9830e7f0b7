package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"portfolioapi/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentStore.
// Documents live in a single JSONB table keyed by (collection, id).
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres store.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentStore = (*DocumentPostgres)(nil)

// All returns every document of a collection. No ORDER BY: order is whatever the table scan yields.
func (r *DocumentPostgres) All(ctx context.Context, collection string) ([]repository.Document, error) {
	const q = `
		SELECT id, data
		FROM documents
		WHERE collection = $1
	`
	rows, err := r.db.QueryContext(ctx, q, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]repository.Document, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		data, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
		}
		items = append(items, repository.Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a single document.
func (r *DocumentPostgres) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	const q = `
		SELECT data
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, q, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	data, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return &repository.Document{ID: id, Data: data}, nil
}

// Set inserts the document or replaces its body when the id is already taken.
func (r *DocumentPostgres) Set(ctx context.Context, collection, id string, data repository.Fields) error {
	const q = `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
	`
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, collection, id, string(raw))
	return err
}

// Update merges top-level keys into the stored body with the JSONB concatenation operator.
func (r *DocumentPostgres) Update(ctx context.Context, collection, id string, data repository.Fields) error {
	const q = `
		UPDATE documents
		SET data = data || $3::jsonb
		WHERE collection = $1 AND id = $2
	`
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	res, err := r.db.ExecContext(ctx, q, collection, id, string(raw))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a document. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, collection, id string) error {
	const q = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	_, err := r.db.ExecContext(ctx, q, collection, id)
	return err
}

// Ping checks database connectivity.
func (r *DocumentPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func decodeFields(raw []byte) (repository.Fields, error) {
	data := repository.Fields{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
