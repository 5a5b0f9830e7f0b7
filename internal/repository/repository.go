package repository

import (
	"context"
	"errors"
)

// Package repository contains the document store abstraction used by the record access layer.
// Implementations live in subpackages (postgres, firestore, memory) inside this directory.

// ErrNotFound is returned when no document exists under the requested collection and id.
var ErrNotFound = errors.New("document not found")

// Fields is the schemaless body of a stored document.
type Fields map[string]any

// Document is a stored document together with its identifier.
type Document struct {
	ID   string
	Data Fields
}

// DocumentStore addresses documents by collection name and string id.
// Implementations hold no business logic.
type DocumentStore interface {
	// All returns every document in the collection in store-native order.
	// An empty or unknown collection yields an empty slice.
	All(ctx context.Context, collection string) ([]Document, error)

	// Get returns a single document, or ErrNotFound if it does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Set creates the document or replaces it entirely.
	Set(ctx context.Context, collection, id string, data Fields) error

	// Update merges the given top-level fields into an existing document.
	// Fields not present in data keep their stored values. Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, data Fields) error

	// Delete removes the document. It returns nil if the document did not exist.
	Delete(ctx context.Context, collection, id string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
