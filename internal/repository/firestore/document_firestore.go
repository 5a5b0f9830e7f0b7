package firestore

import (
	"context"
	"errors"
	"fmt"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portfolioapi/internal/repository"
)

// DocumentFirestore is a Cloud Firestore implementation of repository.DocumentStore.
// It is safe for concurrent use by multiple goroutines.
type DocumentFirestore struct {
	client *gfs.Client
}

// NewDocumentFirestore wraps an existing Firestore client. The caller owns the client and closes it.
func NewDocumentFirestore(client *gfs.Client) *DocumentFirestore {
	return &DocumentFirestore{client: client}
}

var _ repository.DocumentStore = (*DocumentFirestore)(nil)

// All streams every document of the collection.
func (r *DocumentFirestore) All(ctx context.Context, collection string) ([]repository.Document, error) {
	coll := r.client.Collection(collection)
	if coll == nil {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	iter := coll.Documents(ctx)
	defer iter.Stop()

	items := make([]repository.Document, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		items = append(items, repository.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return items, nil
}

// Get reads one document. Ids Firestore cannot address (for example ones containing '/') are reported as not found.
func (r *DocumentFirestore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	ref := r.doc(collection, id)
	if ref == nil {
		return nil, repository.ErrNotFound
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if !snap.Exists() {
		return nil, repository.ErrNotFound
	}
	return &repository.Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Set writes the whole document, replacing any existing one.
func (r *DocumentFirestore) Set(ctx context.Context, collection, id string, data repository.Fields) error {
	ref := r.doc(collection, id)
	if ref == nil {
		return fmt.Errorf("invalid document id %q", id)
	}
	_, err := ref.Set(ctx, map[string]any(data))
	return err
}

// Update merges top-level fields. Each key is sent as a single-element FieldPath so dots are never treated as nesting.
func (r *DocumentFirestore) Update(ctx context.Context, collection, id string, data repository.Fields) error {
	ref := r.doc(collection, id)
	if ref == nil {
		return repository.ErrNotFound
	}
	if len(data) == 0 {
		_, err := r.Get(ctx, collection, id)
		return err
	}

	updates := make([]gfs.Update, 0, len(data))
	for k, v := range data {
		updates = append(updates, gfs.Update{FieldPath: gfs.FieldPath{k}, Value: v})
	}
	if _, err := ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the document. Firestore treats deleting a missing document as success.
func (r *DocumentFirestore) Delete(ctx context.Context, collection, id string) error {
	ref := r.doc(collection, id)
	if ref == nil {
		return nil
	}
	_, err := ref.Delete(ctx)
	return err
}

// Ping lists at most one top-level collection to verify the backend answers.
func (r *DocumentFirestore) Ping(ctx context.Context) error {
	iter := r.client.Collections(ctx)
	_, err := iter.Next()
	if err == nil || errors.Is(err, iterator.Done) {
		return nil
	}
	return err
}

func (r *DocumentFirestore) doc(collection, id string) *gfs.DocumentRef {
	if id == "" {
		return nil
	}
	coll := r.client.Collection(collection)
	if coll == nil {
		return nil
	}
	return coll.Doc(id)
}
