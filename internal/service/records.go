package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("record not found")
)

const (
	fieldID        = "id"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// Records is the record access layer for one collection.
// R is the record type returned to callers, C the create input and U the partial update.
type Records[R, C, U any] interface {
	// List returns every record of the collection. An empty collection yields an empty slice.
	List(ctx context.Context) ([]R, error)

	// Get returns a record by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*R, error)

	// Create assigns a new id and created_at, then stores the input.
	Create(ctx context.Context, in C) (*R, error)

	// Update stamps updated_at, merges the non-nil patch fields into the stored record
	// and returns the record as read back from the store. Returns ErrNotFound if id does not exist.
	Update(ctx context.Context, id string, patch U) (*R, error)

	// Delete removes the record. Deleting an id that does not exist is not an error.
	Delete(ctx context.Context, id string) error
}

type (
	ExperienceService = Records[model.Experience, model.ExperienceInput, model.ExperiencePatch]
	ProjectService    = Records[model.Project, model.ProjectInput, model.ProjectPatch]
)

// Option customizes a record collection.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how new record ids are produced.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// collection is a concrete implementation of Records over a repository.DocumentStore.
type collection[R, C, U any] struct {
	store repository.DocumentStore
	name  string
	now   func() time.Time
	newID func() string
}

// NewRecords constructs the access layer for the named collection.
func NewRecords[R, C, U any](store repository.DocumentStore, name string, opts ...Option) Records[R, C, U] {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &collection[R, C, U]{store: store, name: name, now: o.now, newID: o.newID}
}

// NewExperienceService constructs the access layer for the experiences collection.
func NewExperienceService(store repository.DocumentStore, opts ...Option) ExperienceService {
	return NewRecords[model.Experience, model.ExperienceInput, model.ExperiencePatch](store, model.ExperienceCollection, opts...)
}

// NewProjectService constructs the access layer for the projects collection.
func NewProjectService(store repository.DocumentStore, opts ...Option) ProjectService {
	return NewRecords[model.Project, model.ProjectInput, model.ProjectPatch](store, model.ProjectCollection, opts...)
}

func (s *collection[R, C, U]) List(ctx context.Context) ([]R, error) {
	docs, err := s.store.All(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}
	out := make([]R, 0, len(docs))
	for _, d := range docs {
		rec, err := toRecord[R](d.ID, d.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", s.name, d.ID, err)
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *collection[R, C, U]) Get(ctx context.Context, id string) (*R, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.store.Get(ctx, s.name, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", s.name, id, err)
	}
	rec, err := toRecord[R](doc.ID, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", s.name, id, err)
	}
	return rec, nil
}

func (s *collection[R, C, U]) Create(ctx context.Context, in C) (*R, error) {
	data, err := toFields(in)
	if err != nil {
		return nil, err
	}
	data[fieldCreatedAt] = s.now()

	id := s.newID()
	if err := s.store.Set(ctx, s.name, id, data); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.name, err)
	}
	return toRecord[R](id, data)
}

func (s *collection[R, C, U]) Update(ctx context.Context, id string, patch U) (*R, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	data, err := toFields(patch)
	if err != nil {
		return nil, err
	}
	data[fieldUpdatedAt] = s.now()

	if err := s.store.Update(ctx, s.name, id, data); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update %s/%s: %w", s.name, id, err)
	}
	return s.Get(ctx, id)
}

func (s *collection[R, C, U]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.store.Delete(ctx, s.name, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", s.name, id, err)
	}
	return nil
}

// toFields converts an input or patch into document fields. Nil patch pointers are
// dropped by their omitempty tags; server-managed keys are never taken from the caller.
func toFields(v any) (repository.Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	data := repository.Fields{}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	delete(data, fieldID)
	delete(data, fieldCreatedAt)
	delete(data, fieldUpdatedAt)
	return data, nil
}

// toRecord decodes stored fields into the record type and annotates it with its id.
func toRecord[R any](id string, data repository.Fields) (*R, error) {
	withID := make(map[string]any, len(data)+1)
	for k, v := range data {
		withID[k] = v
	}
	withID[fieldID] = id

	b, err := json.Marshal(withID)
	if err != nil {
		return nil, err
	}
	var rec R
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
