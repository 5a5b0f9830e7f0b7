package memory

import (
	"context"
	"sync"
	"time"

	"portfolioapi/internal/repository"
)

// DocumentMemory keeps documents in process memory. Data is lost on restart.
// Safe for concurrent use.
type DocumentMemory struct {
	mu          sync.RWMutex
	collections map[string]map[string]repository.Fields
}

// NewDocumentMemory creates an empty in-memory store.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{
		collections: make(map[string]map[string]repository.Fields),
	}
}

var _ repository.DocumentStore = (*DocumentMemory)(nil)

func (m *DocumentMemory) All(_ context.Context, collection string) ([]repository.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.collections[collection]
	out := make([]repository.Document, 0, len(coll))
	for id, data := range coll {
		out = append(out, repository.Document{ID: id, Data: copyFields(data)})
	}
	return out, nil
}

func (m *DocumentMemory) Get(_ context.Context, collection, id string) (*repository.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.Document{ID: id, Data: copyFields(data)}, nil
}

func (m *DocumentMemory) Set(_ context.Context, collection, id string, data repository.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string]repository.Fields)
		m.collections[collection] = coll
	}
	coll[id] = copyFields(data)
	return nil
}

func (m *DocumentMemory) Update(_ context.Context, collection, id string, data repository.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.collections[collection][id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range copyFields(data) {
		stored[k] = v
	}
	return nil
}

func (m *DocumentMemory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], id)
	return nil
}

func (m *DocumentMemory) Ping(context.Context) error {
	return nil
}

// copyFields deep-copies the value shapes that documents are built from so callers
// never share slices or maps with the store.
func copyFields(src repository.Fields) repository.Fields {
	dst := make(repository.Fields, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(copyFields(t))
	case repository.Fields:
		return copyFields(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = copyValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case time.Time:
		return t
	default:
		return v
	}
}
