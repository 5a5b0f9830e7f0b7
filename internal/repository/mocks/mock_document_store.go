package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"portfolioapi/internal/repository"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) All(ctx context.Context, collection string) ([]repository.Document, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.Document), args.Error(1)
}

func (m *MockDocumentStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	args := m.Called(ctx, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Document), args.Error(1)
}

func (m *MockDocumentStore) Set(ctx context.Context, collection, id string, data repository.Fields) error {
	args := m.Called(ctx, collection, id, data)
	return args.Error(0)
}

func (m *MockDocumentStore) Update(ctx context.Context, collection, id string, data repository.Fields) error {
	args := m.Called(ctx, collection, id, data)
	return args.Error(0)
}

func (m *MockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *MockDocumentStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
