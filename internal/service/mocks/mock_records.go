package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"portfolioapi/internal/model"
)

// MockRecords is a testify mock of service.Records for any record type.
type MockRecords[R, C, U any] struct {
	mock.Mock
}

type (
	MockExperienceService = MockRecords[model.Experience, model.ExperienceInput, model.ExperiencePatch]
	MockProjectService    = MockRecords[model.Project, model.ProjectInput, model.ProjectPatch]
)

func (m *MockRecords[R, C, U]) List(ctx context.Context) ([]R, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]R), args.Error(1)
}

func (m *MockRecords[R, C, U]) Get(ctx context.Context, id string) (*R, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*R), args.Error(1)
}

func (m *MockRecords[R, C, U]) Create(ctx context.Context, in C) (*R, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*R), args.Error(1)
}

func (m *MockRecords[R, C, U]) Update(ctx context.Context, id string, patch U) (*R, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*R), args.Error(1)
}

func (m *MockRecords[R, C, U]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
