package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"backoffice/internal/model"
)

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, b *model.ContentBlock) (*model.ContentBlock, error) {
	args := m.Called(ctx, b)
	if f, ok := args.Get(0).(func(context.Context, *model.ContentBlock) *model.ContentBlock); ok {
		return f(ctx, b), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentBlock), args.Error(1)
}

func (m *MockContentRepository) FindByID(ctx context.Context, kind, id string) (*model.ContentBlock, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentBlock), args.Error(1)
}

func (m *MockContentRepository) List(ctx context.Context, kind string) ([]model.ContentBlock, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContentBlock), args.Error(1)
}

func (m *MockContentRepository) Count(ctx context.Context, kind string) (int, error) {
	args := m.Called(ctx, kind)
	return args.Int(0), args.Error(1)
}

func (m *MockContentRepository) CountByField(ctx context.Context, kind, field, value string) (int, error) {
	args := m.Called(ctx, kind, field, value)
	return args.Int(0), args.Error(1)
}

func (m *MockContentRepository) Update(ctx context.Context, b *model.ContentBlock) (*model.ContentBlock, error) {
	args := m.Called(ctx, b)
	if f, ok := args.Get(0).(func(context.Context, *model.ContentBlock) *model.ContentBlock); ok {
		return f(ctx, b), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentBlock), args.Error(1)
}

func (m *MockContentRepository) Delete(ctx context.Context, kind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockContentRepository) Reorder(ctx context.Context, kind string, ids []string) error {
	args := m.Called(ctx, kind, ids)
	return args.Error(0)
}
