package mocks

import (
	"context"
	"encoding/json"
	"io"

	"github.com/stretchr/testify/mock"

	"backoffice/internal/model"
	"backoffice/internal/service"
)

type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) Kinds() []service.ContentKind {
	return m.Called().Get(0).([]service.ContentKind)
}

func (m *MockContentService) List(ctx context.Context, kind string) ([]model.ContentBlock, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContentBlock), args.Error(1)
}

func (m *MockContentService) Get(ctx context.Context, kind, id string) (*model.ContentBlock, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentBlock), args.Error(1)
}

func (m *MockContentService) Create(ctx context.Context, kind string, data json.RawMessage) (*model.ContentBlock, error) {
	args := m.Called(ctx, kind, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentBlock), args.Error(1)
}

func (m *MockContentService) Update(ctx context.Context, kind, id string, data json.RawMessage) (*model.ContentBlock, error) {
	args := m.Called(ctx, kind, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentBlock), args.Error(1)
}

func (m *MockContentService) Delete(ctx context.Context, kind, id string) error {
	return m.Called(ctx, kind, id).Error(0)
}

func (m *MockContentService) SetImage(ctx context.Context, kind, id string, r io.Reader, filename string, size int64) (*model.ContentBlock, error) {
	args := m.Called(ctx, kind, id, r, filename, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentBlock), args.Error(1)
}

func (m *MockContentService) Reorder(ctx context.Context, kind string, ids []string) ([]model.ContentBlock, error) {
	args := m.Called(ctx, kind, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContentBlock), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardStats), args.Error(1)
}

func (m *MockDashboardService) Report(ctx context.Context, r service.DateRange) (*model.SalesReport, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SalesReport), args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, r io.Reader, filename string, size int64, prefix string) (string, error) {
	args := m.Called(ctx, r, filename, size, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockMediaService) URL(ctx context.Context, key string) string {
	return m.Called(ctx, key).String(0)
}

func (m *MockMediaService) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
