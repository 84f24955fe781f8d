// Package mocks provides testify mocks for the out boundaries.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/out"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
)

var (
	_ out.ConfigStore = (*MockConfigStore)(nil)
	_ out.UserStore   = (*MockUserStore)(nil)
	_ out.RateLimiter = (*MockRateLimiter)(nil)
	_ out.Metrics     = (*MockMetrics)(nil)
)

// MockConfigStore is a mock implementation of out.ConfigStore
type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) Insert(ctx context.Context, rec domain.StoredConfig) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockConfigStore) Get(ctx context.Context, id string) (domain.StoredConfig, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.StoredConfig), args.Error(1)
}

func (m *MockConfigStore) Update(ctx context.Context, rec domain.StoredConfig) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockConfigStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockConfigStore) List(ctx context.Context, q domain.ListQuery) ([]domain.StoredConfig, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StoredConfig), args.Int(1), args.Error(2)
}

func (m *MockConfigStore) NameExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// MockUserStore is a mock implementation of out.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, u domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, u domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockRateLimiter is a mock implementation of out.RateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) bool {
	args := m.Called(ctx, key)
	return args.Bool(0)
}

func (m *MockRateLimiter) AllowN(ctx context.Context, key string, n int) bool {
	args := m.Called(ctx, key, n)
	return args.Bool(0)
}

// MockMetrics is a mock implementation of out.Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RenderObserved(mode string) {
	m.Called(mode)
}

func (m *MockMetrics) ConfigOperation(op, result string) {
	m.Called(op, result)
}

func (m *MockMetrics) LoginAttempt(result string) {
	m.Called(result)
}
