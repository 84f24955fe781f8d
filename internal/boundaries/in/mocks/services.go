// Package mocks provides testify mocks for the in boundaries.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/in"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
)

var (
	_ in.ConfigService = (*MockConfigService)(nil)
	_ in.AuthService   = (*MockAuthService)(nil)
)

// MockConfigService is a mock implementation of in.ConfigService
type MockConfigService struct {
	mock.Mock
}

func (m *MockConfigService) Create(ctx context.Context, raw any) (domain.StoredConfig, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(domain.StoredConfig), args.Error(1)
}

func (m *MockConfigService) Get(ctx context.Context, id string) (domain.StoredConfig, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.StoredConfig), args.Error(1)
}

func (m *MockConfigService) Update(ctx context.Context, id string, raw any) (domain.StoredConfig, error) {
	args := m.Called(ctx, id, raw)
	return args.Get(0).(domain.StoredConfig), args.Error(1)
}

func (m *MockConfigService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockConfigService) List(ctx context.Context, q domain.ListQuery) (domain.ConfigPage, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(domain.ConfigPage), args.Error(1)
}

func (m *MockConfigService) Duplicate(ctx context.Context, id string) (domain.StoredConfig, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.StoredConfig), args.Error(1)
}

func (m *MockConfigService) Preview(ctx context.Context, raw any) (domain.Preview, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(domain.Preview), args.Error(1)
}

func (m *MockConfigService) Import(ctx context.Context, command string) (domain.StoredConfig, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(domain.StoredConfig), args.Error(1)
}

// MockAuthService is a mock implementation of in.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password, clientIP string) (domain.User, error) {
	args := m.Called(ctx, email, password, clientIP)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.ProfileResult, error) {
	args := m.Called(ctx, userID, update)
	return args.Get(0).(domain.ProfileResult), args.Error(1)
}

func (m *MockAuthService) CreateUser(ctx context.Context, name, email, password string) (domain.User, error) {
	args := m.Called(ctx, name, email, password)
	return args.Get(0).(domain.User), args.Error(1)
}
