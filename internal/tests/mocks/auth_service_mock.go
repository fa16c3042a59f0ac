package mocks

import (
	"context"

	"codefactory/internal/models"
)

type AuthServiceMock struct {
	ExchangeCodeFunc     func(ctx context.Context, code string) (string, error)
	FetchProfileFunc     func(ctx context.Context, token string) (*models.UserProfile, error)
	ListRepositoriesFunc func(ctx context.Context, token string) ([]models.RepositoryInfo, error)
}

func (m *AuthServiceMock) ExchangeCode(ctx context.Context, code string) (string, error) {
	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, code)
	}
	return "token", nil
}

func (m *AuthServiceMock) FetchProfile(ctx context.Context, token string) (*models.UserProfile, error) {
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, token)
	}
	return &models.UserProfile{Login: "someone"}, nil
}

func (m *AuthServiceMock) ListRepositories(ctx context.Context, token string) ([]models.RepositoryInfo, error) {
	if m.ListRepositoriesFunc != nil {
		return m.ListRepositoriesFunc(ctx, token)
	}
	return []models.RepositoryInfo{}, nil
}
