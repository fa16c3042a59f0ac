package mocks

import (
	"context"

	"codefactory/internal/models"
)

type StoryRepositoryMock struct {
	CreateFunc     func(ctx context.Context, story *models.UserStory) error
	FindByIDFunc   func(ctx context.Context, id string) (*models.UserStory, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]models.UserStory, error)
	TransitionFunc func(ctx context.Context, id string, from, to models.StoryStatus, resultReference string) error
}

func (m *StoryRepositoryMock) Create(ctx context.Context, story *models.UserStory) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, story)
	}
	return nil
}

func (m *StoryRepositoryMock) FindByID(ctx context.Context, id string) (*models.UserStory, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *StoryRepositoryMock) List(ctx context.Context, limit, offset int) ([]models.UserStory, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []models.UserStory{}, nil
}

func (m *StoryRepositoryMock) Transition(ctx context.Context, id string, from, to models.StoryStatus, resultReference string) error {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, id, from, to, resultReference)
	}
	return nil
}
