package mocks

import (
	"context"

	"codefactory/internal/models"
)

type StoryServiceMock struct {
	SubmitFunc   func(ctx context.Context, description string, priority models.StoryPriority, notes, repositoryURL string) (*models.UserStory, error)
	GetFunc      func(ctx context.Context, id string) (*models.UserStory, error)
	ListFunc     func(ctx context.Context, limit, offset int) ([]models.UserStory, error)
	BeginFunc    func(ctx context.Context, id string) error
	CompleteFunc func(ctx context.Context, id string, resultReference string) error
	FailFunc     func(ctx context.Context, id string, reason string) error
}

func (m *StoryServiceMock) Submit(ctx context.Context, description string, priority models.StoryPriority, notes, repositoryURL string) (*models.UserStory, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, description, priority, notes, repositoryURL)
	}
	return &models.UserStory{ID: "story-1", Status: models.StatusPending}, nil
}

func (m *StoryServiceMock) Get(ctx context.Context, id string) (*models.UserStory, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &models.UserStory{ID: id}, nil
}

func (m *StoryServiceMock) List(ctx context.Context, limit, offset int) ([]models.UserStory, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []models.UserStory{}, nil
}

func (m *StoryServiceMock) Begin(ctx context.Context, id string) error {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, id)
	}
	return nil
}

func (m *StoryServiceMock) Complete(ctx context.Context, id string, resultReference string) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, id, resultReference)
	}
	return nil
}

func (m *StoryServiceMock) Fail(ctx context.Context, id string, reason string) error {
	if m.FailFunc != nil {
		return m.FailFunc(ctx, id, reason)
	}
	return nil
}
