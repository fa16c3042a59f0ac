package mocks

import (
	"context"

	"codefactory/internal/models"
	"codefactory/internal/services"
)

type StoryProcessorMock struct {
	ProcessFunc func(ctx context.Context, story *models.UserStory) (*services.StoryResult, error)
}

func (m *StoryProcessorMock) Process(ctx context.Context, story *models.UserStory) (*services.StoryResult, error) {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, story)
	}
	return &services.StoryResult{Story: story}, nil
}
