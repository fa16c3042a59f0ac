package unit_tests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"codefactory/internal/apperrors"
	"codefactory/internal/models"
	"codefactory/internal/services"
	"codefactory/internal/tests/mocks"
)

func TestSubmitPersistsPendingStory(t *testing.T) {
	var created *models.UserStory
	repo := &mocks.StoryRepositoryMock{
		CreateFunc: func(ctx context.Context, story *models.UserStory) error {
			created = story
			return nil
		},
	}
	svc := services.NewStoryService(repo)

	story, err := svc.Submit(context.Background(),
		"  Add a health check endpoint  ", models.PriorityHigh, " note ", "https://github.com/acme/api")

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, created, story)
	assert.Equal(t, models.StatusPending, story.Status)
	assert.Equal(t, "Add a health check endpoint", story.Description)
	assert.Equal(t, "note", story.Notes)
	assert.Equal(t, "https://github.com/acme/api", story.RepositoryURL)

	_, err = uuid.Parse(story.ID)
	assert.NoError(t, err)
}

func TestSubmitAcceptsSSHRepositoryURL(t *testing.T) {
	svc := services.NewStoryService(&mocks.StoryRepositoryMock{})

	story, err := svc.Submit(context.Background(),
		"Do a thing", models.PriorityLow, "", "git@github.com:acme/api.git")

	assert.NoError(t, err)
	assert.Equal(t, "git@github.com:acme/api.git", story.RepositoryURL)
}

func TestSubmitValidationShortCircuits(t *testing.T) {
	cases := []struct {
		name        string
		description string
		priority    models.StoryPriority
		notes       string
		repository  string
	}{
		{"empty description", "", models.PriorityLow, "", ""},
		{"blank description", "   ", models.PriorityLow, "", ""},
		{"description too long", strings.Repeat("a", 1001), models.PriorityLow, "", ""},
		{"unknown priority", "Do a thing", "urgent", "", ""},
		{"notes too long", "Do a thing", models.PriorityLow, strings.Repeat("n", 2001), ""},
		{"non-github repository", "Do a thing", models.PriorityLow, "", "https://gitlab.com/acme/api"},
		{"garbage repository", "Do a thing", models.PriorityLow, "", "not a url"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			createCalled := false
			repo := &mocks.StoryRepositoryMock{
				CreateFunc: func(ctx context.Context, story *models.UserStory) error {
					createCalled = true
					return nil
				},
			}
			svc := services.NewStoryService(repo)

			story, err := svc.Submit(context.Background(), tc.description, tc.priority, tc.notes, tc.repository)

			assert.Error(t, err)
			assert.Nil(t, story)
			assert.True(t, errors.Is(err, apperrors.Validation))
			assert.False(t, createCalled, "an invalid submission must not reach the store")
		})
	}
}

func TestGetRequiresID(t *testing.T) {
	svc := services.NewStoryService(&mocks.StoryRepositoryMock{})

	_, err := svc.Get(context.Background(), "  ")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.Validation))
}

func TestStatusTransitionsDelegateWithGuards(t *testing.T) {
	type call struct {
		from, to models.StoryStatus
		ref      string
	}
	var got call
	repo := &mocks.StoryRepositoryMock{
		TransitionFunc: func(ctx context.Context, id string, from, to models.StoryStatus, ref string) error {
			got = call{from: from, to: to, ref: ref}
			return nil
		},
	}
	svc := services.NewStoryService(repo)

	assert.NoError(t, svc.Begin(context.Background(), "s1"))
	assert.Equal(t, call{models.StatusPending, models.StatusInProgress, ""}, got)

	assert.NoError(t, svc.Complete(context.Background(), "s1", "https://github.com/acme/api/pull/7"))
	assert.Equal(t, call{models.StatusInProgress, models.StatusCompleted, "https://github.com/acme/api/pull/7"}, got)

	assert.NoError(t, svc.Fail(context.Background(), "s1", "push of branch x was rejected"))
	assert.Equal(t, call{models.StatusInProgress, models.StatusFailed, "push of branch x was rejected"}, got)
}
