package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"codefactory/internal/apperrors"
	"codefactory/internal/models"
	"codefactory/internal/repositories"
)

const (
	maxDescriptionLen = 1000
	maxNotesLen       = 2000
)

var githubURLPattern = regexp.MustCompile(
	`^(https?://github\.com/[\w.-]+/[\w.-]+(?:\.git)?|git@github\.com:[\w.-]+/[\w.-]+(?:\.git)?)$`)

// StoryService owns UserStory records: validated creation and forward-only
// status transitions. Stories are append-only history; nothing deletes them.
type StoryService interface {
	Submit(ctx context.Context, description string, priority models.StoryPriority, notes, repositoryURL string) (*models.UserStory, error)
	Get(ctx context.Context, id string) (*models.UserStory, error)
	List(ctx context.Context, limit, offset int) ([]models.UserStory, error)
	Begin(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, resultReference string) error
	Fail(ctx context.Context, id string, reason string) error
}

type storyService struct {
	stories repositories.StoryRepository
}

func NewStoryService(stories repositories.StoryRepository) StoryService {
	return &storyService{stories: stories}
}

// Submit validates the input and persists the story as pending. Validation
// happens before any collaborator runs; an invalid submission has no side
// effects.
func (s *storyService) Submit(ctx context.Context, description string, priority models.StoryPriority, notes, repositoryURL string) (*models.UserStory, error) {
	description = strings.TrimSpace(description)
	notes = strings.TrimSpace(notes)
	repositoryURL = strings.TrimSpace(repositoryURL)

	if description == "" {
		return nil, apperrors.New(apperrors.KindValidation, "user story is required")
	}
	if len(description) > maxDescriptionLen {
		return nil, apperrors.New(apperrors.KindValidation, "user story is too long (max %d characters)", maxDescriptionLen)
	}
	if !priority.Valid() {
		return nil, apperrors.New(apperrors.KindValidation, "priority must be one of: low, medium, high")
	}
	if len(notes) > maxNotesLen {
		return nil, apperrors.New(apperrors.KindValidation, "notes are too long (max %d characters)", maxNotesLen)
	}
	if repositoryURL != "" && !githubURLPattern.MatchString(repositoryURL) {
		return nil, apperrors.New(apperrors.KindValidation, "invalid GitHub repository URL: %s", repositoryURL)
	}

	story := &models.UserStory{
		ID:            uuid.NewString(),
		Description:   description,
		Priority:      priority,
		Notes:         notes,
		RepositoryURL: repositoryURL,
		Status:        models.StatusPending,
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

func (s *storyService) Get(ctx context.Context, id string) (*models.UserStory, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.New(apperrors.KindValidation, "story ID is required")
	}
	return s.stories.FindByID(ctx, id)
}

func (s *storyService) List(ctx context.Context, limit, offset int) ([]models.UserStory, error) {
	return s.stories.List(ctx, limit, offset)
}

func (s *storyService) Begin(ctx context.Context, id string) error {
	return s.stories.Transition(ctx, id, models.StatusPending, models.StatusInProgress, "")
}

func (s *storyService) Complete(ctx context.Context, id string, resultReference string) error {
	return s.stories.Transition(ctx, id, models.StatusInProgress, models.StatusCompleted, resultReference)
}

// Fail records the triggering error's message verbatim so the submitter can
// diagnose it.
func (s *storyService) Fail(ctx context.Context, id string, reason string) error {
	return s.stories.Transition(ctx, id, models.StatusInProgress, models.StatusFailed, reason)
}
