package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"codefactory/internal/models"
)

type StoryRepository interface {
	Create(ctx context.Context, story *models.UserStory) error
	FindByID(ctx context.Context, id string) (*models.UserStory, error)
	List(ctx context.Context, limit, offset int) ([]models.UserStory, error)
	// Transition moves a story from one status to another. It returns an
	// error when the story is not currently in `from`, which makes terminal
	// transitions exactly-once under concurrent updates.
	Transition(ctx context.Context, id string, from, to models.StoryStatus, resultReference string) error
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.UserStory) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepository) FindByID(ctx context.Context, id string) (*models.UserStory, error) {
	var story models.UserStory
	if err := r.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) List(ctx context.Context, limit, offset int) ([]models.UserStory, error) {
	var stories []models.UserStory
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepository) Transition(ctx context.Context, id string, from, to models.StoryStatus, resultReference string) error {
	updates := map[string]interface{}{"status": to}
	if resultReference != "" {
		updates["result_reference"] = resultReference
	}

	res := r.db.WithContext(ctx).
		Model(&models.UserStory{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("story %s is not in status %q", id, from)
	}
	return nil
}
