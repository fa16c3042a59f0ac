package services

import (
	"gorm.io/gorm"

	"codefactory/internal/repositories"
)

// DbServices aggregates the domain services backed by the database.
type DbServices struct {
	Stories StoryService
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB) *DbServices {
	storyRepo := repositories.NewStoryRepository(db)

	return &DbServices{
		Stories: NewStoryService(storyRepo),
	}
}
