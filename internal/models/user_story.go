package models

import "time"

type StoryPriority string

const (
	PriorityLow    StoryPriority = "low"
	PriorityMedium StoryPriority = "medium"
	PriorityHigh   StoryPriority = "high"
)

func (p StoryPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type StoryStatus string

const (
	StatusPending    StoryStatus = "pending"
	StatusInProgress StoryStatus = "in_progress"
	StatusCompleted  StoryStatus = "completed"
	StatusFailed     StoryStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s StoryStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// UserStory is one submitted change request. Rows are never deleted; the
// status column only moves forward (pending -> in_progress -> completed|failed).
type UserStory struct {
	ID            string        `gorm:"primaryKey;size:36"`
	Description   string        `gorm:"type:text;not null"`
	Priority      StoryPriority `gorm:"size:16;not null"`
	Notes         string        `gorm:"type:text"`
	RepositoryURL string        `gorm:"size:512"`
	Status        StoryStatus   `gorm:"size:16;not null;index"`

	// ResultReference holds the PR URL on success or the triggering error
	// message, verbatim, on failure.
	ResultReference string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProject reports whether the story targets no existing repository.
func (s *UserStory) NewProject() bool {
	return s.RepositoryURL == ""
}
