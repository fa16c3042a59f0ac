package prompt

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"codefactory/internal/models"
)

func testStory() *models.UserStory {
	return &models.UserStory{
		ID:          "story-1",
		Description: "Add a health check endpoint",
		Priority:    models.PriorityMedium,
		Notes:       "Return JSON",
	}
}

func TestRenderNewProject(t *testing.T) {
	b := NewBuilder("")

	rendered, err := b.Render(NewProject{Story: testStory()})

	assert.NoError(t, err)
	assert.NotEmpty(t, rendered.System)
	assert.Contains(t, rendered.System, "===FILE:")
	assert.Contains(t, rendered.User, "Add a health check endpoint")
	assert.Contains(t, rendered.User, "Priority: medium")
	assert.Contains(t, rendered.User, "Return JSON")
}

func TestRenderAdaptationEmbedsSnapshot(t *testing.T) {
	b := NewBuilder("")
	snapshot := models.FileSet{"main.go": "package main"}

	rendered, err := b.Render(Adaptation{Story: testStory(), Snapshot: snapshot})

	assert.NoError(t, err)
	assert.Contains(t, rendered.User, "===FILE: main.go===")
	assert.Contains(t, rendered.User, "package main")
	assert.Contains(t, rendered.User, "Add a health check endpoint")
}

func TestRenderOmitsEmptyNotes(t *testing.T) {
	b := NewBuilder("")
	story := testStory()
	story.Notes = ""

	rendered, err := b.Render(NewProject{Story: story})

	assert.NoError(t, err)
	assert.NotContains(t, rendered.User, "Additional notes")
}

func TestDebugDumpWritesRenderedPair(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(dir)
	b.now = func() time.Time {
		return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	}

	_, err := b.Render(NewProject{Story: testStory()})
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "model_messages_new_project_20240102_030405.txt", entries[0].Name())

		content, err := os.ReadFile(dir + "/" + entries[0].Name())
		assert.NoError(t, err)
		assert.True(t, strings.Contains(string(content), "Role: system"))
		assert.True(t, strings.Contains(string(content), "Role: user"))
		assert.True(t, strings.Contains(string(content), "Add a health check endpoint"))
	}
}
