// Package prompt renders the system/user message pair for a generation
// request. The template set is closed: a story without a repository URL gets
// the new-project template, everything else gets the adaptation template.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"codefactory/internal/llm/fileset"
	"codefactory/internal/models"
)

// Rendered is the system/user pair handed to the generation client.
type Rendered struct {
	System string
	User   string
}

// Request is the closed set of prompt variants. Each carries exactly the
// data its template needs; rendering is a pure function of that data.
type Request interface {
	templateName() string
	data() any
}

// NewProject asks the model to propose an initial file layout for a story
// that targets no existing repository.
type NewProject struct {
	Story *models.UserStory
}

// Adaptation embeds a snapshot of the existing files and asks the model to
// return only the files that must change.
type Adaptation struct {
	Story    *models.UserStory
	Snapshot models.FileSet
}

func (NewProject) templateName() string { return "new_project" }
func (Adaptation) templateName() string { return "adaptation" }

type storyData struct {
	Description string
	Priority    string
	Notes       string
	Snapshot    string
}

func (r NewProject) data() any {
	return storyData{
		Description: r.Story.Description,
		Priority:    string(r.Story.Priority),
		Notes:       r.Story.Notes,
	}
}

func (r Adaptation) data() any {
	return storyData{
		Description: r.Story.Description,
		Priority:    string(r.Story.Priority),
		Notes:       r.Story.Notes,
		Snapshot:    fileset.Format(r.Snapshot),
	}
}

// Builder renders prompt variants and, when debug mode is on, persists each
// rendered pair under <debugDir>/ for inspection. Debug dumps never change
// the prompt content and their failures are swallowed.
type Builder struct {
	debugDir string // empty disables debug dumps
	now      func() time.Time
}

func NewBuilder(debugDir string) *Builder {
	return &Builder{debugDir: debugDir, now: time.Now}
}

// Render produces the system/user pair for the request.
func (b *Builder) Render(req Request) (*Rendered, error) {
	name := req.templateName()

	system, err := loadTemplate(name + "_system")
	if err != nil {
		return nil, err
	}
	user, err := renderTemplate(name+"_user", req.data())
	if err != nil {
		return nil, err
	}

	rendered := &Rendered{System: system, User: user}
	b.dumpForDebug(name, rendered)
	return rendered, nil
}

func loadTemplate(name string) (string, error) {
	raw, err := embeddedPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("load prompt template %s: %w", name, err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}

func renderTemplate(name string, data any) (string, error) {
	raw, err := loadTemplate(name)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(name).Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse prompt template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt template %s: %w", name, err)
	}
	return sb.String(), nil
}

func (b *Builder) dumpForDebug(templateName string, r *Rendered) {
	if b.debugDir == "" {
		return
	}
	if err := os.MkdirAll(b.debugDir, 0755); err != nil {
		return
	}

	timestamp := b.now().Format("20060102_150405")
	path := filepath.Join(b.debugDir, fmt.Sprintf("model_messages_%s_%s.txt", templateName, timestamp))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Template: %s\n", templateName)
	fmt.Fprintf(&sb, "Timestamp: %s\n", timestamp)
	sb.WriteString(strings.Repeat("-", 80) + "\n\n")
	sb.WriteString("Role: system\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(r.System)
	sb.WriteString("\n" + strings.Repeat("=", 80) + "\n\n")
	sb.WriteString("Role: user\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(r.User)
	sb.WriteString("\n" + strings.Repeat("=", 80) + "\n")

	_ = os.WriteFile(path, []byte(sb.String()), 0644)
}
