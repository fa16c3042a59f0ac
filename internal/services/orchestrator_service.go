package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"codefactory/internal/models"
	"codefactory/internal/prompt"
)

// Generator is the narrow view of the generation client the orchestrator
// needs: one completion in, one file set out.
type Generator interface {
	Generate(ctx context.Context, system, user string) (models.FileSet, error)
}

// PromptRenderer renders a prompt variant into a system/user pair.
type PromptRenderer interface {
	Render(req prompt.Request) (*prompt.Rendered, error)
}

// StoryResult is the terminal outcome of one processed story.
type StoryResult struct {
	Story       *models.UserStory         `json:"story"`
	PullRequest *models.PullRequestResult `json:"pullRequest,omitempty"`
	// LocalPath is set instead of PullRequest for new-project stories,
	// which have no remote to push to.
	LocalPath string `json:"localPath,omitempty"`
}

// Orchestrator drives one story through
// validated -> repo_ready -> prompted -> generated -> applied -> pr_opened,
// synchronously and without retries. Any step's failure marks the story
// failed with the triggering error's message recorded verbatim.
type Orchestrator struct {
	stories       StoryService
	sourceControl SourceControl
	prompts       PromptRenderer
	generator     Generator
	registry      *RepoRegistry
	baseBranch    string
}

func NewOrchestrator(stories StoryService, sourceControl SourceControl, prompts PromptRenderer, generator Generator, registry *RepoRegistry, baseBranch string) *Orchestrator {
	return &Orchestrator{
		stories:       stories,
		sourceControl: sourceControl,
		prompts:       prompts,
		generator:     generator,
		registry:      registry,
		baseBranch:    baseBranch,
	}
}

// Process runs the pipeline for a validated, pending story. The story store
// is updated exactly once per terminal transition.
func (o *Orchestrator) Process(ctx context.Context, story *models.UserStory) (*StoryResult, error) {
	if err := o.stories.Begin(ctx, story.ID); err != nil {
		return nil, fmt.Errorf("story %s could not start: %w", story.ID, err)
	}

	result, err := o.run(ctx, story)
	if err != nil {
		if failErr := o.stories.Fail(ctx, story.ID, err.Error()); failErr != nil {
			log.Printf("orchestrator: failed to record failure for story %s: %v", story.ID, failErr)
		}
		story.Status = models.StatusFailed
		story.ResultReference = err.Error()
		return nil, err
	}

	resultRef := result.LocalPath
	if result.PullRequest != nil {
		resultRef = result.PullRequest.URL
	}
	if completeErr := o.stories.Complete(ctx, story.ID, resultRef); completeErr != nil {
		log.Printf("orchestrator: failed to record completion for story %s: %v", story.ID, completeErr)
	}
	story.Status = models.StatusCompleted
	story.ResultReference = resultRef
	result.Story = story
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, story *models.UserStory) (*StoryResult, error) {
	if story.NewProject() {
		return o.runNewProject(ctx, story)
	}
	return o.runAdaptation(ctx, story)
}

func (o *Orchestrator) runAdaptation(ctx context.Context, story *models.UserStory) (*StoryResult, error) {
	// One story at a time per repository: the working copy is shared and
	// interleaved checkouts would corrupt it.
	lease := o.registry.Acquire(story.RepositoryURL)
	defer lease.Release()

	handle, err := o.sourceControl.OpenOrClone(ctx, story.RepositoryURL)
	if err != nil {
		return nil, err
	}

	snapshot, err := o.sourceControl.SnapshotFiles(handle, nil)
	if err != nil {
		return nil, err
	}

	rendered, err := o.prompts.Render(prompt.Adaptation{Story: story, Snapshot: snapshot})
	if err != nil {
		return nil, err
	}

	files, err := o.generator.Generate(ctx, rendered.System, rendered.User)
	if err != nil {
		return nil, err
	}

	branch := branchNameFor(story)
	if err := o.sourceControl.CreateBranch(handle, o.baseBranch, branch); err != nil {
		return nil, err
	}
	if err := o.sourceControl.ApplyChanges(handle, files, commitMessageFor(story)); err != nil {
		return nil, err
	}

	pr, err := o.sourceControl.PushAndOpenPullRequest(ctx, handle, branch, o.baseBranch,
		pullRequestTitleFor(story), pullRequestBodyFor(story))
	if err != nil {
		return nil, err
	}

	return &StoryResult{PullRequest: pr}, nil
}

func (o *Orchestrator) runNewProject(ctx context.Context, story *models.UserStory) (*StoryResult, error) {
	handle, err := o.sourceControl.InitProject(story.ID)
	if err != nil {
		return nil, err
	}

	rendered, err := o.prompts.Render(prompt.NewProject{Story: story})
	if err != nil {
		return nil, err
	}

	files, err := o.generator.Generate(ctx, rendered.System, rendered.User)
	if err != nil {
		return nil, err
	}

	if err := o.sourceControl.ApplyChanges(handle, files, commitMessageFor(story)); err != nil {
		return nil, err
	}

	return &StoryResult{LocalPath: handle.Path}, nil
}

// branchNameFor derives a branch name unique per story: the story id prefix
// plus a timestamp.
func branchNameFor(story *models.UserStory) string {
	prefix := story.ID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	suffix := time.Now().Format("20060102150405")
	return fmt.Sprintf("feature/story-%s-%s", prefix, suffix)
}

func commitMessageFor(story *models.UserStory) string {
	return fmt.Sprintf("Implement user story %s\n\n%s", story.ID, story.Description)
}

func pullRequestTitleFor(story *models.UserStory) string {
	title := strings.TrimSpace(story.Description)
	if idx := strings.IndexByte(title, '\n'); idx > 0 {
		title = title[:idx]
	}
	if len(title) > 72 {
		title = title[:69] + "..."
	}
	return title
}

func pullRequestBodyFor(story *models.UserStory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generated for user story `%s`.\n\n", story.ID)
	fmt.Fprintf(&sb, "**Story**: %s\n\n", story.Description)
	fmt.Fprintf(&sb, "**Priority**: %s\n", story.Priority)
	if story.Notes != "" {
		fmt.Fprintf(&sb, "\n**Notes**: %s\n", story.Notes)
	}
	return sb.String()
}
