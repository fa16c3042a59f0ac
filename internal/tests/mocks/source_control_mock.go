package mocks

import (
	"context"

	"codefactory/internal/models"
	"codefactory/internal/services"
)

type SourceControlMock struct {
	OpenOrCloneFunc            func(ctx context.Context, remoteURL string) (*services.RepositoryHandle, error)
	InitProjectFunc            func(storyID string) (*services.RepositoryHandle, error)
	SnapshotFilesFunc          func(handle *services.RepositoryHandle, pathFilters []string) (models.FileSet, error)
	CreateBranchFunc           func(handle *services.RepositoryHandle, baseBranch, newBranch string) error
	ApplyChangesFunc           func(handle *services.RepositoryHandle, files models.FileSet, commitMessage string) error
	PushAndOpenPullRequestFunc func(ctx context.Context, handle *services.RepositoryHandle, branch, base, title, body string) (*models.PullRequestResult, error)
}

func (m *SourceControlMock) OpenOrClone(ctx context.Context, remoteURL string) (*services.RepositoryHandle, error) {
	if m.OpenOrCloneFunc != nil {
		return m.OpenOrCloneFunc(ctx, remoteURL)
	}
	return &services.RepositoryHandle{RemoteURL: remoteURL}, nil
}

func (m *SourceControlMock) InitProject(storyID string) (*services.RepositoryHandle, error) {
	if m.InitProjectFunc != nil {
		return m.InitProjectFunc(storyID)
	}
	return &services.RepositoryHandle{}, nil
}

func (m *SourceControlMock) SnapshotFiles(handle *services.RepositoryHandle, pathFilters []string) (models.FileSet, error) {
	if m.SnapshotFilesFunc != nil {
		return m.SnapshotFilesFunc(handle, pathFilters)
	}
	return models.FileSet{}, nil
}

func (m *SourceControlMock) CreateBranch(handle *services.RepositoryHandle, baseBranch, newBranch string) error {
	if m.CreateBranchFunc != nil {
		return m.CreateBranchFunc(handle, baseBranch, newBranch)
	}
	return nil
}

func (m *SourceControlMock) ApplyChanges(handle *services.RepositoryHandle, files models.FileSet, commitMessage string) error {
	if m.ApplyChangesFunc != nil {
		return m.ApplyChangesFunc(handle, files, commitMessage)
	}
	return nil
}

func (m *SourceControlMock) PushAndOpenPullRequest(ctx context.Context, handle *services.RepositoryHandle, branch, base, title, body string) (*models.PullRequestResult, error) {
	if m.PushAndOpenPullRequestFunc != nil {
		return m.PushAndOpenPullRequestFunc(ctx, handle, branch, base, title, body)
	}
	return &models.PullRequestResult{URL: "https://github.com/example/pull/1", BranchName: branch, BaseBranch: base}, nil
}
