package unit_tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"codefactory/internal/apperrors"
	"codefactory/internal/config"
	"codefactory/internal/models"
	"codefactory/internal/services"
)

func newGitService(t *testing.T) *services.GitService {
	t.Helper()
	return services.NewGitService(&config.Config{
		RepoDir:               t.TempDir(),
		BaseBranch:            "main",
		GitHubToken:           "test-token",
		SnapshotMaxFileBytes:  100,
		SnapshotMaxTotalBytes: 10 * 1024,
	})
}

func TestParseGitHubURL(t *testing.T) {
	cases := []struct {
		url         string
		owner, name string
		wantErr     bool
	}{
		{url: "https://github.com/acme/api", owner: "acme", name: "api"},
		{url: "https://github.com/acme/api.git", owner: "acme", name: "api"},
		{url: "https://github.com/acme/api/", owner: "acme", name: "api"},
		{url: "git@github.com:acme/api.git", owner: "acme", name: "api"},
		{url: "https://gitlab.com/acme/api", wantErr: true},
		{url: "https://github.com/acme", wantErr: true},
		{url: "https://github.com/acme/api/extra", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tc := range cases {
		owner, name, err := services.ParseGitHubURL(tc.url)
		if tc.wantErr {
			assert.Error(t, err, tc.url)
			continue
		}
		assert.NoError(t, err, tc.url)
		assert.Equal(t, tc.owner, owner, tc.url)
		assert.Equal(t, tc.name, name, tc.url)
	}
}

func TestOpenOrCloneRejectsUnusableURL(t *testing.T) {
	g := newGitService(t)

	handle, err := g.OpenOrClone(context.Background(), "https://example.com/acme/api")

	assert.Error(t, err)
	assert.Nil(t, handle)
	assert.True(t, errors.Is(err, apperrors.RepositoryAccess))
}

func TestInitProjectAndApplyChanges(t *testing.T) {
	g := newGitService(t)

	handle, err := g.InitProject("story-1")
	assert.NoError(t, err)

	files := models.FileSet{
		"main.go":        "package main\n",
		"docs/readme.md": "# readme\n",
	}
	err = g.ApplyChanges(handle, files, "Implement user story story-1")
	assert.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(handle.Path, "main.go"))
	assert.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))
	_, err = os.Stat(filepath.Join(handle.Path, "docs", "readme.md"))
	assert.NoError(t, err)

	// The same content again leaves the tree clean; there is nothing to commit.
	err = g.ApplyChanges(handle, files, "again")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "identical to the existing tree")
}

func TestApplyChangesRejectsEmptySet(t *testing.T) {
	g := newGitService(t)
	handle, err := g.InitProject("story-2")
	assert.NoError(t, err)

	err = g.ApplyChanges(handle, models.FileSet{}, "msg")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.GitOperation))
}

func TestApplyChangesRejectsUnsafePaths(t *testing.T) {
	g := newGitService(t)
	handle, err := g.InitProject("story-3")
	assert.NoError(t, err)

	unsafe := []string{
		"../../etc/passwd",
		"/etc/passwd",
		"..",
		"a/../../b.txt",
		".git/hooks/pre-commit",
		".git",
		"dir\\file.txt",
		"",
	}
	for _, p := range unsafe {
		err := g.ApplyChanges(handle, models.FileSet{p: "owned"}, "msg")
		assert.Error(t, err, "path %q must be rejected", p)
		assert.True(t, errors.Is(err, apperrors.GitOperation), "path %q", p)
	}

	// Nothing escaped the working copy root.
	_, err = os.Stat(filepath.Join(handle.Path, "..", "..", "etc", "passwd"))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateBranchFromCommittedBase(t *testing.T) {
	g := newGitService(t)
	handle, err := g.InitProject("story-4")
	assert.NoError(t, err)
	assert.NoError(t, g.ApplyChanges(handle, models.FileSet{"main.go": "package main\n"}, "initial"))

	// go-git initializes new repositories on master.
	err = g.CreateBranch(handle, "master", "feature/story-abc")
	assert.NoError(t, err)

	// A commit on the new branch still works.
	err = g.ApplyChanges(handle, models.FileSet{"extra.go": "package main\n"}, "follow-up")
	assert.NoError(t, err)

	err = g.CreateBranch(handle, "does-not-exist", "feature/other")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.GitOperation))
}

func TestSnapshotFilesSkipsMetadataBinariesAndOversized(t *testing.T) {
	g := newGitService(t)
	handle, err := g.InitProject("story-5")
	assert.NoError(t, err)

	write := func(rel, content string) {
		abs := filepath.Join(handle.Path, filepath.FromSlash(rel))
		assert.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		assert.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
	write("main.go", "package main\n")
	write("sub/util.go", "package sub\n")
	write("node_modules/pkg/index.js", "module.exports = {}\n")
	write("assets/logo.png", "\x89PNG")
	write("big.txt", string(make([]byte, 200))) // over the 100-byte file cap

	snapshot, err := g.SnapshotFiles(handle, nil)

	assert.NoError(t, err)
	assert.Equal(t, "package main\n", snapshot["main.go"])
	assert.Equal(t, "package sub\n", snapshot["sub/util.go"])
	assert.NotContains(t, snapshot, "node_modules/pkg/index.js")
	assert.NotContains(t, snapshot, "assets/logo.png")
	assert.NotContains(t, snapshot, "big.txt")
	for path := range snapshot {
		assert.NotContains(t, path, ".git/")
	}
}

func TestSnapshotFilesWithPathFilters(t *testing.T) {
	g := newGitService(t)
	handle, err := g.InitProject("story-6")
	assert.NoError(t, err)

	write := func(rel, content string) {
		abs := filepath.Join(handle.Path, filepath.FromSlash(rel))
		assert.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		assert.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
	write("main.go", "package main\n")
	write("sub/util.go", "package sub\n")
	write("readme.md", "# readme\n")

	snapshot, err := g.SnapshotFiles(handle, []string{"**/*.go"})

	assert.NoError(t, err)
	assert.Contains(t, snapshot, "main.go")
	assert.Contains(t, snapshot, "sub/util.go")
	assert.NotContains(t, snapshot, "readme.md")
}
