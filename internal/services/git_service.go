package services

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/google/go-github/v66/github"
	"github.com/yargevad/filepathx"

	"codefactory/internal/apperrors"
	"codefactory/internal/config"
	"codefactory/internal/models"
)

// RepositoryHandle is a local working copy bound to its remote. The directory
// is reused across stories targeting the same repository; callers must not
// assume a fresh clone.
type RepositoryHandle struct {
	RemoteURL string
	Path      string
	Owner     string
	Name      string

	repo *git.Repository
}

// SourceControl is the adapter contract the orchestrator depends on.
type SourceControl interface {
	OpenOrClone(ctx context.Context, remoteURL string) (*RepositoryHandle, error)
	InitProject(storyID string) (*RepositoryHandle, error)
	SnapshotFiles(handle *RepositoryHandle, pathFilters []string) (models.FileSet, error)
	CreateBranch(handle *RepositoryHandle, baseBranch, newBranch string) error
	ApplyChanges(handle *RepositoryHandle, files models.FileSet, commitMessage string) error
	PushAndOpenPullRequest(ctx context.Context, handle *RepositoryHandle, branch, base, title, body string) (*models.PullRequestResult, error)
}

type GitService struct {
	repoDir       string
	baseBranch    string
	token         string
	maxFileBytes  int64
	maxTotalBytes int64
	github        *github.Client
}

// skippedDirs are never included in snapshots.
var skippedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	".idea":        true,
}

// binaryExtensions are excluded from snapshots regardless of size.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".bz2": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".jar": true, ".class": true, ".o": true, ".a": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
}

func NewGitService(cfg *config.Config) *GitService {
	return &GitService{
		repoDir:       cfg.RepoDir,
		baseBranch:    cfg.BaseBranch,
		token:         cfg.GitHubToken,
		maxFileBytes:  cfg.SnapshotMaxFileBytes,
		maxTotalBytes: cfg.SnapshotMaxTotalBytes,
		github:        github.NewClient(nil).WithAuthToken(cfg.GitHubToken),
	}
}

func (g *GitService) auth() *githttp.BasicAuth {
	// GitHub ignores the username when a token is supplied as the password.
	return &githttp.BasicAuth{Username: "x-access-token", Password: g.token}
}

// ParseGitHubURL extracts owner and repository name from an HTTPS or SSH
// GitHub URL.
func ParseGitHubURL(remoteURL string) (string, string, error) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(remoteURL), ".git")

	var rest string
	switch {
	case strings.Contains(cleaned, "github.com/"):
		rest = cleaned[strings.Index(cleaned, "github.com/")+len("github.com/"):]
	case strings.Contains(cleaned, "github.com:"):
		rest = cleaned[strings.Index(cleaned, "github.com:")+len("github.com:"):]
	default:
		return "", "", fmt.Errorf("cannot parse GitHub URL: %s", remoteURL)
	}

	rest = strings.Trim(rest, "/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return "", "", fmt.Errorf("invalid GitHub URL format: %s", remoteURL)
	}
	return parts[0], parts[1], nil
}

// OpenOrClone opens the deterministic working copy for the remote when it
// already exists, cloning it otherwise, then fast-forwards/resets the base
// branch to the remote's state.
func (g *GitService) OpenOrClone(ctx context.Context, remoteURL string) (*RepositoryHandle, error) {
	owner, name, err := ParseGitHubURL(remoteURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindRepositoryAccess, err, "unusable repository URL %s", remoteURL)
	}

	localPath := filepath.Join(g.repoDir, owner+"--"+name)

	var repo *git.Repository
	if _, statErr := os.Stat(filepath.Join(localPath, ".git")); statErr == nil {
		repo, err = git.PlainOpen(localPath)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindRepositoryAccess, err, "failed to open working copy at %s", localPath)
		}
	} else {
		repo, err = git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:  remoteURL,
			Auth: g.auth(),
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindRepositoryAccess, err, "failed to clone %s", remoteURL)
		}
	}

	handle := &RepositoryHandle{
		RemoteURL: remoteURL,
		Path:      localPath,
		Owner:     owner,
		Name:      name,
		repo:      repo,
	}
	if err := g.resetToBase(ctx, handle, g.baseBranch); err != nil {
		return nil, err
	}
	return handle, nil
}

// resetToBase fetches origin and hard-resets the local base branch to
// origin/<base>, discarding leftovers from earlier stories.
func (g *GitService) resetToBase(ctx context.Context, handle *RepositoryHandle, baseBranch string) error {
	err := handle.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		Auth:       g.auth(),
		Force:      true,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return apperrors.Wrap(apperrors.KindRepositoryAccess, err, "failed to fetch origin for %s", handle.RemoteURL)
	}

	remoteRef, err := handle.repo.Reference(plumbing.NewRemoteReferenceName("origin", baseBranch), true)
	if err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "base branch %s cannot be resolved on origin", baseBranch)
	}

	worktree, err := handle.repo.Worktree()
	if err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to get worktree for %s", handle.Path)
	}

	localRef := plumbing.NewBranchReferenceName(baseBranch)
	if _, err := handle.repo.Reference(localRef, true); err != nil {
		err = worktree.Checkout(&git.CheckoutOptions{
			Branch: localRef,
			Hash:   remoteRef.Hash(),
			Create: true,
			Force:  true,
		})
		if err != nil {
			return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to create base branch %s", baseBranch)
		}
		return nil
	}

	if err := worktree.Checkout(&git.CheckoutOptions{Branch: localRef, Force: true}); err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to checkout base branch %s", baseBranch)
	}
	if err := worktree.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to reset %s to origin/%s", baseBranch, baseBranch)
	}
	return nil
}

// InitProject creates a fresh local repository for a story with no target
// remote.
func (g *GitService) InitProject(storyID string) (*RepositoryHandle, error) {
	localPath := filepath.Join(g.repoDir, "new--"+storyID)
	repo, err := git.PlainInit(localPath, false)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindGitOperation, err, "failed to init project at %s", localPath)
	}
	return &RepositoryHandle{Path: localPath, repo: repo}, nil
}

// SnapshotFiles reads the working tree into a path -> content mapping for
// prompt context. Version-control metadata, build artifacts, binary
// extensions and oversized files are excluded, and the total snapshot is
// capped so the prompt stays bounded.
func (g *GitService) SnapshotFiles(handle *RepositoryHandle, pathFilters []string) (models.FileSet, error) {
	candidates, err := g.snapshotCandidates(handle, pathFilters)
	if err != nil {
		return nil, err
	}
	sort.Strings(candidates)

	snapshot := models.FileSet{}
	var total int64
	for _, rel := range candidates {
		abs := filepath.Join(handle.Path, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > g.maxFileBytes {
			continue
		}
		if binaryExtensions[strings.ToLower(filepath.Ext(rel))] {
			continue
		}
		if total+info.Size() > g.maxTotalBytes {
			continue
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindGitOperation, err, "failed to read %s for snapshot", rel)
		}
		snapshot[rel] = string(content)
		total += info.Size()
	}
	return snapshot, nil
}

func (g *GitService) snapshotCandidates(handle *RepositoryHandle, pathFilters []string) ([]string, error) {
	if len(pathFilters) > 0 {
		var rels []string
		for _, filter := range pathFilters {
			matches, err := filepathx.Glob(filepath.Join(handle.Path, filter))
			if err != nil {
				return nil, apperrors.Wrap(apperrors.KindGitOperation, err, "bad snapshot filter %q", filter)
			}
			for _, m := range matches {
				rel, err := filepath.Rel(handle.Path, m)
				if err != nil || strings.HasPrefix(rel, "..") {
					continue
				}
				rel = filepath.ToSlash(rel)
				if snapshotPathSkipped(rel) {
					continue
				}
				rels = append(rels, rel)
			}
		}
		return rels, nil
	}

	var rels []string
	err := filepath.WalkDir(handle.Path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(handle.Path, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindGitOperation, err, "failed to walk working copy %s", handle.Path)
	}
	return rels, nil
}

func snapshotPathSkipped(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if skippedDirs[segment] {
			return true
		}
	}
	return false
}

// CreateBranch creates and checks out newBranch from the tip of baseBranch.
func (g *GitService) CreateBranch(handle *RepositoryHandle, baseBranch, newBranch string) error {
	baseRef, err := handle.repo.Reference(plumbing.NewBranchReferenceName(baseBranch), true)
	if err != nil {
		baseRef, err = handle.repo.Reference(plumbing.NewRemoteReferenceName("origin", baseBranch), true)
		if err != nil {
			return apperrors.Wrap(apperrors.KindGitOperation, err, "base branch %s cannot be resolved", baseBranch)
		}
	}

	worktree, err := handle.repo.Worktree()
	if err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to get worktree for %s", handle.Path)
	}

	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(newBranch),
		Hash:   baseRef.Hash(),
		Create: true,
		Force:  true,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to create branch %s from %s", newBranch, baseBranch)
	}
	return nil
}

// ApplyChanges writes each generated file under the working copy root,
// stages everything and commits. Paths are untrusted model output: anything
// that escapes the root, is absolute, or touches .git is rejected.
func (g *GitService) ApplyChanges(handle *RepositoryHandle, files models.FileSet, commitMessage string) error {
	if len(files) == 0 {
		return apperrors.New(apperrors.KindGitOperation, "no files to apply")
	}

	for _, rel := range files.Paths() {
		abs, err := securePath(handle.Path, rel)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to create directory for %s", rel)
		}
		if err := os.WriteFile(abs, []byte(files[rel]), 0644); err != nil {
			return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to write %s", rel)
		}
	}

	worktree, err := handle.repo.Worktree()
	if err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to get worktree for %s", handle.Path)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to stage generated changes")
	}

	status, err := worktree.Status()
	if err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to read worktree status")
	}
	if status.IsClean() {
		return apperrors.New(apperrors.KindGitOperation, "generated changes are identical to the existing tree; nothing to commit")
	}

	_, err = worktree.Commit(commitMessage, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "CodeFactory",
			Email: "codefactory@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return apperrors.Wrap(apperrors.KindGitOperation, err, "failed to commit generated changes")
	}
	return nil
}

// securePath resolves rel under root and rejects traversal. Mirrors the
// model-output write policy: relative slash paths only, no "..", no .git.
func securePath(root, rel string) (string, error) {
	if rel == "" {
		return "", apperrors.New(apperrors.KindGitOperation, "generated file path is empty")
	}
	if strings.HasPrefix(rel, "/") || strings.Contains(rel, "\\") || filepath.IsAbs(rel) {
		return "", apperrors.New(apperrors.KindGitOperation, "generated file path %q is not a relative slash path", rel)
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", apperrors.New(apperrors.KindGitOperation, "generated file path %q escapes the working copy root", rel)
	}
	if clean == ".git" || strings.HasPrefix(clean, ".git/") {
		return "", apperrors.New(apperrors.KindGitOperation, "generated file path %q touches repository metadata", rel)
	}

	abs := filepath.Join(root, filepath.FromSlash(clean))
	relToRoot, err := filepath.Rel(root, abs)
	if err != nil || relToRoot == ".." || strings.HasPrefix(relToRoot, ".."+string(os.PathSeparator)) {
		return "", apperrors.New(apperrors.KindGitOperation, "generated file path %q escapes the working copy root", rel)
	}
	return abs, nil
}

// PushAndOpenPullRequest pushes the branch and asks GitHub for a pull
// request. A PR failure after a successful push keeps the branch in place
// and names it in the error so a human can open the PR manually.
func (g *GitService) PushAndOpenPullRequest(ctx context.Context, handle *RepositoryHandle, branch, base, title, body string) (*models.PullRequestResult, error) {
	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err := handle.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       g.auth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return nil, apperrors.Wrap(apperrors.KindRemoteRejected, err, "push of branch %s to %s was rejected", branch, handle.RemoteURL)
	}

	pr, _, err := g.github.PullRequests.Create(ctx, handle.Owner, handle.Name, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(branch),
		Base:  github.String(base),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPullRequest, err,
			"branch %s was pushed but pull request creation failed; open it manually against %s", branch, base)
	}

	return &models.PullRequestResult{
		URL:        pr.GetHTMLURL(),
		BranchName: branch,
		BaseBranch: base,
	}, nil
}
