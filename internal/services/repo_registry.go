package services

import (
	"strings"
	"sync"
)

// RepoRegistry serializes stories that target the same repository. Two
// concurrent stories on one remote must not interleave checkout/apply on the
// shared working copy, so the orchestrator holds a lease for the whole
// repo_ready -> pr_opened span.
type RepoRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRepoRegistry() *RepoRegistry {
	return &RepoRegistry{locks: make(map[string]*sync.Mutex)}
}

// Lease guards one repository. Release is idempotent.
type Lease struct {
	release sync.Once
	mu      *sync.Mutex
}

func (l *Lease) Release() {
	l.release.Do(l.mu.Unlock)
}

// Acquire blocks until the repository identified by remoteURL is free and
// returns the held lease. Identity is normalized so URL spelling variants of
// the same repository share one lock.
func (r *RepoRegistry) Acquire(remoteURL string) *Lease {
	key := normalizeRepoKey(remoteURL)

	r.mu.Lock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return &Lease{mu: lock}
}

func normalizeRepoKey(remoteURL string) string {
	if owner, name, err := ParseGitHubURL(remoteURL); err == nil {
		return strings.ToLower(owner + "/" + name)
	}
	return strings.ToLower(strings.TrimSpace(remoteURL))
}
