// Package gitinfo reads optional source metadata from the git repository that
// contains the blog sources: the HEAD revision and per-file last commit times.
package gitinfo

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository is returned by Open when dir is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

var errStop = errors.New("stop iteration")

// Repo wraps a go-git repository. Lookups are serialized and cached.
type Repo struct {
	repo *git.Repository
	root string

	mu       sync.Mutex
	modTimes map[string]time.Time
}

// Open finds the repository containing dir, walking up parent directories.
func Open(dir string) (*Repo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Repo{
		repo:     repo,
		root:     wt.Filesystem.Root(),
		modTimes: make(map[string]time.Time),
	}, nil
}

// Root returns the work tree root.
func (r *Repo) Root() string { return r.root }

// Revision returns the HEAD commit hash, or "" for a repository without commits.
func (r *Repo) Revision() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	head, err := r.repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}

// LastModified returns the committer time of the newest commit touching path.
// The zero time is returned for untracked files.
func (r *Repo) LastModified(path string) (time.Time, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return time.Time{}, err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return time.Time{}, err
	}
	rel = filepath.ToSlash(rel)

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.modTimes[rel]; ok {
		return t, nil
	}

	head, err := r.repo.Head()
	if err != nil {
		// no commits yet
		return time.Time{}, nil
	}
	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash(), FileName: &rel})
	if err != nil {
		return time.Time{}, fmt.Errorf("log %s: %w", rel, err)
	}
	defer iter.Close()

	var last time.Time
	err = iter.ForEach(func(c *object.Commit) error {
		last = c.Committer.When.UTC()
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return time.Time{}, fmt.Errorf("walk history of %s: %w", rel, err)
	}
	r.modTimes[rel] = last
	return last, nil
}
