package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, root, name, content string, when time.Time) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestRepo_RevisionAndLastModified(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	first := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	second := time.Date(2022, 6, 2, 8, 30, 0, 0, time.UTC)
	commitFile(t, repo, root, "articles/a.md", "a1", first)
	commitFile(t, repo, root, "articles/b.md", "b1", first.Add(time.Hour))
	head := commitFile(t, repo, root, "articles/a.md", "a2", second)

	r, err := Open(filepath.Join(root, "articles"))
	require.NoError(t, err)

	assert.Equal(t, head, r.Revision())

	got, err := r.LastModified(filepath.Join(root, "articles", "a.md"))
	require.NoError(t, err)
	assert.True(t, second.Equal(got), "got %s", got)

	got, err = r.LastModified(filepath.Join(root, "articles", "b.md"))
	require.NoError(t, err)
	assert.True(t, first.Add(time.Hour).Equal(got), "got %s", got)

	untracked := filepath.Join(root, "articles", "draft.md")
	require.NoError(t, os.WriteFile(untracked, []byte("x"), 0o600))
	got, err = r.LastModified(untracked)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestRepo_EmptyRepository(t *testing.T) {
	root := t.TempDir()
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	r, err := Open(root)
	require.NoError(t, err)
	assert.Equal(t, "", r.Revision())

	got, err := r.LastModified(filepath.Join(root, "x.md"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
