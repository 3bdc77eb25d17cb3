package githost

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalRepo(t *testing.T, files map[string]string) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	for p, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
		_, err := w.Add(p)
		require.NoError(t, err)
	}
	_, err = w.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	l, err := OpenLocal(dir, LocalOptions{})
	require.NoError(t, err)
	return l, dir
}

func TestLocal_BranchLifecycle(t *testing.T) {
	ctx := context.Background()
	l, _ := newLocalRepo(t, map[string]string{"app/docs/api/page.md": "# API\n"})

	base, err := l.GetDefaultBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "master", base.Name)
	assert.Len(t, base.SHA, 40)

	require.NoError(t, l.CreateBranch(ctx, "docs-update-1", base.SHA))
	assert.ErrorIs(t, l.CreateBranch(ctx, "docs-update-1", base.SHA), ErrBranchExists)

	require.NoError(t, l.DeleteBranch(ctx, "docs-update-1"))
	assert.ErrorIs(t, l.DeleteBranch(ctx, "docs-update-1"), ErrNotFound)
}

func TestLocal_PutFileCommitsToBranchOnly(t *testing.T) {
	ctx := context.Background()
	l, dir := newLocalRepo(t, map[string]string{"app/docs/api/page.md": "# API\n"})
	base, err := l.GetDefaultBranch(ctx)
	require.NoError(t, err)
	require.NoError(t, l.CreateBranch(ctx, "feature", base.SHA))

	f, err := l.GetFile(ctx, "app/docs/api/page.md", "feature")
	require.NoError(t, err)
	assert.Equal(t, "# API\n", f.Content)

	require.NoError(t, l.PutFile(ctx, PutFileInput{
		Path:    "app/docs/api/page.md",
		Content: "# API\nv2\n",
		Message: "docs: update",
		Branch:  "feature",
		Version: f.Version,
	}))

	updated, err := l.GetFile(ctx, "app/docs/api/page.md", "feature")
	require.NoError(t, err)
	assert.Equal(t, "# API\nv2\n", updated.Content)
	assert.NotEqual(t, f.Version, updated.Version)

	onBase, err := l.GetFile(ctx, "app/docs/api/page.md", "master")
	require.NoError(t, err)
	assert.Equal(t, "# API\n", onBase.Content)

	disk, err := os.ReadFile(filepath.Join(dir, "app", "docs", "api", "page.md"))
	require.NoError(t, err)
	assert.Equal(t, "# API\n", string(disk), "worktree returns to base branch")
}

func TestLocal_PutFileStaleVersion(t *testing.T) {
	ctx := context.Background()
	l, _ := newLocalRepo(t, map[string]string{"a/page.md": "one"})
	base, _ := l.GetDefaultBranch(ctx)
	require.NoError(t, l.CreateBranch(ctx, "b", base.SHA))

	f, err := l.GetFile(ctx, "a/page.md", "b")
	require.NoError(t, err)
	require.NoError(t, l.PutFile(ctx, PutFileInput{Path: "a/page.md", Content: "two", Message: "m", Branch: "b", Version: f.Version}))

	err = l.PutFile(ctx, PutFileInput{Path: "a/page.md", Content: "three", Message: "m", Branch: "b", Version: f.Version})
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestLocal_MissingFileAndCreate(t *testing.T) {
	ctx := context.Background()
	l, _ := newLocalRepo(t, map[string]string{"README.md": "hi"})
	base, _ := l.GetDefaultBranch(ctx)
	require.NoError(t, l.CreateBranch(ctx, "b", base.SHA))

	_, err := l.GetFile(ctx, "app/docs/new/page.md", "b")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, l.PutFile(ctx, PutFileInput{Path: "app/docs/new/page.md", Content: "# New", Message: "m", Branch: "b"}))
	f, err := l.GetFile(ctx, "app/docs/new/page.md", "b")
	require.NoError(t, err)
	assert.Equal(t, "# New", f.Content)
}

func TestLocal_CreatePullRequestNumbersSequentially(t *testing.T) {
	ctx := context.Background()
	l, _ := newLocalRepo(t, map[string]string{"README.md": "hi"})
	base, _ := l.GetDefaultBranch(ctx)
	require.NoError(t, l.CreateBranch(ctx, "b1", base.SHA))
	require.NoError(t, l.CreateBranch(ctx, "b2", base.SHA))

	pr1, err := l.CreatePullRequest(ctx, PullRequestInput{Title: "t", Head: "b1", Base: base.Name})
	require.NoError(t, err)
	pr2, err := l.CreatePullRequest(ctx, PullRequestInput{Title: "t", Head: "b2", Base: base.Name})
	require.NoError(t, err)

	assert.Equal(t, 1, pr1.Number)
	assert.Equal(t, 2, pr2.Number)
	assert.Contains(t, pr2.URL, "refs/reviews/2")

	_, err = l.CreatePullRequest(ctx, PullRequestInput{Head: "missing", Base: base.Name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_ListPages(t *testing.T) {
	l, _ := newLocalRepo(t, map[string]string{
		"app/docs/api/page.md":         "a",
		"app/docs/guides/auth/page.md": "b",
		"app/docs/api/notes.md":        "c",
		"README.md":                    "d",
	})
	pages, err := l.ListPages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"app/docs/api/page.md", "app/docs/guides/auth/page.md"}, pages)
}

func TestLocal_CancelledContext(t *testing.T) {
	l, _ := newLocalRepo(t, map[string]string{"README.md": "hi"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.GetFile(ctx, "README.md", "master")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitGlob(t *testing.T) {
	prefix, base := splitGlob("app/docs/**/page.md")
	assert.Equal(t, "app/docs/", prefix)
	assert.Equal(t, "page.md", base)
}

func TestLocal_PutFileRejectsPathsOutsideRoot(t *testing.T) {
	ctx := context.Background()
	l, dir := newLocalRepo(t, map[string]string{"README.md": "hi"})
	base, _ := l.GetDefaultBranch(ctx)
	require.NoError(t, l.CreateBranch(ctx, "b1", base.SHA))

	for _, p := range []string{"../escaped.md", "app/../../escaped.md", "/tmp/escaped.md", ""} {
		err := l.PutFile(ctx, PutFileInput{Path: p, Content: "pwned", Message: "m", Branch: "b1"})
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
	_, err := os.Stat(filepath.Join(filepath.Dir(dir), "escaped.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_CheckResolvedFollowsSymlinks(t *testing.T) {
	l, dir := newLocalRepo(t, map[string]string{"README.md": "hi"})
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "linked")))

	err := l.checkResolved(filepath.Join(dir, "linked", "docs", "page.md"))
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.NoError(t, l.checkResolved(filepath.Join(dir, "app", "docs", "page.md")))
}

func TestCleanPath(t *testing.T) {
	clean, err := CleanPath(" app//docs/./auth/page.md ")
	require.NoError(t, err)
	assert.Equal(t, "app/docs/auth/page.md", clean)

	for _, p := range []string{"..", "../x.md", "a/../../x.md", "a/..", "/etc/passwd", "C:\\x.md", "..\\x.md", " ", "."} {
		_, err := CleanPath(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}
