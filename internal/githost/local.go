package githost

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"releaseradar/internal/utils"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/yargevad/filepathx"
)

const reviewRefPrefix = "refs/reviews/"

// Local implements Host on a repository checked out on disk. Review requests
// are recorded as refs/reviews/<n> pointing at the branch head.
type Local struct {
	mu         sync.Mutex
	root       string
	repo       *git.Repository
	baseBranch string
	pagesGlob  string
	author     object.Signature
	now        func() time.Time
}

type LocalOptions struct {
	BaseBranch  string
	PagesGlob   string
	AuthorName  string
	AuthorEmail string
}

// OpenLocal opens an existing non-bare repository at root.
func OpenLocal(root string, opts LocalOptions) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("repository path cannot be empty")
	}
	if err := utils.RequireGitRepo(root); err != nil {
		return nil, err
	}
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", root, err)
	}
	// Try to get HEAD to ensure repository is in a valid state
	if _, err := repo.Head(); err != nil {
		return nil, fmt.Errorf("repository is in an invalid state: %w", err)
	}
	l := &Local{
		root:       root,
		repo:       repo,
		baseBranch: opts.BaseBranch,
		pagesGlob:  opts.PagesGlob,
		author: object.Signature{
			Name:  opts.AuthorName,
			Email: opts.AuthorEmail,
		},
		now: time.Now,
	}
	if l.pagesGlob == "" {
		l.pagesGlob = DefaultPagesGlob
	}
	if l.author.Name == "" {
		l.author.Name = "Release Radar"
	}
	if l.author.Email == "" {
		l.author.Email = "release-radar@localhost"
	}
	return l, nil
}

func (l *Local) GetDefaultBranch(ctx context.Context) (BranchRef, error) {
	if err := ctx.Err(); err != nil {
		return BranchRef{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.defaultBranch()
}

func (l *Local) defaultBranch() (BranchRef, error) {
	if l.baseBranch != "" {
		ref, err := l.repo.Reference(plumbing.NewBranchReferenceName(l.baseBranch), true)
		if err != nil {
			return BranchRef{}, fmt.Errorf("get ref %s: %w", l.baseBranch, ErrNotFound)
		}
		return BranchRef{Name: l.baseBranch, SHA: ref.Hash().String()}, nil
	}
	head, err := l.repo.Head()
	if err != nil {
		return BranchRef{}, fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		return BranchRef{}, fmt.Errorf("HEAD is detached; set a base branch")
	}
	return BranchRef{Name: head.Name().Short(), SHA: head.Hash().String()}, nil
}

func (l *Local) CreateBranch(ctx context.Context, name, fromSHA string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := l.repo.Reference(refName, false); err == nil {
		return fmt.Errorf("create branch %s: %w", name, ErrBranchExists)
	}
	if _, err := l.repo.CommitObject(plumbing.NewHash(fromSHA)); err != nil {
		return fmt.Errorf("create branch %s: commit %s: %w", name, fromSHA, ErrNotFound)
	}
	return l.repo.Storer.SetReference(plumbing.NewHashReference(refName, plumbing.NewHash(fromSHA)))
}

func (l *Local) DeleteBranch(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := l.repo.Reference(refName, false); err != nil {
		return fmt.Errorf("delete branch %s: %w", name, ErrNotFound)
	}
	return l.repo.Storer.RemoveReference(refName)
}

func (l *Local) GetFile(ctx context.Context, path, branch string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.fileAt(path, branch)
	if err != nil {
		return nil, err
	}
	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &File{Path: path, Content: content, Version: f.Hash.String()}, nil
}

func (l *Local) fileAt(path, branch string) (*object.File, error) {
	ref, err := l.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return nil, fmt.Errorf("get ref %s: %w", branch, ErrNotFound)
	}
	commit, err := l.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	f, err := commit.File(filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("get %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return f, nil
}

// PutFile commits one file to in.Branch. The worktree is returned to the
// base branch afterwards.
func (l *Local) PutFile(ctx context.Context, in PutFileInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, err := l.within(in.Path)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	in.Path = rel

	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.fileAt(in.Path, in.Branch)
	switch {
	case err == nil:
		if in.Version == "" || current.Hash.String() != in.Version {
			return fmt.Errorf("put %s: %w", in.Path, ErrVersionConflict)
		}
	case errors.Is(err, ErrNotFound):
		if in.Version != "" {
			return fmt.Errorf("put %s: %w", in.Path, ErrVersionConflict)
		}
	default:
		return err
	}

	home, err := l.defaultBranch()
	if err != nil {
		return err
	}
	w, err := l.repo.Worktree()
	if err != nil {
		return err
	}
	if err := w.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(in.Branch)}); err != nil {
		return fmt.Errorf("checkout %s: %w", in.Branch, err)
	}
	defer func() {
		if err := w.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(home.Name)}); err != nil {
			log.Printf("[githost] restore checkout %s: %v", home.Name, err)
		}
	}()

	abs := filepath.Join(l.root, filepath.FromSlash(in.Path))
	if err := l.checkResolved(abs); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(abs, []byte(in.Content), 0o644); err != nil {
		return err
	}
	if _, err := w.Add(filepath.ToSlash(in.Path)); err != nil {
		return fmt.Errorf("stage %s: %w", in.Path, err)
	}
	sig := l.author
	sig.When = l.now()
	if _, err := w.Commit(in.Message, &git.CommitOptions{Author: &sig}); err != nil {
		return fmt.Errorf("commit %s: %w", in.Path, err)
	}
	return nil
}

// within cleans a repository-relative path and rejects anything that would
// resolve outside the checkout.
func (l *Local) within(p string) (string, error) {
	rel, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	if err := l.checkResolved(filepath.Join(l.root, filepath.FromSlash(rel))); err != nil {
		return "", err
	}
	return rel, nil
}

// checkResolved follows symlinks on the deepest existing parent of abs and
// requires the result to stay under the repository root.
func (l *Local) checkResolved(abs string) error {
	root, err := filepath.EvalSymlinks(l.root)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	for {
		if _, err := os.Lstat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s: %w", abs, ErrInvalidPath)
	}
	return nil
}

// CreatePullRequest records the request as the next refs/reviews/<n>.
func (l *Local) CreatePullRequest(ctx context.Context, in PullRequestInput) (*PullRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	head, err := l.repo.Reference(plumbing.NewBranchReferenceName(in.Head), true)
	if err != nil {
		return nil, fmt.Errorf("create pull request: head %s: %w", in.Head, ErrNotFound)
	}
	if _, err := l.repo.Reference(plumbing.NewBranchReferenceName(in.Base), true); err != nil {
		return nil, fmt.Errorf("create pull request: base %s: %w", in.Base, ErrNotFound)
	}

	number, err := l.nextReviewNumber()
	if err != nil {
		return nil, err
	}
	refName := plumbing.ReferenceName(fmt.Sprintf("%s%d", reviewRefPrefix, number))
	if err := l.repo.Storer.SetReference(plumbing.NewHashReference(refName, head.Hash())); err != nil {
		return nil, fmt.Errorf("record review: %w", err)
	}
	return &PullRequest{
		URL:    fmt.Sprintf("file://%s#%s", filepath.ToSlash(l.root), refName),
		Number: number,
	}, nil
}

func (l *Local) nextReviewNumber() (int, error) {
	iter, err := l.repo.References()
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	highest := 0
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if !strings.HasPrefix(name, reviewRefPrefix) {
			return nil
		}
		var n int
		if _, scanErr := fmt.Sscanf(strings.TrimPrefix(name, reviewRefPrefix), "%d", &n); scanErr == nil && n > highest {
			highest = n
		}
		return nil
	})
	return highest + 1, err
}

// ListPages globs the checked-out worktree, which always sits on the base branch.
func (l *Local) ListPages(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	matches, err := filepathx.Glob(filepath.Join(l.root, filepath.FromSlash(l.pagesGlob)))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", l.pagesGlob, err)
	}
	pages := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(l.root, m)
		if err != nil {
			continue
		}
		pages = append(pages, filepath.ToSlash(rel))
	}
	sort.Strings(pages)
	return pages, nil
}
