package githost

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("not found on repository host")
	ErrVersionConflict = errors.New("file version is stale")
	ErrBranchExists    = errors.New("branch already exists")
	ErrRejected        = errors.New("request rejected by repository host")
	ErrPullRequestOpen = errors.New("pull request already exists for branch")
	ErrInvalidPath     = errors.New("path is outside the repository")
)

// CleanPath returns p as a clean slash-separated path relative to the
// repository root. Absolute paths and any ".." segment are rejected.
func CleanPath(p string) (string, error) {
	raw := strings.TrimSpace(p)
	slashed := strings.ReplaceAll(raw, "\\", "/")
	if slashed == "" || strings.HasPrefix(slashed, "/") || (len(slashed) > 1 && slashed[1] == ':') {
		return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
	}
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
		}
	}
	clean := path.Clean(slashed)
	if clean == "." {
		return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
	}
	return clean, nil
}

// BranchRef names a branch and the commit it points at.
type BranchRef struct {
	Name string
	SHA  string
}

// File is a documentation file read at a branch. Version is the opaque
// token PutFile needs to replace it.
type File struct {
	Path    string
	Content string
	Version string
}

// PutFileInput writes one file to a branch. An empty Version creates the file.
type PutFileInput struct {
	Path    string
	Content string
	Message string
	Branch  string
	Version string
}

type PullRequestInput struct {
	Title string
	Body  string
	Head  string
	Base  string
}

type PullRequest struct {
	URL    string
	Number int
}

// Host is the documentation repository the pipeline mutates.
type Host interface {
	GetDefaultBranch(ctx context.Context) (BranchRef, error)
	CreateBranch(ctx context.Context, name, fromSHA string) error
	DeleteBranch(ctx context.Context, name string) error
	GetFile(ctx context.Context, path, branch string) (*File, error)
	PutFile(ctx context.Context, in PutFileInput) error
	CreatePullRequest(ctx context.Context, in PullRequestInput) (*PullRequest, error)
}

// PullRequestFinder looks up the open pull request for a head branch.
type PullRequestFinder interface {
	FindPullRequest(ctx context.Context, head string) (*PullRequest, error)
}

// PageLister enumerates documentation pages on the default branch.
type PageLister interface {
	ListPages(ctx context.Context) ([]string, error)
}

// MergedPullRequest is a code-review change fetched for ingestion.
type MergedPullRequest struct {
	Repository string
	Number     int
	Title      string
	Body       string
	URL        string
	Author     string
	Merged     bool
	MergedAt   time.Time
	Files      []string
	Additions  int
	Deletions  int
	Diff       string
}

// PullRequestSource fetches code-review changes from the source repository.
type PullRequestSource interface {
	FetchPullRequest(ctx context.Context, owner, repo string, number int) (*MergedPullRequest, error)
}

// DefaultPagesGlob matches the documentation site's page files.
const DefaultPagesGlob = "app/docs/**/page.md"

// splitGlob returns the literal directory prefix before the first "**" and the
// required file name after the last "/".
func splitGlob(pattern string) (prefix, base string) {
	pattern = strings.TrimPrefix(pattern, "/")
	if i := strings.Index(pattern, "**"); i >= 0 {
		prefix = pattern[:i]
	}
	base = pattern
	if i := strings.LastIndex(pattern, "/"); i >= 0 {
		base = pattern[i+1:]
	}
	return prefix, base
}
