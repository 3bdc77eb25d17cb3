package mocks

import (
	"context"
	"fmt"
	"sync"

	"releaseradar/internal/githost"
)

type HostMock struct {
	GetDefaultBranchFunc  func(ctx context.Context) (githost.BranchRef, error)
	CreateBranchFunc      func(ctx context.Context, name, fromSHA string) error
	DeleteBranchFunc      func(ctx context.Context, name string) error
	GetFileFunc           func(ctx context.Context, path, branch string) (*githost.File, error)
	PutFileFunc           func(ctx context.Context, in githost.PutFileInput) error
	CreatePullRequestFunc func(ctx context.Context, in githost.PullRequestInput) (*githost.PullRequest, error)
}

func (m *HostMock) GetDefaultBranch(ctx context.Context) (githost.BranchRef, error) {
	if m.GetDefaultBranchFunc != nil {
		return m.GetDefaultBranchFunc(ctx)
	}
	return githost.BranchRef{Name: "main", SHA: "base-sha"}, nil
}

func (m *HostMock) CreateBranch(ctx context.Context, name, fromSHA string) error {
	if m.CreateBranchFunc != nil {
		return m.CreateBranchFunc(ctx, name, fromSHA)
	}
	return nil
}

func (m *HostMock) DeleteBranch(ctx context.Context, name string) error {
	if m.DeleteBranchFunc != nil {
		return m.DeleteBranchFunc(ctx, name)
	}
	return nil
}

func (m *HostMock) GetFile(ctx context.Context, path, branch string) (*githost.File, error) {
	if m.GetFileFunc != nil {
		return m.GetFileFunc(ctx, path, branch)
	}
	return nil, githost.ErrNotFound
}

func (m *HostMock) PutFile(ctx context.Context, in githost.PutFileInput) error {
	if m.PutFileFunc != nil {
		return m.PutFileFunc(ctx, in)
	}
	return nil
}

func (m *HostMock) CreatePullRequest(ctx context.Context, in githost.PullRequestInput) (*githost.PullRequest, error) {
	if m.CreatePullRequestFunc != nil {
		return m.CreatePullRequestFunc(ctx, in)
	}
	return &githost.PullRequest{URL: "https://example.test/pull/1", Number: 1}, nil
}

// MemoryHost is an in-memory documentation repository. Versions are
// per-file write counters. Branches and pull requests are recorded so tests
// can inspect what a run left behind.
type MemoryHost struct {
	mu       sync.Mutex
	Base     string
	files    map[string]map[string]memFile // branch -> path -> file
	Branches []string
	Deleted  []string
	Puts     []githost.PutFileInput
	PRs      []githost.PullRequestInput

	// Hooks run before the default behavior; a non-nil error is returned as is.
	BeforeGetFile func(path string) error
	BeforePutFile func(in githost.PutFileInput) error
	BeforeCreatePR func(in githost.PullRequestInput) error
	// After hooks run once the write has been applied, so a returned error
	// looks like a response lost in transit.
	AfterPutFile  func(in githost.PutFileInput) error
	AfterCreatePR func(in githost.PullRequestInput) error
}

type memFile struct {
	content string
	version int
}

// NewMemoryHost seeds the base branch "main" with files.
func NewMemoryHost(files map[string]string) *MemoryHost {
	base := make(map[string]memFile, len(files))
	for p, c := range files {
		base[p] = memFile{content: c, version: 1}
	}
	return &MemoryHost{Base: "main", files: map[string]map[string]memFile{"main": base}}
}

func (h *MemoryHost) GetDefaultBranch(ctx context.Context) (githost.BranchRef, error) {
	if err := ctx.Err(); err != nil {
		return githost.BranchRef{}, err
	}
	return githost.BranchRef{Name: h.Base, SHA: "sha-" + h.Base}, nil
}

func (h *MemoryHost) CreateBranch(ctx context.Context, name, fromSHA string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.files[name]; ok {
		return githost.ErrBranchExists
	}
	copied := make(map[string]memFile, len(h.files[h.Base]))
	for p, f := range h.files[h.Base] {
		copied[p] = f
	}
	h.files[name] = copied
	h.Branches = append(h.Branches, name)
	return nil
}

func (h *MemoryHost) DeleteBranch(ctx context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.files[name]; !ok {
		return githost.ErrNotFound
	}
	delete(h.files, name)
	h.Deleted = append(h.Deleted, name)
	return nil
}

func (h *MemoryHost) GetFile(ctx context.Context, path, branch string) (*githost.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h.BeforeGetFile != nil {
		if err := h.BeforeGetFile(path); err != nil {
			return nil, err
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[branch][path]
	if !ok {
		return nil, githost.ErrNotFound
	}
	return &githost.File{Path: path, Content: f.content, Version: fmt.Sprint(f.version)}, nil
}

func (h *MemoryHost) PutFile(ctx context.Context, in githost.PutFileInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.BeforePutFile != nil {
		if err := h.BeforePutFile(in); err != nil {
			return err
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	branch, ok := h.files[in.Branch]
	if !ok {
		return githost.ErrNotFound
	}
	cur, exists := branch[in.Path]
	switch {
	case exists && fmt.Sprint(cur.version) != in.Version:
		return githost.ErrVersionConflict
	case !exists && in.Version != "":
		return githost.ErrVersionConflict
	}
	branch[in.Path] = memFile{content: in.Content, version: cur.version + 1}
	h.Puts = append(h.Puts, in)
	if h.AfterPutFile != nil {
		return h.AfterPutFile(in)
	}
	return nil
}

func (h *MemoryHost) CreatePullRequest(ctx context.Context, in githost.PullRequestInput) (*githost.PullRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h.BeforeCreatePR != nil {
		if err := h.BeforeCreatePR(in); err != nil {
			return nil, err
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, pr := range h.PRs {
		if pr.Head == in.Head {
			return nil, githost.ErrPullRequestOpen
		}
	}
	h.PRs = append(h.PRs, in)
	n := len(h.PRs)
	if h.AfterCreatePR != nil {
		if err := h.AfterCreatePR(in); err != nil {
			return nil, err
		}
	}
	return &githost.PullRequest{URL: prURL(n), Number: n}, nil
}

func (h *MemoryHost) FindPullRequest(ctx context.Context, head string) (*githost.PullRequest, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, pr := range h.PRs {
		if pr.Head == head {
			return &githost.PullRequest{URL: prURL(i + 1), Number: i + 1}, nil
		}
	}
	return nil, githost.ErrNotFound
}

func prURL(n int) string {
	return fmt.Sprintf("https://example.test/docs/pull/%d", n)
}

// Content returns a file's content on branch, or "" and false.
func (h *MemoryHost) Content(branch, path string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[branch][path]
	return f.content, ok
}

// HasBranch reports whether branch still exists.
func (h *MemoryHost) HasBranch(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.files[name]
	return ok
}
