package githost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/go-github/v66/github"
)

// GitHub implements Host against a hosted repository.
type GitHub struct {
	client     *github.Client
	owner      string
	repo       string
	baseBranch string
	pagesGlob  string
}

type GitHubOptions struct {
	Owner      string
	Repo       string
	BaseBranch string
	PagesGlob  string
}

// NewGitHubClient returns an API client, authenticated when token is set.
func NewGitHubClient(token string) *github.Client {
	c := github.NewClient(nil)
	if strings.TrimSpace(token) != "" {
		c = c.WithAuthToken(token)
	}
	return c
}

func NewGitHub(client *github.Client, opts GitHubOptions) (*GitHub, error) {
	if client == nil {
		return nil, errors.New("github client is required")
	}
	if strings.TrimSpace(opts.Owner) == "" || strings.TrimSpace(opts.Repo) == "" {
		return nil, errors.New("github owner and repo are required")
	}
	glob := opts.PagesGlob
	if glob == "" {
		glob = DefaultPagesGlob
	}
	return &GitHub{
		client:     client,
		owner:      opts.Owner,
		repo:       opts.Repo,
		baseBranch: opts.BaseBranch,
		pagesGlob:  glob,
	}, nil
}

// NewPullRequestSource returns a reader for merged pull requests in any
// repository the client can see, independent of the docs repository.
func NewPullRequestSource(client *github.Client) PullRequestSource {
	return &GitHub{client: client}
}

func (g *GitHub) GetDefaultBranch(ctx context.Context) (BranchRef, error) {
	name := g.baseBranch
	if name == "" {
		repo, _, err := g.client.Repositories.Get(ctx, g.owner, g.repo)
		if err != nil {
			return BranchRef{}, mapError(err, "get repository")
		}
		name = repo.GetDefaultBranch()
	}
	ref, _, err := g.client.Git.GetRef(ctx, g.owner, g.repo, "heads/"+name)
	if err != nil {
		return BranchRef{}, mapError(err, "get ref "+name)
	}
	return BranchRef{Name: name, SHA: ref.GetObject().GetSHA()}, nil
}

func (g *GitHub) CreateBranch(ctx context.Context, name, fromSHA string) error {
	_, resp, err := g.client.Git.CreateRef(ctx, g.owner, g.repo, &github.Reference{
		Ref:    github.String("refs/heads/" + name),
		Object: &github.GitObject{SHA: github.String(fromSHA)},
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity &&
			strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return fmt.Errorf("create branch %s: %w", name, ErrBranchExists)
		}
		return mapError(err, "create branch "+name)
	}
	return nil
}

func (g *GitHub) DeleteBranch(ctx context.Context, name string) error {
	if _, err := g.client.Git.DeleteRef(ctx, g.owner, g.repo, "heads/"+name); err != nil {
		return mapError(err, "delete branch "+name)
	}
	return nil
}

func (g *GitHub) GetFile(ctx context.Context, path, branch string) (*File, error) {
	file, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path,
		&github.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		return nil, mapError(err, "get "+path)
	}
	if file == nil {
		return nil, fmt.Errorf("get %s: is a directory: %w", path, ErrNotFound)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &File{Path: path, Content: content, Version: file.GetSHA()}, nil
}

func (g *GitHub) PutFile(ctx context.Context, in PutFileInput) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(in.Message),
		Content: []byte(in.Content),
		Branch:  github.String(in.Branch),
	}
	var err error
	if in.Version == "" {
		_, _, err = g.client.Repositories.CreateFile(ctx, g.owner, g.repo, in.Path, opts)
	} else {
		opts.SHA = github.String(in.Version)
		_, _, err = g.client.Repositories.UpdateFile(ctx, g.owner, g.repo, in.Path, opts)
	}
	if err != nil {
		// The contents API answers 422 when the sha is missing or does not
		// match the file on the branch.
		if isUnprocessable(err) {
			return fmt.Errorf("put %s: %w", in.Path, ErrVersionConflict)
		}
		return mapError(err, "put "+in.Path)
	}
	return nil
}

func (g *GitHub) CreatePullRequest(ctx context.Context, in PullRequestInput) (*PullRequest, error) {
	pr, _, err := g.client.PullRequests.Create(ctx, g.owner, g.repo, &github.NewPullRequest{
		Title: github.String(in.Title),
		Head:  github.String(in.Head),
		Base:  github.String(in.Base),
		Body:  github.String(in.Body),
	})
	if err != nil {
		if isUnprocessable(err) {
			if strings.Contains(strings.ToLower(err.Error()), "already exists") {
				return nil, fmt.Errorf("create pull request: %w", ErrPullRequestOpen)
			}
			return nil, fmt.Errorf("create pull request: %w: %v", ErrRejected, err)
		}
		return nil, mapError(err, "create pull request")
	}
	return &PullRequest{URL: pr.GetHTMLURL(), Number: pr.GetNumber()}, nil
}

// FindPullRequest returns the open pull request whose head is branch.
func (g *GitHub) FindPullRequest(ctx context.Context, head string) (*PullRequest, error) {
	prs, _, err := g.client.PullRequests.List(ctx, g.owner, g.repo, &github.PullRequestListOptions{
		State: "open",
		Head:  g.owner + ":" + head,
	})
	if err != nil {
		return nil, mapError(err, "list pull requests")
	}
	if len(prs) == 0 {
		return nil, fmt.Errorf("pull request for %s: %w", head, ErrNotFound)
	}
	return &PullRequest{URL: prs[0].GetHTMLURL(), Number: prs[0].GetNumber()}, nil
}

// ListPages walks the default branch tree and returns paths under the glob's
// prefix whose file name matches the glob's last segment.
func (g *GitHub) ListPages(ctx context.Context) ([]string, error) {
	head, err := g.GetDefaultBranch(ctx)
	if err != nil {
		return nil, err
	}
	tree, _, err := g.client.Git.GetTree(ctx, g.owner, g.repo, head.SHA, true)
	if err != nil {
		return nil, mapError(err, "get tree")
	}
	prefix, base := splitGlob(g.pagesGlob)
	var pages []string
	for _, e := range tree.Entries {
		p := e.GetPath()
		if e.GetType() != "blob" || !strings.HasPrefix(p, prefix) {
			continue
		}
		if p == base || strings.HasSuffix(p, "/"+base) {
			pages = append(pages, p)
		}
	}
	sort.Strings(pages)
	return pages, nil
}

// FetchPullRequest loads a pull request with its changed files and unified diff.
func (g *GitHub) FetchPullRequest(ctx context.Context, owner, repo string, number int) (*MergedPullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("get pull request %d", number))
	}

	var files []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		page, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, mapError(err, "list pull request files")
		}
		for _, f := range page {
			files = append(files, f.GetFilename())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	diff, _, err := g.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return nil, mapError(err, "get pull request diff")
	}

	out := &MergedPullRequest{
		Repository: owner + "/" + repo,
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		Body:       pr.GetBody(),
		URL:        pr.GetHTMLURL(),
		Author:     pr.GetUser().GetLogin(),
		Merged:     pr.GetMerged(),
		Files:      files,
		Additions:  pr.GetAdditions(),
		Deletions:  pr.GetDeletions(),
		Diff:       diff,
	}
	if pr.MergedAt != nil {
		out.MergedAt = pr.MergedAt.Time
	}
	return out, nil
}

func isUnprocessable(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusUnprocessableEntity
}

func mapError(err error, op string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case http.StatusConflict:
			return fmt.Errorf("%s: %w", op, ErrVersionConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
