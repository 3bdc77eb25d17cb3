package integration_tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"releaseradar/internal/config"
	"releaseradar/internal/database"
	"releaseradar/internal/githost"
	"releaseradar/internal/models"
	"releaseradar/internal/services"
	"releaseradar/internal/tests/mocks"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initDocsRepo creates a docs repository with one committed page.
func initDocsRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)

	page := filepath.Join(dir, "app", "docs", "auth", "page.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(page), 0o755))
	require.NoError(t, os.WriteFile(page, []byte("# Auth\n\nPassword login only.\n"), 0o644))
	_, err = w.Add("app/docs/auth/page.md")
	require.NoError(t, err)
	_, err = w.Commit("initial docs", &git.CommitOptions{
		Author: &object.Signature{Name: "docs", Email: "docs@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

// scriptedGenerator answers each prompt kind with a fixed JSON payload.
func scriptedGenerator() *mocks.TextGeneratorMock {
	return &mocks.TextGeneratorMock{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "reviewing a GitHub Pull Request"):
				return "Here you go:\n```json\n{\"summary\": \"Adds SAML single sign-on.\", \"suggestedDocPages\": [\"auth\"], \"category\": \"feature\"}\n```", nil
			case strings.Contains(prompt, "technical writer maintaining product documentation"):
				return `{"updatedContent": "# Auth\n\nPassword login and SAML SSO.\n", "changeRationale": "document SSO"}`, nil
			case strings.Contains(prompt, "weekly product release email"):
				return `{"subject": "New this week: SSO", "emailCopy": "We shipped SSO."}`, nil
			}
			return "", errors.New("unexpected prompt")
		},
	}
}

func TestPipeline_PullRequestToReleaseNote(t *testing.T) {
	ctx := context.Background()
	docsDir := initDocsRepo(t)

	db, err := database.Init(database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "radar.db")})
	require.NoError(t, err)

	local, err := githost.OpenLocal(docsDir, githost.LocalOptions{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Docs.SiteURL = "https://docs.test"
	cfg.Pipeline.InitialDelay = time.Millisecond
	cfg.Pipeline.MaxDelay = time.Millisecond

	source := &mocks.PullRequestSourceMock{
		FetchPullRequestFunc: func(ctx context.Context, owner, repo string, number int) (*githost.MergedPullRequest, error) {
			return &githost.MergedPullRequest{
				Repository: owner + "/" + repo,
				Number:     number,
				Title:      "Add SSO login",
				URL:        "https://github.com/acme/api/pull/42",
				Merged:     true,
				MergedAt:   time.Now(),
				Files:      []string{"auth/sso.go"},
			}, nil
		},
	}

	svc, err := services.NewServices(services.Deps{
		Repos:        services.NewDbRepositories(db),
		Host:         local,
		Pages:        local,
		PullRequests: source,
		Generator:    scriptedGenerator(),
		Config:       cfg,
	})
	require.NoError(t, err)

	// Ingest lands as pending.
	row, err := svc.Ingest.IngestPullRequest(ctx, "acme", "api", 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/docs/auth/page.md"}, row.SuggestedDocPages)

	_, err = svc.DocUpdates.Process(ctx, models.SourceReview, row.ID)
	assert.True(t, errors.Is(err, services.ErrNotFound))

	pending, err := svc.Changes.ListByStatus(ctx, models.SourceReview, models.StatusPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// Re-delivery of the same webhook updates in place.
	again, err := svc.Ingest.IngestPullRequest(ctx, "acme", "api", 42)
	require.NoError(t, err)
	assert.Equal(t, row.ID, again.ID)

	_, err = svc.Changes.Approve(ctx, models.SourceReview, row.ID, "reviewer", nil)
	require.NoError(t, err)

	res, err := svc.DocUpdates.Process(ctx, models.SourceReview, row.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/docs/auth/page.md"}, res.FilesUpdated)
	assert.Equal(t, 1, res.DocPRNumber)

	updated, err := local.GetFile(ctx, "app/docs/auth/page.md", res.BranchName)
	require.NoError(t, err)
	assert.Contains(t, updated.Content, "SAML SSO")
	base, err := local.GetFile(ctx, "app/docs/auth/page.md", "master")
	require.NoError(t, err)
	assert.Equal(t, "# Auth\n\nPassword login only.\n", base.Content)

	repo, err := git.PlainOpen(docsDir)
	require.NoError(t, err)
	head, err := repo.Reference(plumbing.NewBranchReferenceName(res.BranchName), true)
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "docs: Update app/docs/auth/page.md for PR #42", strings.TrimSpace(commit.Message))

	// The weekly digest picks up the approved change with its doc link.
	note, err := svc.ReleaseNotes.Generate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, note.Counts.Features)
	assert.Equal(t, "New this week: SSO", note.Subject)
	require.Len(t, note.Categorized.Features, 1)
	assert.Equal(t, []string{"https://docs.test/docs/auth"}, note.Categorized.Features[0].DocLinks())

	regenerated, err := svc.ReleaseNotes.Generate(ctx, note.WeekStarting)
	require.NoError(t, err)
	assert.Equal(t, note.ID, regenerated.ID)

	sent, err := svc.ReleaseNotes.MarkSent(ctx, note.ID)
	require.NoError(t, err)
	assert.NotNil(t, sent.SentAt)

	_, err = svc.ReleaseNotes.Generate(ctx, note.WeekStarting)
	assert.True(t, errors.Is(err, services.ErrReleaseNoteSent))
}

func TestPipeline_TicketWithMissingPageCreatesIt(t *testing.T) {
	ctx := context.Background()
	docsDir := initDocsRepo(t)

	db, err := database.Init(database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "radar.db")})
	require.NoError(t, err)
	local, err := githost.OpenLocal(docsDir, githost.LocalOptions{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Docs.CreateMissingPages = true
	cfg.Pipeline.InitialDelay = time.Millisecond
	cfg.Pipeline.MaxDelay = time.Millisecond

	gen := &mocks.TextGeneratorMock{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Linear ticket") {
				return `{"summary": "Adds rate limit headers.", "suggestedDocPages": ["limits"], "category": "improvement"}`, nil
			}
			return `{"updatedContent": "# Limits\n", "changeRationale": "new page"}`, nil
		},
	}
	svc, err := services.NewServices(services.Deps{
		Repos:     services.NewDbRepositories(db),
		Host:      local,
		Pages:     local,
		Generator: gen,
		Config:    cfg,
	})
	require.NoError(t, err)

	row, err := svc.Ingest.IngestTicket(ctx, services.TicketInput{
		Identifier: "ENG-7",
		Title:      "Rate limit headers",
		URL:        "https://linear.app/acme/issue/ENG-7",
	})
	require.NoError(t, err)

	_, err = svc.Changes.Approve(ctx, models.SourceTicket, row.ID, "", nil)
	require.NoError(t, err)

	res, err := svc.DocUpdates.Process(ctx, models.SourceTicket, row.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/docs/limits/page.md"}, res.FilesUpdated)

	created, err := local.GetFile(ctx, "app/docs/limits/page.md", res.BranchName)
	require.NoError(t, err)
	assert.Equal(t, "# Limits\n", created.Content)
	_, err = local.GetFile(ctx, "app/docs/limits/page.md", "master")
	assert.ErrorIs(t, err, githost.ErrNotFound)
}
