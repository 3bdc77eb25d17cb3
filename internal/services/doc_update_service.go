package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"releaseradar/internal/events"
	"releaseradar/internal/githost"
	"releaseradar/internal/llm/client"
	"releaseradar/internal/models"
	"releaseradar/internal/retry"

	"github.com/google/uuid"
)

var (
	ErrNoChangesApplied = errors.New("no documentation pages were updated")
	ErrPublishFailed    = errors.New("failed to open documentation pull request")
)

// NoChangesAppliedError carries the per-page failures of a run that updated nothing.
type NoChangesAppliedError struct {
	Branch   string
	Failures []models.PageFailure
}

func (e *NoChangesAppliedError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("%v on %s", ErrNoChangesApplied, e.Branch)
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Path, f.Err))
	}
	return fmt.Sprintf("%v on %s (%s)", ErrNoChangesApplied, e.Branch, strings.Join(parts, "; "))
}

func (e *NoChangesAppliedError) Unwrap() error { return ErrNoChangesApplied }

// DocWriter produces rewritten page content.
type DocWriter interface {
	Rewrite(ctx context.Context, req client.DocRewriteRequest) (client.DocRewrite, error)
}

type DocUpdateOptions struct {
	Retry               retry.Policy
	CallTimeout         time.Duration
	CreateMissingPages  bool
	CleanupOrphanBranch bool
}

type DocUpdateService interface {
	ApplyChanges(ctx context.Context, change *models.ChangeRecord, pages []string) (*models.BranchOutcome, error)
	Process(ctx context.Context, src models.SourceType, id string) (*models.DocUpdateResult, error)
}

type docUpdateService struct {
	changes   ChangeService
	selector  *PageSelector
	host      githost.Host
	writer    DocWriter
	publisher Publisher
	entries   ReleaseEntryService
	remote    remoteCaller
	opts      DocUpdateOptions
	now       func() time.Time
}

func NewDocUpdateService(
	changes ChangeService,
	selector *PageSelector,
	host githost.Host,
	writer DocWriter,
	publisher Publisher,
	entries ReleaseEntryService,
	opts DocUpdateOptions,
) DocUpdateService {
	return &docUpdateService{
		changes:   changes,
		selector:  selector,
		host:      host,
		writer:    writer,
		publisher: publisher,
		entries:   entries,
		remote:    newRemoteCaller(opts.Retry, opts.CallTimeout),
		opts:      opts,
		now:       time.Now,
	}
}

// Process runs a full documentation update for one approved change:
// load, select pages, mutate a fresh branch, publish, record.
func (s *docUpdateService) Process(ctx context.Context, src models.SourceType, id string) (*models.DocUpdateResult, error) {
	runID := uuid.NewString()
	ctx = events.WithRun(ctx, runID)
	events.Emit(ctx, events.DocsUpdate, events.NewInfo("Starting documentation update").
		With("source", string(src)).
		With("id", id))

	change, err := s.changes.LoadApproved(ctx, src, id)
	if err != nil {
		events.Emit(ctx, events.DocsUpdate, events.NewError("Change could not be loaded").With("error", err.Error()))
		return nil, err
	}

	pages := s.selector.Select(change)
	outcome, err := s.ApplyChanges(ctx, change, pages)
	if err != nil {
		events.Emit(ctx, events.DocsUpdate, events.NewError("Documentation branch was not updated").With("error", err.Error()))
		return nil, err
	}

	req, err := s.publisher.Publish(ctx, outcome.Branch, outcome.BaseBranch, change, outcome.Updated)
	if err != nil {
		log.Printf("[docs-update] publish failed for branch %s: %v", outcome.Branch, err)
		events.Emit(ctx, events.DocsUpdate, events.NewError("Pull request could not be opened").
			With("branch", outcome.Branch).
			With("error", err.Error()))
		if s.opts.CleanupOrphanBranch {
			s.deleteBranch(ctx, outcome.Branch)
		}
		return nil, fmt.Errorf("%w for branch %s: %w", ErrPublishFailed, outcome.Branch, err)
	}

	// Recording is best effort; the pull request already exists.
	_ = s.entries.Record(ctx, change, outcome, req)

	events.Emit(ctx, events.DocsUpdate, events.NewSuccess("Documentation pull request opened").
		With("url", req.URL).
		With("branch", outcome.Branch))

	return &models.DocUpdateResult{
		RunID:        runID,
		DocPRURL:     req.URL,
		DocPRNumber:  req.Number,
		FilesUpdated: outcome.Paths(),
		BranchName:   outcome.Branch,
	}, nil
}

func (s *docUpdateService) deleteBranch(ctx context.Context, branch string) {
	err := s.remote.do(context.WithoutCancel(ctx), "delete branch", func(ctx context.Context) error {
		return s.host.DeleteBranch(ctx, branch)
	})
	if err != nil {
		log.Printf("[docs-update] could not delete orphan branch %s: %v", branch, err)
		return
	}
	events.Emit(ctx, events.DocsUpdate, events.NewInfo("Deleted orphan branch").With("branch", branch))
}

// ApplyChanges creates a fresh branch off the default branch and commits one
// rewrite per page, in order. Pages that fail are skipped; the run fails only
// when none succeed.
func (s *docUpdateService) ApplyChanges(ctx context.Context, change *models.ChangeRecord, pages []string) (*models.BranchOutcome, error) {
	if change == nil {
		return nil, errors.New("change is required")
	}

	base, err := callValue(ctx, s.remote, "get default branch", func(ctx context.Context) (githost.BranchRef, error) {
		return s.host.GetDefaultBranch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve default branch: %w", err)
	}

	branch := BranchName(change.SourceType, change.SourceID, s.now())
	if err := s.createBranch(ctx, branch, base.SHA); err != nil {
		return nil, fmt.Errorf("create branch %s: %w", branch, err)
	}
	events.Emit(ctx, events.DocsUpdate, events.NewInfo("Created documentation branch").
		With("branch", branch).
		With("base", base.Name))

	outcome := &models.BranchOutcome{Branch: branch, BaseBranch: base.Name}
	for _, path := range pages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("documentation update aborted on %s: %w", branch, err)
		}
		updated, err := s.updatePage(ctx, change, branch, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("documentation update aborted on %s: %w", branch, ctx.Err())
			}
			log.Printf("[docs-update] Error updating %s: %v", path, err)
			events.Emit(ctx, events.DocsPage, events.NewWarn("Page skipped").
				With("path", path).
				With("error", err.Error()))
			outcome.Failed = append(outcome.Failed, models.PageFailure{Path: path, Err: err})
			continue
		}
		log.Printf("[docs-update] Updating %s: %s", path, updated.Rationale)
		events.Emit(ctx, events.DocsPage, events.NewSuccess("Page updated").
			With("path", path).
			With("kind", updated.ChangeKind))
		outcome.Updated = append(outcome.Updated, *updated)
	}

	if len(outcome.Updated) == 0 {
		return nil, &NoChangesAppliedError{Branch: branch, Failures: outcome.Failed}
	}
	return outcome, nil
}

// createBranch treats "already exists" after a retry as success: the earlier
// attempt created the branch but its response was lost.
func (s *docUpdateService) createBranch(ctx context.Context, name, sha string) error {
	attempt := 0
	return s.remote.do(ctx, "create branch", func(ctx context.Context) error {
		attempt++
		err := s.host.CreateBranch(ctx, name, sha)
		if errors.Is(err, githost.ErrBranchExists) {
			if attempt > 1 {
				return nil
			}
			return retry.Permanent(err)
		}
		return err
	})
}

// putFile treats a version conflict after a retry as success when the branch
// already holds the content: the earlier attempt committed but its response
// was lost.
func (s *docUpdateService) putFile(ctx context.Context, in githost.PutFileInput) error {
	attempt := 0
	return s.remote.do(ctx, "put "+in.Path, func(ctx context.Context) error {
		attempt++
		err := s.host.PutFile(ctx, in)
		if attempt == 1 || !errors.Is(err, githost.ErrVersionConflict) {
			return err
		}
		current, getErr := s.host.GetFile(ctx, in.Path, in.Branch)
		if getErr == nil && current.Content == in.Content {
			log.Printf("[docs-update] %s already committed on %s", in.Path, in.Branch)
			return nil
		}
		return err
	})
}

func (s *docUpdateService) updatePage(ctx context.Context, change *models.ChangeRecord, branch, path string) (*models.UpdatedPage, error) {
	kind := models.ChangeKindUpdated
	file, err := callValue(ctx, s.remote, "get "+path, func(ctx context.Context) (*githost.File, error) {
		return s.host.GetFile(ctx, path, branch)
	})
	if err != nil {
		if !errors.Is(err, githost.ErrNotFound) || !s.opts.CreateMissingPages {
			return nil, fmt.Errorf("fetch page: %w", err)
		}
		kind = models.ChangeKindAdded
		file = &githost.File{Path: path}
	}

	rewrite, err := callValue(ctx, s.remote, "rewrite "+path, func(ctx context.Context) (client.DocRewrite, error) {
		return s.writer.Rewrite(ctx, client.DocRewriteRequest{
			Path:      path,
			Existing:  file.Content,
			Missing:   kind == models.ChangeKindAdded,
			Summary:   change.Summary,
			Category:  string(change.Classification),
			Reference: change.Reference(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("generate page: %w", err)
	}

	err = s.putFile(ctx, githost.PutFileInput{
		Path:    path,
		Content: rewrite.Content,
		Message: CommitMessage(path, change),
		Branch:  branch,
		Version: file.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("commit page: %w", err)
	}
	return &models.UpdatedPage{Path: path, ChangeKind: kind, Rationale: rewrite.Rationale}, nil
}

// CommitMessage is "docs: Update <path> for <reference>".
func CommitMessage(path string, change *models.ChangeRecord) string {
	return fmt.Sprintf("docs: Update %s for %s", path, change.Reference())
}

var branchUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

const maxBranchIDLen = 40

// BranchName builds docs-update-<type>-<sanitized id>-<unix millis>, dropping
// the id segment when nothing survives sanitizing.
func BranchName(src models.SourceType, id string, at time.Time) string {
	clean := strings.Trim(branchUnsafe.ReplaceAllString(strings.ToLower(id), "-"), "-")
	if len(clean) > maxBranchIDLen {
		clean = strings.TrimRight(clean[:maxBranchIDLen], "-")
	}
	if clean == "" {
		return fmt.Sprintf("docs-update-%s-%d", src, at.UnixMilli())
	}
	return fmt.Sprintf("docs-update-%s-%s-%d", src, clean, at.UnixMilli())
}
