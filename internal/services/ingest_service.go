package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"releaseradar/internal/events"
	"releaseradar/internal/githost"
	"releaseradar/internal/llm/client"
	"releaseradar/internal/models"
	"releaseradar/internal/repositories"
	"releaseradar/internal/retry"
)

var ErrNotMerged = errors.New("pull request is not merged")

// Summarizer drafts ingestion summaries.
type Summarizer interface {
	SummarizeReview(ctx context.Context, req client.ReviewSummaryRequest) (client.ChangeSummary, error)
	SummarizeTicket(ctx context.Context, req client.TicketSummaryRequest) (client.ChangeSummary, error)
}

// TicketInput is a completed tracker issue as delivered by its webhook.
type TicketInput struct {
	Identifier  string
	Title       string
	URL         string
	Description string
	CompletedAt time.Time
}

type IngestService interface {
	IngestPullRequest(ctx context.Context, owner, repo string, number int) (*models.ReviewChange, error)
	IngestTicket(ctx context.Context, in TicketInput) (*models.TicketChange, error)
}

type ingestService struct {
	source     githost.PullRequestSource
	pages      githost.PageLister
	summarizer Summarizer
	reviews    repositories.ReviewChangeRepository
	tickets    repositories.TicketChangeRepository
	remote     remoteCaller
	docsPrefix string
}

// NewIngestService wires ingestion. pages may be nil, in which case the model
// is not shown the list of existing documentation pages.
func NewIngestService(
	source githost.PullRequestSource,
	pages githost.PageLister,
	summarizer Summarizer,
	reviews repositories.ReviewChangeRepository,
	tickets repositories.TicketChangeRepository,
	policy retry.Policy,
	callTimeout time.Duration,
) IngestService {
	return &ingestService{
		source:     source,
		pages:      pages,
		summarizer: summarizer,
		reviews:    reviews,
		tickets:    tickets,
		remote:     newRemoteCaller(policy, callTimeout),
		docsPrefix: "app/docs/",
	}
}

// IngestPullRequest fetches a merged pull request, summarizes it and stores
// it as pending review. A failed summary falls back to a generic line.
func (s *ingestService) IngestPullRequest(ctx context.Context, owner, repo string, number int) (*models.ReviewChange, error) {
	if s.source == nil {
		return nil, errors.New("pull request source not configured")
	}
	pr, err := callValue(ctx, s.remote, "fetch pull request", func(ctx context.Context) (*githost.MergedPullRequest, error) {
		return s.source.FetchPullRequest(ctx, owner, repo, number)
	})
	if err != nil {
		return nil, err
	}
	if !pr.Merged {
		return nil, fmt.Errorf("%s#%d: %w", pr.Repository, pr.Number, ErrNotMerged)
	}

	req := client.ReviewSummaryRequest{
		Repository:  pr.Repository,
		Number:      pr.Number,
		Title:       pr.Title,
		Description: pr.Body,
		Files:       pr.Files,
		Additions:   pr.Additions,
		Deletions:   pr.Deletions,
		Diff:        pr.Diff,
		KnownPages:  s.knownPages(ctx),
	}
	summary, err := callValue(ctx, s.remote, "summarize pull request", func(ctx context.Context) (client.ChangeSummary, error) {
		return s.summarizer.SummarizeReview(ctx, req)
	})
	if err != nil {
		log.Printf("[ingest] Error summarizing %s#%d: %v", pr.Repository, pr.Number, err)
		summary = client.ChangeSummary{
			Summary: fmt.Sprintf("Updated %d files in %s. %s", len(pr.Files), pr.Repository, pr.Title),
		}
	}

	var description *string
	if strings.TrimSpace(pr.Body) != "" {
		body := pr.Body
		description = &body
	}
	row := &models.ReviewChange{
		Repository:          pr.Repository,
		Number:              pr.Number,
		Title:               pr.Title,
		URL:                 pr.URL,
		Author:              pr.Author,
		MergedAt:            pr.MergedAt,
		FilesChanged:        len(pr.Files),
		Additions:           pr.Additions,
		Deletions:           pr.Deletions,
		Files:               pr.Files,
		Category:            string(classify(summary.Category)),
		SuggestedDocPages:   s.normalizePages(summary.SuggestedDocPages),
		LLMSummary:          summary.Summary,
		OriginalDescription: description,
	}
	if err := s.reviews.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("store review change: %w", err)
	}
	events.Emit(ctx, events.ChangeIngest, events.NewInfo("Pull request ingested").
		With("id", row.ID).
		With("category", row.Category))
	return row, nil
}

// IngestTicket summarizes a completed ticket and stores it as pending review.
func (s *ingestService) IngestTicket(ctx context.Context, in TicketInput) (*models.TicketChange, error) {
	if strings.TrimSpace(in.Identifier) == "" || strings.TrimSpace(in.Title) == "" {
		return nil, errors.New("ticket identifier and title are required")
	}
	req := client.TicketSummaryRequest{
		Identifier:  in.Identifier,
		Title:       in.Title,
		Description: in.Description,
		KnownPages:  s.knownPages(ctx),
	}
	summary, err := callValue(ctx, s.remote, "summarize ticket", func(ctx context.Context) (client.ChangeSummary, error) {
		return s.summarizer.SummarizeTicket(ctx, req)
	})
	if err != nil {
		log.Printf("[ingest] Error summarizing ticket %s: %v", in.Identifier, err)
		summary = client.ChangeSummary{Summary: "Completed: " + in.Title}
	}

	var description *string
	if strings.TrimSpace(in.Description) != "" {
		d := in.Description
		description = &d
	}
	completed := in.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}
	row := &models.TicketChange{
		TicketID:          in.Identifier,
		Title:             in.Title,
		URL:               in.URL,
		CompletedAt:       completed,
		Description:       description,
		Category:          string(classify(summary.Category)),
		SuggestedDocPages: s.normalizePages(summary.SuggestedDocPages),
		LLMSummary:        summary.Summary,
	}
	if err := s.tickets.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("store ticket change: %w", err)
	}
	events.Emit(ctx, events.ChangeIngest, events.NewInfo("Ticket ingested").
		With("id", row.ID).
		With("category", row.Category))
	return row, nil
}

func classify(raw string) models.Classification {
	c, _ := models.ParseClassification(raw)
	return c
}

func (s *ingestService) knownPages(ctx context.Context) []string {
	if s.pages == nil {
		return nil
	}
	pages, err := s.pages.ListPages(ctx)
	if err != nil {
		log.Printf("[ingest] could not list documentation pages: %v", err)
		return nil
	}
	return pages
}

// normalizePages turns bare slugs such as "auth/sso" into page paths and
// drops blanks, duplicates and anything that leaves the repository. A leading
// "/" is read as the repository root.
func (s *ingestService) normalizePages(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if !strings.HasSuffix(p, ".md") && !strings.HasSuffix(p, ".mdx") {
			p = s.docsPrefix + strings.TrimPrefix(p, s.docsPrefix) + "/page.md"
		}
		clean, err := githost.CleanPath(p)
		if err != nil {
			log.Printf("[ingest] dropping suggested page: %v", err)
			continue
		}
		p = clean
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
