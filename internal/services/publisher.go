package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"releaseradar/internal/githost"
	"releaseradar/internal/models"
	"releaseradar/internal/retry"
)

// Publisher opens the review request for an update branch.
type Publisher interface {
	Publish(ctx context.Context, branch, base string, change *models.ChangeRecord, pages []models.UpdatedPage) (*models.ReviewRequest, error)
}

type publisher struct {
	host   githost.Host
	remote remoteCaller
}

func NewPublisher(host githost.Host, policy retry.Policy, callTimeout time.Duration) Publisher {
	return &publisher{host: host, remote: newRemoteCaller(policy, callTimeout)}
}

func (p *publisher) Publish(ctx context.Context, branch, base string, change *models.ChangeRecord, pages []models.UpdatedPage) (*models.ReviewRequest, error) {
	in := githost.PullRequestInput{
		Title: PullRequestTitle(change),
		Body:  PullRequestBody(change, pages),
		Head:  branch,
		Base:  base,
	}
	attempt := 0
	pr, err := callValue(ctx, p.remote, "create pull request", func(ctx context.Context) (*githost.PullRequest, error) {
		attempt++
		pr, err := p.host.CreatePullRequest(ctx, in)
		if attempt > 1 && errors.Is(err, githost.ErrPullRequestOpen) {
			return p.existing(ctx, branch, err)
		}
		return pr, err
	})
	if err != nil {
		return nil, err
	}
	return &models.ReviewRequest{URL: pr.URL, Number: pr.Number}, nil
}

// existing recovers the pull request an earlier attempt opened but whose
// response was lost.
func (p *publisher) existing(ctx context.Context, branch string, cause error) (*githost.PullRequest, error) {
	finder, ok := p.host.(githost.PullRequestFinder)
	if !ok {
		return nil, cause
	}
	pr, err := finder.FindPullRequest(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("%w (lookup: %v)", cause, err)
	}
	log.Printf("[docs-update] pull request #%d for %s was already open", pr.Number, branch)
	return pr, nil
}

// PullRequestTitle is "docs: Update for PR #n" for reviews and uses the
// ticket title otherwise.
func PullRequestTitle(change *models.ChangeRecord) string {
	return "docs: Update for " + change.Reference()
}

// PullRequestBody renders the source reference, summary, file list and footer.
func PullRequestBody(change *models.ChangeRecord, pages []models.UpdatedPage) string {
	var b strings.Builder
	b.WriteString("## Documentation Update\n\n")
	if change.SourceType == models.SourceReview && change.Review != nil {
		fmt.Fprintf(&b, "This PR updates documentation based on merged PR #%d.\n\n", change.Review.Number)
		fmt.Fprintf(&b, "**Original PR:** %s\n\n", change.URL)
	} else {
		b.WriteString("This PR updates documentation based on completed ticket")
		if change.Ticket != nil && change.Ticket.Identifier != "" {
			fmt.Fprintf(&b, " %s", change.Ticket.Identifier)
		}
		b.WriteString(".\n\n")
		fmt.Fprintf(&b, "**Original Ticket:** %s\n\n", change.URL)
	}
	fmt.Fprintf(&b, "**Summary:**\n%s\n\n", change.Summary)
	b.WriteString("**Files Updated:**\n")
	for _, p := range pages {
		if p.ChangeKind == models.ChangeKindAdded {
			fmt.Fprintf(&b, "- %s (new)\n", p.Path)
			continue
		}
		fmt.Fprintf(&b, "- %s\n", p.Path)
	}
	b.WriteString("\n---\nGenerated automatically by Release Radar")
	return b.String()
}
