package services

import (
	"errors"

	"releaseradar/internal/config"
	"releaseradar/internal/githost"
	"releaseradar/internal/llm/client"
	"releaseradar/internal/retry"
)

// Services aggregates the pipeline services.
type Services struct {
	Changes      ChangeService
	DocUpdates   DocUpdateService
	ReleaseNotes ReleaseNotesService
	Ingest       IngestService
}

// Deps are the external collaborators the services run against.
// Pages and PullRequests are optional.
type Deps struct {
	Repos        *DbRepositories
	Host         githost.Host
	Pages        githost.PageLister
	PullRequests githost.PullRequestSource
	Generator    client.TextGenerator
	Config       config.Config
}

// RetryPolicy maps pipeline settings onto a retry policy.
func RetryPolicy(p config.PipelineConfig) retry.Policy {
	return retry.Policy{
		MaxRetries:   p.MaxRetries,
		InitialDelay: p.InitialDelay,
		MaxDelay:     p.MaxDelay,
		Multiplier:   p.Multiplier,
	}
}

// NewServices constructs the service container.
func NewServices(d Deps) (*Services, error) {
	if d.Repos == nil {
		return nil, errors.New("repositories are required")
	}
	if d.Host == nil {
		return nil, errors.New("documentation host is required")
	}
	if d.Generator == nil {
		return nil, errors.New("text generator is required")
	}
	loc, err := d.Config.Location()
	if err != nil {
		return nil, err
	}
	policy := RetryPolicy(d.Config.Pipeline)
	timeout := d.Config.Pipeline.CallTimeout

	changes := NewChangeService(d.Repos.Reviews, d.Repos.Tickets)
	entries := NewReleaseEntryService(d.Repos.Entries, d.Config.Docs.SiteURL, loc)
	docUpdates := NewDocUpdateService(
		changes,
		NewPageSelector(d.Config.Docs.DefaultPage),
		d.Host,
		client.NewDocWriter(d.Generator),
		NewPublisher(d.Host, policy, timeout),
		entries,
		DocUpdateOptions{
			Retry:               policy,
			CallTimeout:         timeout,
			CreateMissingPages:  d.Config.Docs.CreateMissingPages,
			CleanupOrphanBranch: d.Config.Docs.CleanupOrphanBranch,
		},
	)
	notes := NewReleaseNotesService(
		changes,
		d.Repos.Entries,
		d.Repos.ReleaseNotes,
		client.NewDigestWriter(d.Generator),
		policy,
		timeout,
		loc,
	)
	ingest := NewIngestService(
		d.PullRequests,
		d.Pages,
		client.NewSummarizer(d.Generator),
		d.Repos.Reviews,
		d.Repos.Tickets,
		policy,
		timeout,
	)

	return &Services{
		Changes:      changes,
		DocUpdates:   docUpdates,
		ReleaseNotes: notes,
		Ingest:       ingest,
	}, nil
}
