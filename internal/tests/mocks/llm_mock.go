package mocks

import (
	"context"
	"time"

	"releaseradar/internal/githost"
	"releaseradar/internal/llm/client"
)

type TextGeneratorMock struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *TextGeneratorMock) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

type DocWriterMock struct {
	RewriteFunc func(ctx context.Context, req client.DocRewriteRequest) (client.DocRewrite, error)
}

func (m *DocWriterMock) Rewrite(ctx context.Context, req client.DocRewriteRequest) (client.DocRewrite, error) {
	if m.RewriteFunc != nil {
		return m.RewriteFunc(ctx, req)
	}
	return client.DocRewrite{Content: req.Existing + "\nUpdated: " + req.Summary, Rationale: "documented " + req.Reference}, nil
}

type DigestWriterMock struct {
	WriteFunc func(ctx context.Context, req client.DigestRequest) (client.Digest, error)
}

func (m *DigestWriterMock) Write(ctx context.Context, req client.DigestRequest) (client.Digest, error) {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, req)
	}
	return client.Digest{Subject: "Weekly release notes", EmailCopy: "Hello"}, nil
}

type SummarizerMock struct {
	SummarizeReviewFunc func(ctx context.Context, req client.ReviewSummaryRequest) (client.ChangeSummary, error)
	SummarizeTicketFunc func(ctx context.Context, req client.TicketSummaryRequest) (client.ChangeSummary, error)
}

func (m *SummarizerMock) SummarizeReview(ctx context.Context, req client.ReviewSummaryRequest) (client.ChangeSummary, error) {
	if m.SummarizeReviewFunc != nil {
		return m.SummarizeReviewFunc(ctx, req)
	}
	return client.ChangeSummary{Summary: req.Title, Category: "other"}, nil
}

func (m *SummarizerMock) SummarizeTicket(ctx context.Context, req client.TicketSummaryRequest) (client.ChangeSummary, error) {
	if m.SummarizeTicketFunc != nil {
		return m.SummarizeTicketFunc(ctx, req)
	}
	return client.ChangeSummary{Summary: req.Title, Category: "other"}, nil
}

type PullRequestSourceMock struct {
	FetchPullRequestFunc func(ctx context.Context, owner, repo string, number int) (*githost.MergedPullRequest, error)
}

func (m *PullRequestSourceMock) FetchPullRequest(ctx context.Context, owner, repo string, number int) (*githost.MergedPullRequest, error) {
	if m.FetchPullRequestFunc != nil {
		return m.FetchPullRequestFunc(ctx, owner, repo, number)
	}
	return &githost.MergedPullRequest{
		Repository: owner + "/" + repo,
		Number:     number,
		Title:      "Mock pull request",
		URL:        "https://example.test/pull",
		Merged:     true,
		MergedAt:   time.Now(),
	}, nil
}

type PageListerMock struct {
	ListPagesFunc func(ctx context.Context) ([]string, error)
}

func (m *PageListerMock) ListPages(ctx context.Context) ([]string, error) {
	if m.ListPagesFunc != nil {
		return m.ListPagesFunc(ctx)
	}
	return nil, nil
}
