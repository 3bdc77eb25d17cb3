package client

import (
	"context"
	"fmt"
	"strings"
)

const (
	maxPromptFiles = 20
	maxDiffChars   = 3000
)

// DocRewriteRequest describes one page to rewrite for an approved change.
type DocRewriteRequest struct {
	Path      string
	Existing  string
	Missing   bool
	Summary   string
	Category  string
	Reference string
}

// DocRewrite is the generator's proposed page content.
type DocRewrite struct {
	Content   string `json:"updatedContent"`
	Rationale string `json:"changeRationale"`
}

// DocWriter rewrites documentation pages.
type DocWriter struct {
	Gen TextGenerator
}

func NewDocWriter(gen TextGenerator) *DocWriter {
	return &DocWriter{Gen: gen}
}

// Rewrite asks the generator for new page content. An empty page body is
// treated as malformed output.
func (w *DocWriter) Rewrite(ctx context.Context, req DocRewriteRequest) (DocRewrite, error) {
	prompt, err := renderPrompt(promptDocUpdate, req)
	if err != nil {
		return DocRewrite{}, err
	}
	text, err := w.Gen.Complete(ctx, prompt)
	if err != nil {
		return DocRewrite{}, err
	}
	out, err := DecodeJSON[DocRewrite](text)
	if err != nil {
		return DocRewrite{}, err
	}
	if strings.TrimSpace(out.Content) == "" {
		return DocRewrite{}, fmt.Errorf("%w: empty updatedContent for %s", ErrMalformedOutput, req.Path)
	}
	return out, nil
}

// ChangeSummary is the generator's view of a change at ingestion.
type ChangeSummary struct {
	Summary           string   `json:"summary"`
	SuggestedDocPages []string `json:"suggestedDocPages"`
	Category          string   `json:"category"`
}

// ReviewSummaryRequest carries the pull request details shown to the model.
type ReviewSummaryRequest struct {
	Repository  string
	Number      int
	Title       string
	Description string
	Files       []string
	Additions   int
	Deletions   int
	Diff        string
	KnownPages  []string
}

// TicketSummaryRequest carries the ticket details shown to the model.
type TicketSummaryRequest struct {
	Identifier  string
	Title       string
	Description string
	KnownPages  []string
}

// Summarizer produces ingestion summaries.
type Summarizer struct {
	Gen TextGenerator
}

func NewSummarizer(gen TextGenerator) *Summarizer {
	return &Summarizer{Gen: gen}
}

func (s *Summarizer) SummarizeReview(ctx context.Context, req ReviewSummaryRequest) (ChangeSummary, error) {
	shown := req.Files
	if len(shown) > maxPromptFiles {
		shown = shown[:maxPromptFiles]
	}
	diff := req.Diff
	if len(diff) > maxDiffChars {
		diff = diff[:maxDiffChars] + "\n... (truncated)"
	}
	data := struct {
		ReviewSummaryRequest
		ShownFiles  []string
		HiddenFiles int
	}{req, shown, len(req.Files) - len(shown)}
	data.Diff = diff

	prompt, err := renderPrompt(promptSummarizeReview, data)
	if err != nil {
		return ChangeSummary{}, err
	}
	return s.complete(ctx, prompt)
}

func (s *Summarizer) SummarizeTicket(ctx context.Context, req TicketSummaryRequest) (ChangeSummary, error) {
	prompt, err := renderPrompt(promptSummarizeTicket, req)
	if err != nil {
		return ChangeSummary{}, err
	}
	return s.complete(ctx, prompt)
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (ChangeSummary, error) {
	text, err := s.Gen.Complete(ctx, prompt)
	if err != nil {
		return ChangeSummary{}, err
	}
	out, err := DecodeJSON[ChangeSummary](text)
	if err != nil {
		return ChangeSummary{}, err
	}
	if strings.TrimSpace(out.Summary) == "" {
		return ChangeSummary{}, fmt.Errorf("%w: empty summary", ErrMalformedOutput)
	}
	return out, nil
}

// DigestItem is one change line in the weekly email.
type DigestItem struct {
	Title    string
	Summary  string
	DocLinks []string
}

// DigestSection groups items under a heading.
type DigestSection struct {
	Name  string
	Items []DigestItem
}

// DigestRequest is the categorized week handed to the model.
type DigestRequest struct {
	WeekStart string
	WeekEnd   string
	Sections  []DigestSection
}

// Digest is the generated email.
type Digest struct {
	Subject   string `json:"subject"`
	EmailCopy string `json:"emailCopy"`
}

// DigestWriter produces weekly release emails.
type DigestWriter struct {
	Gen TextGenerator
}

func NewDigestWriter(gen TextGenerator) *DigestWriter {
	return &DigestWriter{Gen: gen}
}

func (w *DigestWriter) Write(ctx context.Context, req DigestRequest) (Digest, error) {
	prompt, err := renderPrompt(promptReleaseNotes, req)
	if err != nil {
		return Digest{}, err
	}
	text, err := w.Gen.Complete(ctx, prompt)
	if err != nil {
		return Digest{}, err
	}
	out, err := DecodeJSON[Digest](text)
	if err != nil {
		return Digest{}, err
	}
	if strings.TrimSpace(out.EmailCopy) == "" {
		return Digest{}, fmt.Errorf("%w: empty emailCopy", ErrMalformedOutput)
	}
	return out, nil
}
