package client

import (
	"bytes"
	"embed"
	"fmt"
	"sync"
	"text/template"
)

// embeddedPrompts holds the built-in prompt templates so packaged executables
// can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

const (
	promptDocUpdate       = "doc_update.txt"
	promptSummarizeReview = "summarize_review.txt"
	promptSummarizeTicket = "summarize_ticket.txt"
	promptReleaseNotes    = "release_notes.txt"
)

var (
	promptsOnce sync.Once
	promptSet   *template.Template
	promptErr   error
)

func prompts() (*template.Template, error) {
	promptsOnce.Do(func() {
		promptSet, promptErr = template.ParseFS(embeddedPrompts, "prompts/*.txt")
	})
	return promptSet, promptErr
}

// renderPrompt executes the named embedded template with data.
func renderPrompt(name string, data any) (string, error) {
	set, err := prompts()
	if err != nil {
		return "", fmt.Errorf("load prompts: %w", err)
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
