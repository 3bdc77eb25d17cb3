package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

const (
	DocsUpdate    = "events:docs:update"
	DocsPage      = "events:docs:page"
	ReleaseNotes  = "events:release-notes"
	ChangeIngest  = "events:change:ingest"
	ChangeReviews = "events:change:review"
)

// PipelineEvent is a structured progress record for a single run.
type PipelineEvent struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	RunKey    string            `json:"runKey,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const runContextKey contextKey = "releaseradar/events/run"

// WithRun returns a derived context annotated with the given run key
// so emitters can scope payloads automatically.
func WithRun(ctx context.Context, runKey string) context.Context {
	if strings.TrimSpace(runKey) == "" {
		return ctx
	}
	return context.WithValue(ctx, runContextKey, runKey)
}

// RunFromContext extracts the run key associated with ctx.
func RunFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(runContextKey).(string); ok {
		return v
	}
	return ""
}

func CreateEvent(eventType EventType, message string) PipelineEvent {
	return PipelineEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewInfo creates an info PipelineEvent.
func NewInfo(message string) PipelineEvent {
	return CreateEvent(EventInfo, message)
}

// NewWarn creates a warn PipelineEvent.
func NewWarn(message string) PipelineEvent {
	return CreateEvent(EventWarn, message)
}

// NewError creates an error PipelineEvent.
func NewError(message string) PipelineEvent {
	return CreateEvent(EventError, message)
}

// NewSuccess creates a success PipelineEvent.
func NewSuccess(message string) PipelineEvent {
	return CreateEvent(EventSuccess, message)
}

// With attaches a metadata pair and returns the event.
func (e PipelineEvent) With(key, value string) PipelineEvent {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}
