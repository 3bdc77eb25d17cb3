package events

import (
	"context"
	"sync"
)

type EmitFunc func(ctx context.Context, name string, evt PipelineEvent)

var (
	emitMu sync.RWMutex
	emit   EmitFunc = logEvent
)

// Emit publishes evt under name, filling the run key from ctx when unset.
func Emit(ctx context.Context, name string, evt PipelineEvent) {
	if evt.RunKey == "" {
		evt.RunKey = RunFromContext(ctx)
	}
	emitMu.RLock()
	f := emit
	emitMu.RUnlock()
	f(ctx, name, evt)
}

// SetCustomEmitter replaces the emitter. Passing nil silences events.
func SetCustomEmitter(f EmitFunc) {
	emitMu.Lock()
	defer emitMu.Unlock()
	if f == nil {
		emit = func(context.Context, string, PipelineEvent) {}
		return
	}
	emit = f
}

// ResetEmitter restores the default log-backed emitter.
func ResetEmitter() {
	SetCustomEmitter(logEvent)
}

// Recorder collects emitted events in memory. Install it with
// SetCustomEmitter(rec.Emit).
type Recorder struct {
	mu     sync.Mutex
	events []PipelineEvent
}

func (r *Recorder) Emit(_ context.Context, name string, evt PipelineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	evt = evt.With("channel", name)
	r.events = append(r.events, evt)
}

func (r *Recorder) Events() []PipelineEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PipelineEvent, len(r.events))
	copy(out, r.events)
	return out
}
