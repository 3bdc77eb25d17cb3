// Package retry runs remote calls with exponential backoff.
//
// Every call site gets its own attempt counter and its own backoff state.
// Delays double from InitialDelay up to MaxDelay with no jitter. Sleeping is
// done on a timer tied to the caller's context, so only the calling goroutine
// waits and cancellation aborts the remaining attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy configures one retried call.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Name shows up in retry log lines.
	Name string
	// Timer overrides the sleep implementation. Nil uses a real timer.
	Timer backoff.Timer
}

// DefaultPolicy is 3 retries (4 attempts), 1s initial delay doubling up to 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
	}
}

// Named returns a copy of p with Name set.
func (p Policy) Named(name string) Policy {
	p.Name = name
	return p
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = p.InitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	return p
}

// ExhaustedError is returned once every attempt failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Permanent marks err as not worth retrying. Do returns it unwrapped after the
// first attempt that produced it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do invokes op until it succeeds, the policy is exhausted, op returns a
// Permanent error, or ctx is done.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialDelay
	exp.MaxInterval = p.MaxDelay
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = backoff.WithMaxRetries(exp, uint64(p.MaxRetries))
	b = backoff.WithContext(b, ctx)

	var (
		result    T
		attempts  int
		lastErr   error
		permanent bool
	)
	total := p.MaxRetries + 1

	operation := func() error {
		attempts++
		v, err := op(ctx)
		if err == nil {
			result = v
			return nil
		}
		lastErr = err
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			permanent = true
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		label := p.Name
		if label == "" {
			label = "call"
		}
		log.Printf("[retry] %s: attempt %d/%d failed, retrying in %s: %v", label, attempts, total, next, err)
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, p.Timer)
	if err == nil {
		return result, nil
	}

	var zero T
	if permanent {
		return zero, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, fmt.Errorf("aborted after %d attempts: %w", attempts, ctxErr)
	}
	return zero, &ExhaustedError{Attempts: attempts, Last: lastErr}
}
