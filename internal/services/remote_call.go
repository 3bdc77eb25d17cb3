package services

import (
	"context"
	"errors"
	"time"

	"releaseradar/internal/githost"
	"releaseradar/internal/retry"
)

// DefaultCallTimeout bounds a single remote attempt.
const DefaultCallTimeout = 30 * time.Second

// remoteCaller runs host and generator calls through the retry policy, each
// attempt under its own deadline.
type remoteCaller struct {
	policy  retry.Policy
	timeout time.Duration
}

func newRemoteCaller(policy retry.Policy, timeout time.Duration) remoteCaller {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return remoteCaller{policy: policy, timeout: timeout}
}

func (c remoteCaller) do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := callValue(ctx, c, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func callValue[T any](ctx context.Context, c remoteCaller, name string, op func(ctx context.Context) (T, error)) (T, error) {
	return retry.DoValue(ctx, c.policy.Named(name), func(ctx context.Context) (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		v, err := op(callCtx)
		return v, classifyRemote(err)
	})
}

// classifyRemote marks errors that another attempt cannot fix.
func classifyRemote(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, githost.ErrNotFound),
		errors.Is(err, githost.ErrVersionConflict),
		errors.Is(err, githost.ErrRejected),
		errors.Is(err, githost.ErrPullRequestOpen),
		errors.Is(err, githost.ErrInvalidPath),
		errors.Is(err, context.Canceled):
		return retry.Permanent(err)
	}
	return err
}
