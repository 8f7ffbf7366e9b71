package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted reports that every attempt completed without a terminal outcome.
var ErrExhausted = errors.New("poll attempts exhausted")

// Config bounds a polling loop.
type Config struct {
	Interval    time.Duration
	MaxAttempts int
}

// Check inspects the remote state once. attempt is 1-based.
type Check[T any] func(ctx context.Context, attempt int) (value T, done bool, err error)

// Sleeper waits between checks; it must return early when ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type options struct {
	sleep   Sleeper
	observe func(attempt int, done bool, err error)
}

// Option customizes a polling loop.
type Option func(*options)

// WithSleeper overrides how waits between checks are performed (useful for tests).
func WithSleeper(sleep Sleeper) Option {
	return func(o *options) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithObserver registers a callback invoked after every check.
func WithObserver(observe func(attempt int, done bool, err error)) Option {
	return func(o *options) {
		o.observe = observe
	}
}

// Until checks until done, an error, or cfg.MaxAttempts checks. It returns
// the final value and the number of checks issued.
func Until[T any](ctx context.Context, cfg Config, check Check[T], opts ...Option) (T, int, error) {
	var zero T
	if check == nil {
		return zero, 0, errors.New("poll: check required")
	}
	if cfg.MaxAttempts <= 0 {
		return zero, 0, fmt.Errorf("poll: max attempts must be positive, got %d", cfg.MaxAttempts)
	}
	o := options{sleep: sleepContext}
	for _, opt := range opts {
		opt(&o)
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, err
		}
		value, done, err := check(ctx, attempt)
		if o.observe != nil {
			o.observe(attempt, done, err)
		}
		if err != nil {
			return value, attempt, err
		}
		if done {
			return value, attempt, nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if err := o.sleep(ctx, cfg.Interval); err != nil {
			return zero, attempt, err
		}
	}
	return zero, cfg.MaxAttempts, fmt.Errorf("%w after %d attempts", ErrExhausted, cfg.MaxAttempts)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
