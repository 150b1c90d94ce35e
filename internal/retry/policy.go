// Package retry provides the bounded, fixed-backoff retry policy used around
// every interaction with the browser.
//
// The delay between attempts is fixed. A window never takes longer than
// attempts × (work + backoff).
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Default policy values.
const (
	DefaultAttempts = 3
	DefaultBackoff  = 5 * time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy retries an operation a fixed number of times with a fixed delay.
type Policy struct {
	// attempts is the total number of tries, including the first.
	attempts int

	// backoff is the delay between two attempts.
	backoff time.Duration

	// sleep waits between attempts; replaceable in tests.
	sleep SleepFunc

	// logger receives one record per failed attempt.
	logger *slog.Logger
}

// Option configures a Policy.
type Option func(*Policy)

// WithAttempts sets the total number of attempts. Values below 1 are ignored.
func WithAttempts(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.attempts = n
		}
	}
}

// WithBackoff sets the fixed delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(p *Policy) {
		if d >= 0 {
			p.backoff = d
		}
	}
}

// WithSleep replaces the wait between attempts.
func WithSleep(sleep SleepFunc) Option {
	return func(p *Policy) {
		p.sleep = sleep
	}
}

// WithLogger sets the logger for failed attempts.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) {
		p.logger = logger
	}
}

// New creates a Policy with 3 attempts and a 5s backoff unless overridden.
func New(opts ...Option) *Policy {
	p := &Policy{
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		sleep:    Sleep,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Attempts returns the total number of attempts the policy makes.
func (p *Policy) Attempts() int {
	return p.attempts
}

// Do runs op until it succeeds or every attempt is spent.
// The returned error is nil or an *OperationFailedError.
func (p *Policy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := Value(ctx, p, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Value runs op under p and returns its result.
// It is a function rather than a method because methods cannot be generic.
func Value[T any](ctx context.Context, p *Policy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				p.logger.Info("operation succeeded after retry",
					"operation", name,
					"attempt", attempt,
				)
			}
			return v, nil
		}
		lastErr = err

		p.logger.Warn("attempt failed",
			"operation", name,
			"attempt", attempt,
			"maxAttempts", p.attempts,
			"error", err,
		)

		if attempt == p.attempts {
			break
		}

		if err := p.sleep(ctx, p.backoff); err != nil {
			return zero, &OperationFailedError{Name: name, Attempts: attempt, Err: err}
		}
	}

	p.logger.Error("operation failed",
		"operation", name,
		"attempts", p.attempts,
		"error", lastErr,
	)

	return zero, &OperationFailedError{Name: name, Attempts: p.attempts, Err: lastErr}
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
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
