// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultMaxAttempts  = 5
	defaultInitialDelay = time.Second
)

// Producer performs one attempt of a backend call.
type Producer func(ctx context.Context) (string, error)

// Policy controls retry behaviour. Zero fields take the defaults:
// 5 attempts, 1 s initial delay.
type Policy struct {
	// MaxAttempts is the total number of producer invocations allowed.
	MaxAttempts int

	// InitialDelay is the wait after the first failure. It doubles after
	// every further failure.
	InitialDelay time.Duration

	// OnRetry, when set, is called after a failed attempt that will be
	// retried, with the delay about to be slept.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = defaultInitialDelay
	}
	return p
}

// RetryError is returned when every attempt failed. It unwraps to the
// last producer error.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// sleep waits for d or until ctx is done. Tests replace it to record
// delays without real waits.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry invokes produce until it succeeds or p.MaxAttempts attempts have
// failed. The delay between attempts starts at p.InitialDelay and doubles
// each time; there is no wait after the final attempt. Context
// cancellation during a wait returns the context error.
func Retry(ctx context.Context, p Policy, produce Producer) (string, error) {
	p = p.withDefaults()

	delay := p.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		out, err := produce(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return "", &RetryError{Attempts: attempt, Err: fmt.Errorf("%w (last error: %v)", err, lastErr)}
		}
		delay *= 2
	}
	return "", &RetryError{Attempts: p.MaxAttempts, Err: lastErr}
}
