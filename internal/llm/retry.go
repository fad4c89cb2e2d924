package llm

import (
	"context"
	"time"
)

// Policy is a bounded retry policy. Zero fields take the defaults of
// DefaultPolicy.
type Policy struct {
	MaxAttempts int
	// Backoff returns the wait after the given failed attempt (1-based).
	Backoff func(attempt int) time.Duration
	// Retryable decides whether an error is worth another attempt.
	Retryable func(error) bool
	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultPolicy makes 3 attempts, waits clamp(2s*2^(n-1), 4s, 30s) and
// retries only transient errors.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(2*time.Second, 4*time.Second, 30*time.Second),
		Retryable:   IsTransient,
	}
}

// ExponentialBackoff returns mult*2^(attempt-1) clamped to [min, max].
func ExponentialBackoff(mult, min, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		d := mult
		for i := 1; i < attempt && d < max; i++ {
			d *= 2
		}
		if d < min {
			d = min
		}
		if max > 0 && d > max {
			d = max
		}
		return d
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Backoff == nil {
		p.Backoff = def.Backoff
	}
	if p.Retryable == nil {
		p.Retryable = def.Retryable
	}
	return p
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempt
// budget is spent, or ctx is done. The last error is returned as is.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p = p.withDefaults()
	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		last = err
		if !p.Retryable(err) || attempt == p.MaxAttempts {
			return err
		}
		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
