// Package retry implements backoff for transient delivery failures.
package retry

import (
	"context"
	"fmt"
	"time"
)

// BackoffMode selects how delays grow between attempts.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// Policy holds retry settings. The zero Policy makes a single attempt.
type Policy struct {
	Mode       BackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int // retries after the first failure
}

// DefaultPolicy is linear, 500ms initial, 5s cap, 3 retries.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffLinear, Initial: 500 * time.Millisecond, Max: 5 * time.Second, MaxRetries: 3}
}

// NewPolicy builds a policy; zero or unknown values fall back to defaults.
func NewPolicy(mode BackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	switch mode {
	case BackoffFixed, BackoffLinear, BackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the wait before retry number n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case BackoffFixed:
		return p.Initial
	case BackoffExponential:
		d = p.Initial * (1 << (n - 1))
	default:
		d = time.Duration(n) * p.Initial
	}
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

// Validate reports settings that cannot be applied.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Do calls fn until it succeeds, the retries are used up or ctx is done.
// The last error of fn is returned.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= p.MaxRetries {
			return err
		}
		timer := time.NewTimer(p.Delay(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
