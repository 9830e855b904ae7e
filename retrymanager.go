package juriscraper

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// ------------------------------------------------------------------------

// RetryManager wraps a Manager with exponential backoff over transient
// failures.
type RetryManager struct {
	inner  *Manager
	policy RetryPolicy
}

// NewRetryManager returns a pointer to a newly created RetryManager.
func NewRetryManager(inner *Manager, policy RetryPolicy) *RetryManager {
	return &RetryManager{inner: inner, policy: policy}
}

// ------------------------------------------------------------------------

// Execute retries inner.Execute on transient failure with exponential
// backoff (base_delay * 2^retry_count), enforcing a cumulative
// max_backoff_time budget. It returns the transient
// failure unresolved once the budget is crossed.
func (m *RetryManager) Execute(ctx context.Context, req *Request) (*Response, error) {
	var (
		retryCount   int
		cumulative   time.Duration
		lastErr      error
	)

	for {
		resp, err := m.inner.Execute(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsTransient(err) {
			return nil, err
		}

		lastErr = err

		delay := m.backoffDelay(retryCount)
		if cumulative+delay > m.policy.MaxBackoff {
			return nil, lastErr
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		cumulative += delay
		retryCount++
	}
}

// ------------------------------------------------------------------------

func (m *RetryManager) backoffDelay(retryCount int) time.Duration {
	base := float64(m.policy.BaseDelay) * math.Pow(2, float64(retryCount))

	if m.policy.Jitter > 0 {
		jitter := base * m.policy.Jitter
		base += jitter*2*rand.Float64() - jitter
	}

	if base < 0 {
		base = 0
	}

	return time.Duration(base)
}
