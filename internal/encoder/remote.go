package encoder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/resilience"
	"golang.org/x/sync/semaphore"
)

// guard wraps every call to a remote embedding service in a per-attempt
// timeout and exponential-backoff retries behind a circuit breaker. A
// semaphore caps how many calls are in flight at once.
type guard struct {
	name     string
	timeout  time.Duration
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
	inFlight *semaphore.Weighted
}

func newGuard(name string, timeout time.Duration, maxRetries, maxInFlight int) *guard {
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	return &guard{
		name:     name,
		timeout:  timeout,
		inFlight: semaphore.NewWeighted(int64(maxInFlight)),
		retry: resilience.RetryConfig{
			MaxAttempts:  maxRetries,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
		breaker: resilience.NewCircuitBreaker(name, resilience.BreakerConfig{
			FailureThreshold: 5,
			Cooldown:         30 * time.Second,
		}),
	}
}

// encode runs fn under the guard. A timed-out attempt may still finish in
// the background, so results are handed over under a lock. Failures that are
// not the caller's own cancellation are reported as ErrEncoderUnavailable.
func (g *guard) encode(ctx context.Context, fn func(ctx context.Context) ([][]float32, error)) ([][]float32, error) {
	if err := g.inFlight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.inFlight.Release(1)

	var (
		mu  sync.Mutex
		out [][]float32
	)
	err := g.breaker.Execute(func() error {
		return resilience.Retry(ctx, g.name, g.retry, func() error {
			return resilience.WithTimeout(ctx, g.timeout, g.name, func(ctx context.Context) error {
				vecs, err := fn(ctx)
				if err != nil {
					return err
				}
				mu.Lock()
				out = vecs
				mu.Unlock()
				return nil
			})
		})
	})
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		if errors.Is(err, apperrors.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrEncoderUnavailable, err)
	}
	mu.Lock()
	defer mu.Unlock()
	return out, nil
}
