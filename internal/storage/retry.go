package storage

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/crownfall/farm-coordinator/internal/observability"
)

// RetryPolicy bounds the re-execution of a transactional unit: a fresh wait
// schedule per call and a total elapsed-time budget. Once the budget is
// spent the last error is surfaced to the caller.
type RetryPolicy struct {
	Budget  time.Duration
	NewWait func() backoff.BackOff
}

var (
	// DefaultRetry covers plain reads and single-row writes where conflicts
	// are rare.
	DefaultRetry = RetryPolicy{
		Budget:  10 * time.Second,
		NewWait: func() backoff.BackOff { return randomWait{min: 100 * time.Millisecond, max: 300 * time.Millisecond} },
	}

	// AcquireRetry covers lobby and game binding, where contention is
	// expected and a slot may take tens of seconds to free up.
	AcquireRetry = RetryPolicy{
		Budget:  30 * time.Second,
		NewWait: func() backoff.BackOff { return randomWait{min: 100 * time.Millisecond, max: 300 * time.Millisecond} },
	}

	// FarmAcquireRetry staggers the first attempts at account acquisition so
	// a burst of clients spreads out before settling into a tight loop.
	FarmAcquireRetry = RetryPolicy{
		Budget: 30 * time.Second,
		NewWait: func() backoff.BackOff {
			return &staggeredWait{
				steps: []time.Duration{
					250 * time.Millisecond,
					250 * time.Millisecond,
					250 * time.Millisecond,
					250 * time.Millisecond,
					250 * time.Millisecond,
				},
				tail: 100 * time.Millisecond,
			}
		},
	}
)

// RunRetry executes the unit like Run, re-running the whole transaction on
// transient conflicts until the policy budget is exhausted. Each attempt is
// a fresh transaction, so no partial writes from a failed attempt survive.
// Non-transient errors propagate immediately.
func (s *Store) RunRetry(ctx context.Context, level Isolation, policy RetryPolicy, fn func(u *Unit) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := s.Run(ctx, level, fn)
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			observability.RecordTransactionRetry(ctx, level.String())
			s.logger.DebugContext(ctx, "retrying transactional unit",
				"isolation", level.String(), "attempt", attempt, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}
	wait := &budgetWait{inner: policy.NewWait(), budget: policy.Budget}
	return backoff.Retry(op, backoff.WithContext(wait, ctx))
}

// randomWait waits a uniformly random duration in [min, max) before every
// attempt, decorrelating concurrent callers racing for the same rows.
type randomWait struct {
	min, max time.Duration
}

func (w randomWait) NextBackOff() time.Duration {
	return w.min + time.Duration(rand.Int64N(int64(w.max-w.min)))
}

func (w randomWait) Reset() {}

// staggeredWait walks a fixed schedule, then repeats the tail interval.
type staggeredWait struct {
	steps []time.Duration
	tail  time.Duration
	next  int
}

func (w *staggeredWait) NextBackOff() time.Duration {
	if w.next < len(w.steps) {
		d := w.steps[w.next]
		w.next++
		return d
	}
	return w.tail
}

func (w *staggeredWait) Reset() { w.next = 0 }

// budgetWait stops the retry loop once the elapsed-time budget is spent.
type budgetWait struct {
	inner    backoff.BackOff
	budget   time.Duration
	deadline time.Time
}

func (b *budgetWait) NextBackOff() time.Duration {
	if b.deadline.IsZero() {
		b.deadline = time.Now().Add(b.budget)
	}
	if time.Now().After(b.deadline) {
		return backoff.Stop
	}
	return b.inner.NextBackOff()
}

func (b *budgetWait) Reset() {
	b.deadline = time.Now().Add(b.budget)
	b.inner.Reset()
}
