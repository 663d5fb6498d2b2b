// Package guard provides the single readers/writer lock that serializes all
// access to the board store.
//
// Any number of readers may hold the guard together; a writer excludes
// everyone else. Waiting is FIFO, so a queued writer is not starved by a
// stream of new readers. Acquisition can be abandoned through the caller's
// context (or the configured timeout) while waiting, but once the guard is
// held the critical section runs under a non-cancellable context: a client
// that disconnects mid-write still gets its write applied.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"
)

// ErrNotAcquired is returned when the guard could not be taken before the
// context ended. Nothing was executed in that case.
var ErrNotAcquired = errors.New("guard not acquired")

// exclusive weight; every reader takes 1.
const maxReaders = 1 << 30

type mode string

const (
	modeRead  mode = "read"
	modeWrite mode = "write"
)

var (
	waitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mboard_guard_wait_seconds",
			Help:    "Time spent waiting for the storage guard",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"mode"},
	)

	holdSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mboard_guard_hold_seconds",
			Help:    "Time the storage guard was held",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"mode"},
	)

	acquireFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mboard_guard_acquire_failures_total",
			Help: "Guard acquisitions abandoned because the context ended",
		},
		[]string{"mode"},
	)
)

type Guard struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// New creates a guard. timeout bounds the wait for the lock; zero waits
// until the caller's context ends.
func New(timeout time.Duration) *Guard {
	return &Guard{
		sem:     semaphore.NewWeighted(maxReaders),
		timeout: timeout,
	}
}

// Read runs fn holding the guard in shared mode.
func (g *Guard) Read(ctx context.Context, fn func(ctx context.Context) error) error {
	return g.run(ctx, modeRead, 1, fn)
}

// Write runs fn holding the guard in exclusive mode.
func (g *Guard) Write(ctx context.Context, fn func(ctx context.Context) error) error {
	return g.run(ctx, modeWrite, maxReaders, fn)
}

func (g *Guard) run(ctx context.Context, m mode, weight int64, fn func(ctx context.Context) error) error {
	waitCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := g.sem.Acquire(waitCtx, weight); err != nil {
		acquireFailures.WithLabelValues(string(m)).Inc()
		return fmt.Errorf("%w (%s): %w", ErrNotAcquired, m, err)
	}
	acquired := time.Now()
	waitSeconds.WithLabelValues(string(m)).Observe(acquired.Sub(start).Seconds())

	defer func() {
		g.sem.Release(weight)
		holdSeconds.WithLabelValues(string(m)).Observe(time.Since(acquired).Seconds())
	}()

	return fn(context.WithoutCancel(ctx))
}
