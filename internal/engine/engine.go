// Package engine runs the background schedule evaluation loop.
//
// On a fixed timer the engine reads the full schedule collection, activates
// due schedules (unless blocked by a time-range conflict), applies the
// referenced preset to menu item availability, re-arms recurring schedules,
// and sweeps active schedules past their end time. All reads and writes go
// through the store, so engine mutations obey the same per-collection
// ordering as HTTP callers.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"menuboard/internal/store"
)

// DefaultInterval is the tick period. Sub-minute precision is explicitly
// out of scope; schedules take effect on the next minute boundary.
const DefaultInterval = time.Minute

// Engine evaluates all schedules once per tick.
type Engine struct {
	store    *store.Store
	log      *slog.Logger
	clock    Clock
	interval time.Duration

	started atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval overrides the tick period. Used by tests; production runs
// at DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithClock substitutes the time source. Used by tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine over the given store.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		log:      slog.Default(),
		clock:    SystemClock{},
		interval: DefaultInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the tick loop in a background goroutine. The first
// evaluation happens one full interval after Start, never immediately, so
// ticks align to the interval boundary. Start is idempotent-once: calls
// after the first are no-ops.
//
// The loop runs until ctx is cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) {
	if !e.started.CompareAndSwap(false, true) {
		e.log.Warn("engine already started, ignoring Start")
		return
	}

	e.log.Info("starting schedule engine", "interval", e.interval)

	go func() {
		defer close(e.done)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				e.log.Info("schedule engine stopping", "reason", ctx.Err())
				return
			case <-e.stop:
				e.log.Info("schedule engine stopping")
				return
			case <-ticker.C:
				if err := e.Tick(); err != nil {
					// Per-schedule failures are recorded on the schedules
					// themselves; only an unrecoverable store failure
					// reaches this point.
					e.log.Error("tick failed", "error", err)
				}
			}
		}
	}()
}

// Stop terminates the tick loop and waits for the in-flight tick, if any,
// to finish.
func (e *Engine) Stop() {
	if !e.started.Load() {
		return
	}
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
	<-e.done
}
