// Package actor runs scripted concurrent units of work whose lifecycle
// state is always truthfully observable.
package actor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"stagecraft/internal/core"
)

// Behavior is the body of a script. It runs on the actor's own goroutine;
// any error or panic is caught at the run boundary and recorded on the
// handle.
type Behavior func(ctx context.Context, h *Handle) error

// Script is an immutable description of one actor's intended behavior.
// Target is the lifecycle state the actor is scripted to be observed in
// during its steady window.
type Script struct {
	Name   string
	Target core.State
	Body   Behavior
}

// Handle is the live counterpart of a started Script. State is owned by
// the handle's own machinery; user code only observes it.
type Handle struct {
	script Script
	clock  core.Clock
	state  atomic.Int32

	mu         sync.Mutex
	startedAt  time.Time
	finishedAt time.Time
	err        error

	interrupt     chan struct{}
	interruptOnce sync.Once
	done          chan struct{}
}

// NewHandle creates a handle in NEW. The actor does not run until Start.
func NewHandle(script Script, clock core.Clock) *Handle {
	h := &Handle{
		script:    script,
		clock:     clock,
		interrupt: make(chan struct{}),
		done:      make(chan struct{}),
	}
	h.state.Store(int32(core.StateNew))
	return h
}

func (h *Handle) Name() string       { return h.script.Name }
func (h *Handle) Target() core.State { return h.script.Target }

// State is a non-blocking, lock-free observation of the current lifecycle
// state. Valid at any point in the handle's life, including after an
// abnormal termination.
func (h *Handle) State() core.State {
	return core.State(h.state.Load())
}

// SetState transitions the observable state. TERMINATED is absorbing and
// is never overwritten; it is set only by the run boundary.
func (h *Handle) SetState(s core.State) {
	for {
		cur := h.state.Load()
		if core.State(cur).Terminal() {
			return
		}
		if h.state.CompareAndSwap(cur, int32(s)) {
			return
		}
	}
}

// Interrupted is closed when the actor is interrupted. Suspension points
// select on it.
func (h *Handle) Interrupted() <-chan struct{} { return h.interrupt }

// Interrupt asks the actor to stop at its next suspension point.
// Idempotent.
func (h *Handle) Interrupt() {
	h.interruptOnce.Do(func() { close(h.interrupt) })
}

// Done is closed once the actor reaches TERMINATED.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the recorded behavior failure, if any. Only meaningful once
// Done is closed.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) StartedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.startedAt
}

func (h *Handle) FinishedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.finishedAt
}

// Start launches the actor goroutine. The handle leaves NEW exactly once;
// starting a started actor is a no-op.
func (h *Handle) Start(ctx context.Context) {
	if !h.state.CompareAndSwap(int32(core.StateNew), int32(core.StateRunnable)) {
		return
	}
	h.mu.Lock()
	h.startedAt = h.clock.Now()
	h.mu.Unlock()

	go h.run(ctx)
}

func (h *Handle) run(ctx context.Context) {
	defer h.finish()
	if err := h.script.Body(ctx, h); err != nil {
		h.record(err)
		log.WithField("actor", h.script.Name).WithError(err).Warn("behavior stopped with error")
	}
}

// finish is the actor boundary: it recovers panics, stamps the terminal
// time, and makes TERMINATED observable. Termination is guaranteed
// regardless of how the body ended.
func (h *Handle) finish() {
	if r := recover(); r != nil {
		h.record(fmt.Errorf("panic: %v", r))
		log.WithField("actor", h.script.Name).Errorf("behavior panicked: %v", r)
	}
	h.mu.Lock()
	h.finishedAt = h.clock.Now()
	h.mu.Unlock()
	h.state.Store(int32(core.StateTerminated))
	close(h.done)
}

func (h *Handle) record(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err == nil {
		h.err = err
	}
}

// Sleep parks the actor in TIMED_WAITING for d. Interruption (or context
// cancellation) ends the sleep early with core.ErrInterrupted.
func (h *Handle) Sleep(ctx context.Context, d time.Duration) error {
	h.SetState(core.StateTimedWaiting)
	defer h.SetState(core.StateRunnable)

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-h.interrupt:
		return fmt.Errorf("%s: sleep: %w", h.script.Name, core.ErrInterrupted)
	case <-ctx.Done():
		return fmt.Errorf("%s: sleep: %w", h.script.Name, core.ErrInterrupted)
	}
}
