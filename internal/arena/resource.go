package arena

import (
	"errors"
	"fmt"
	"sync"

	"stagecraft/internal/core"
)

// ErrReentrant is returned when a holder acquires a resource it already
// owns. Resources are deliberately non-reentrant; the only deadlock this
// harness produces is the scripted one.
var ErrReentrant = errors.New("resource is not reentrant")

// Resource is a mutual-exclusion primitive with exactly one owner at a time
// or none. Contenders queue in arrival order and receive ownership directly
// from the releaser.
type Resource struct {
	name  string
	mu    sync.Mutex
	owner string
	queue []*waiter
}

type waiter struct {
	name  string
	grant chan struct{}
}

func (r *Resource) Name() string { return r.name }

// Owner returns the current owner's name, or "" when vacant. Observational
// only; by the time the caller looks at it, it may be stale.
func (r *Resource) Owner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

// Blocked returns how many holders are queued on the resource.
func (r *Resource) Blocked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// TryAcquire takes ownership if the resource is vacant and nobody is
// queued. It never suspends the caller.
func (r *Resource) TryAcquire(h Holder) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner != "" || len(r.queue) > 0 {
		return false
	}
	r.owner = h.Name()
	return true
}

// Acquire blocks the caller until it becomes the sole owner. While queued
// the holder is observed BLOCKED. Interruption abandons the attempt and
// returns core.ErrInterrupted.
func (r *Resource) Acquire(h Holder) error {
	r.mu.Lock()
	if r.owner == h.Name() {
		r.mu.Unlock()
		return fmt.Errorf("%s: acquire %s: %w", h.Name(), r.name, ErrReentrant)
	}
	if r.owner == "" && len(r.queue) == 0 {
		r.owner = h.Name()
		r.mu.Unlock()
		return nil
	}
	w := &waiter{name: h.Name(), grant: make(chan struct{})}
	r.queue = append(r.queue, w)
	r.mu.Unlock()

	h.SetState(core.StateBlocked)
	defer h.SetState(core.StateRunnable)

	select {
	case <-w.grant:
		return nil
	case <-h.Interrupted():
		if !r.withdraw(w) {
			// Ownership was handed over in the same instant; give it
			// straight back so the queue keeps moving.
			r.mu.Lock()
			r.handoffLocked()
			r.mu.Unlock()
		}
		return fmt.Errorf("%s: acquire %s: %w", h.Name(), r.name, core.ErrInterrupted)
	}
}

// Release vacates ownership and hands the resource to the head of the
// queue, if any. Callers that are not the owner get a NotOwnerError.
func (r *Resource) Release(h Holder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner != h.Name() {
		return &core.NotOwnerError{Actor: h.Name(), Resource: r.name, Op: "release"}
	}
	r.handoffLocked()
	return nil
}

// handoffLocked vacates the resource and grants it to the next queued
// waiter. Caller must hold r.mu.
func (r *Resource) handoffLocked() {
	r.owner = ""
	if len(r.queue) == 0 {
		return
	}
	next := r.queue[0]
	r.queue = r.queue[1:]
	r.owner = next.name
	close(next.grant)
}

// withdraw removes w from the queue. Returns false if w was already granted
// ownership, in which case the caller must release.
func (r *Resource) withdraw(w *waiter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, queued := range r.queue {
		if queued == w {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return true
		}
	}
	return false
}

// requireOwner verifies h currently owns the resource.
func (r *Resource) requireOwner(h Holder, op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner != h.Name() {
		return &core.NotOwnerError{Actor: h.Name(), Resource: r.name, Op: op}
	}
	return nil
}
