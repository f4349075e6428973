package arena

import (
	"fmt"
	"sync"
	"time"

	"stagecraft/internal/core"
)

// Signal is a wait/notify rendezvous bound to exactly one Resource,
// modeling monitor-style inter-thread signaling. Waiting is only legal
// while owning the bound resource; the wait releases it for the duration
// and reacquires it before returning.
//
// The implementation never wakes a waiter spuriously, but callers must
// still recheck their predicate in a loop, as with any monitor.
type Signal struct {
	name    string
	res     *Resource
	mu      sync.Mutex
	waiters []*sigWaiter
}

type sigWaiter struct {
	name string
	wake chan struct{}
}

func (s *Signal) Name() string { return s.name }

// Resource returns the resource the signal is bound to.
func (s *Signal) Resource() *Resource { return s.res }

// Waiting returns how many holders are parked on the signal.
func (s *Signal) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}

// Wait parks the caller until notified, or until timeout elapses when
// timeout > 0. The caller must own the bound resource; the wait releases
// it and reacquires it before returning. The holder is observed WAITING
// (TIMED_WAITING for a timed wait) while parked.
//
// On interruption the resource is not reacquired; the caller's behavior is
// expected to stop.
func (s *Signal) Wait(h Holder, timeout time.Duration) error {
	if err := s.res.requireOwner(h, "wait"); err != nil {
		return err
	}

	w := &sigWaiter{name: h.Name(), wake: make(chan struct{})}
	s.mu.Lock()
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()

	// Registered first, released second: a notification between the two
	// cannot be lost.
	if err := s.res.Release(h); err != nil {
		s.remove(w)
		return err
	}

	parked := core.StateWaiting
	if timeout > 0 {
		parked = core.StateTimedWaiting
	}
	h.SetState(parked)

	var timer *time.Timer
	var expiry <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		expiry = timer.C
		defer timer.Stop()
	}

	interrupted := false
	select {
	case <-w.wake:
	case <-expiry:
		s.remove(w)
	case <-h.Interrupted():
		s.remove(w)
		interrupted = true
	}
	h.SetState(core.StateRunnable)

	if interrupted {
		return fmt.Errorf("%s: wait on %s: %w", h.Name(), s.name, core.ErrInterrupted)
	}
	return s.res.Acquire(h)
}

// NotifyOne wakes the longest-parked waiter, if any. The caller must own
// the bound resource and keeps it; the woken waiter contends for it once
// the caller releases.
func (s *Signal) NotifyOne(h Holder) error {
	if err := s.res.requireOwner(h, "notify"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.waiters) == 0 {
		return nil
	}
	next := s.waiters[0]
	s.waiters = s.waiters[1:]
	close(next.wake)
	return nil
}

// NotifyAll wakes every parked waiter.
func (s *Signal) NotifyAll(h Holder) error {
	if err := s.res.requireOwner(h, "notify"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.waiters {
		close(w.wake)
	}
	s.waiters = nil
	return nil
}

// remove drops w from the waiter list. False means a notification already
// claimed it; the wakeup is consumed by this waiter either way.
func (s *Signal) remove(w *sigWaiter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, parked := range s.waiters {
		if parked == w {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return true
		}
	}
	return false
}
