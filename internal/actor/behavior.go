package actor

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"stagecraft/internal/arena"
	"stagecraft/internal/core"
)

// The canned behaviors, one per observable target state, plus the
// crossed-lock behavior used by the deadlock pair.

// Immediate returns at once; the actor is only ever observed TERMINATED
// (or NEW, before its start).
func Immediate() Behavior {
	return func(ctx context.Context, h *Handle) error {
		return nil
	}
}

// FixedSleep parks the actor in TIMED_WAITING for the full duration.
func FixedSleep(d time.Duration) Behavior {
	return func(ctx context.Context, h *Handle) error {
		log.WithField("actor", h.Name()).Infof("sleeping %v", d)
		return h.Sleep(ctx, d)
	}
}

// IndefiniteWait acquires res, then parks on sig with no timeout until the
// gate opens. The gate is rechecked in a loop after every wakeup.
func IndefiniteWait(res *arena.Resource, sig *arena.Signal, gate *atomic.Bool) Behavior {
	return func(ctx context.Context, h *Handle) error {
		entry := log.WithField("actor", h.Name())
		entry.Infof("acquiring %s to wait on %s", res.Name(), sig.Name())
		if err := res.Acquire(h); err != nil {
			return err
		}
		for !gate.Load() {
			if err := sig.Wait(h, 0); err != nil {
				return err
			}
		}
		entry.Infof("gate opened, releasing %s", res.Name())
		return res.Release(h)
	}
}

// ContendedAcquire attempts a resource the director is deliberately
// holding; the actor is observed BLOCKED until the director lets go, then
// holds it briefly itself.
func ContendedAcquire(res *arena.Resource, hold time.Duration) Behavior {
	return func(ctx context.Context, h *Handle) error {
		entry := log.WithField("actor", h.Name())
		entry.Infof("attempting %s", res.Name())
		if err := res.Acquire(h); err != nil {
			return err
		}
		entry.Infof("acquired %s", res.Name())
		if hold > 0 {
			if err := h.Sleep(ctx, hold); err != nil {
				_ = res.Release(h)
				return err
			}
		}
		return res.Release(h)
	}
}

// BusyLoop spins on trivial work until the deadline, never voluntarily
// suspending: a sustained RUNNABLE window.
func BusyLoop(clock core.Clock, d time.Duration) Behavior {
	return func(ctx context.Context, h *Handle) error {
		deadline := clock.Now().Add(d)
		var spins uint64
		for clock.Now().Before(deadline) {
			spins++
			if spins%4096 != 0 {
				continue
			}
			select {
			case <-h.Interrupted():
				return nil
			case <-ctx.Done():
				return nil
			default:
			}
		}
		log.WithField("actor", h.Name()).Infof("spun %d iterations", spins)
		return nil
	}
}

// CrossedAcquire takes first, holds it briefly, then attempts second.
// Scripted twice with the resources reversed, and staggered, it produces
// the intentional circular wait: both actors permanently BLOCKED.
func CrossedAcquire(first, second *arena.Resource, hold time.Duration) Behavior {
	return func(ctx context.Context, h *Handle) error {
		entry := log.WithField("actor", h.Name())
		entry.Infof("acquiring %s", first.Name())
		if err := first.Acquire(h); err != nil {
			return err
		}
		entry.Infof("holding %s, then attempting %s", first.Name(), second.Name())
		if hold > 0 {
			if err := h.Sleep(ctx, hold); err != nil {
				_ = first.Release(h)
				return err
			}
		}
		if err := second.Acquire(h); err != nil {
			_ = first.Release(h)
			return err
		}
		// Unreached in the deadlock scenario.
		if err := second.Release(h); err != nil {
			return err
		}
		return first.Release(h)
	}
}
