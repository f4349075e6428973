package scenario

import (
	"fmt"
	"sync/atomic"

	"stagecraft/internal/actor"
	"stagecraft/internal/arena"
	"stagecraft/internal/core"
	"stagecraft/internal/journal"
)

// Cast is everything the director needs to run a scenario: the built
// arena, every handle in start order (deadlock pair last), and the wiring
// the timetable acts on.
type Cast struct {
	Arena        *arena.Arena
	Handles      []*actor.Handle
	Deadlocked   []*actor.Handle
	Held         *arena.Resource
	NotifySignal *arena.Signal
	NotifyAll    bool
	Gate         *atomic.Bool
	Expectations []journal.Expectation
}

// Build constructs the arena and the actor handles for a validated
// scenario. Handles are created in NEW; nothing runs yet.
func (s *Scenario) Build(clock core.Clock) (*Cast, error) {
	a := arena.New()
	for _, name := range s.Resources {
		if _, err := a.AddResource(name); err != nil {
			return nil, err
		}
	}
	for _, sig := range s.Signals {
		if _, err := a.AddSignal(sig.Name, sig.Resource); err != nil {
			return nil, err
		}
	}

	cast := &Cast{
		Arena:     a,
		Gate:      &atomic.Bool{},
		NotifyAll: s.Schedule.Notify.All,
	}
	if s.Schedule.Release.Resource != "" {
		cast.Held = a.Resource(s.Schedule.Release.Resource)
	}
	if s.Schedule.Notify.Signal != "" {
		cast.NotifySignal = a.Signal(s.Schedule.Notify.Signal)
	}

	for _, cfg := range s.Actors {
		body, err := s.behaviorFor(cfg, a, cast.Gate, clock)
		if err != nil {
			return nil, err
		}
		h := actor.NewHandle(actor.Script{
			Name:   cfg.Name,
			Target: cfg.Target,
			Body:   body,
		}, clock)
		cast.Handles = append(cast.Handles, h)
		cast.Expectations = append(cast.Expectations, journal.Expectation{
			Actor:      cfg.Name,
			Target:     cfg.Target,
			Terminates: true,
		})
	}

	if d := s.Deadlock; d != nil {
		lockA, lockB := a.Resource(d.LockA), a.Resource(d.LockB)
		pair := []actor.Script{
			{Name: d.First, Target: core.StateBlocked, Body: actor.CrossedAcquire(lockA, lockB, d.Hold)},
			{Name: d.Second, Target: core.StateBlocked, Body: actor.CrossedAcquire(lockB, lockA, d.Hold)},
		}
		for _, script := range pair {
			h := actor.NewHandle(script, clock)
			cast.Handles = append(cast.Handles, h)
			cast.Deadlocked = append(cast.Deadlocked, h)
			cast.Expectations = append(cast.Expectations, journal.Expectation{
				Actor:      script.Name,
				Target:     core.StateBlocked,
				Terminates: false,
			})
		}
	}
	return cast, nil
}

func (s *Scenario) behaviorFor(cfg ActorConfig, a *arena.Arena, gate *atomic.Bool, clock core.Clock) (actor.Behavior, error) {
	switch cfg.Behavior {
	case "immediate":
		return actor.Immediate(), nil
	case "sleep":
		return actor.FixedSleep(cfg.Duration), nil
	case "wait":
		return actor.IndefiniteWait(a.Resource(cfg.Resource), a.Signal(cfg.Signal), gate), nil
	case "acquire":
		return actor.ContendedAcquire(a.Resource(cfg.Resource), cfg.Hold), nil
	case "spin":
		return actor.BusyLoop(clock, cfg.Duration), nil
	default:
		return nil, fmt.Errorf("actor %q: unknown behavior %q", cfg.Name, cfg.Behavior)
	}
}
