// Package scenario defines the YAML schema describing a harness run: the
// arena layout, the scripted actors, the deadlock pair, and the director's
// timetable. The default scenario is embedded; nothing is ever read from
// disk.
package scenario

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"stagecraft/internal/core"
)

// Scenario is the root document.
type Scenario struct {
	Stagger   time.Duration   `yaml:"stagger"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Resources []string        `yaml:"resources"`
	Signals   []SignalConfig  `yaml:"signals"`
	Actors    []ActorConfig   `yaml:"actors"`
	Deadlock  *DeadlockConfig `yaml:"deadlock,omitempty"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
}

// MonitorConfig sets the sampling cadence.
type MonitorConfig struct {
	Period time.Duration `yaml:"period"`
	Ticks  int           `yaml:"ticks"`
}

// SignalConfig declares a condition signal bound to a resource.
type SignalConfig struct {
	Name     string `yaml:"name"`
	Resource string `yaml:"resource"`
}

// ActorConfig declares one scripted actor. Behavior is one of "immediate",
// "sleep", "wait", "acquire", or "spin"; each kind reaches exactly one
// target state, and the declared target must match.
type ActorConfig struct {
	Name     string        `yaml:"name"`
	Target   core.State    `yaml:"target"`
	Behavior string        `yaml:"behavior"`
	Duration time.Duration `yaml:"duration,omitempty"`
	Resource string        `yaml:"resource,omitempty"`
	Signal   string        `yaml:"signal,omitempty"`
	Hold     time.Duration `yaml:"hold,omitempty"`
}

// DeadlockConfig declares the crossed-lock pair. Hold is how long each
// actor sits on its first lock before attempting the second; it must
// exceed the stagger, or the first actor would find the second lock still
// vacant and no circular wait would form.
type DeadlockConfig struct {
	First  string        `yaml:"first"`
	Second string        `yaml:"second"`
	LockA  string        `yaml:"lockA"`
	LockB  string        `yaml:"lockB"`
	Hold   time.Duration `yaml:"hold"`
}

// ScheduleConfig is the director's timetable, as offsets from the moment
// the first actor starts.
type ScheduleConfig struct {
	Release ReleaseConfig `yaml:"release"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// ReleaseConfig schedules when the director lets go of the resource it
// pre-holds to force the "acquire" actor into BLOCKED.
type ReleaseConfig struct {
	At       time.Duration `yaml:"at"`
	Resource string        `yaml:"resource"`
}

// NotifyConfig schedules the wake-up of the "wait" actor.
type NotifyConfig struct {
	At     time.Duration `yaml:"at"`
	Signal string        `yaml:"signal"`
	All    bool          `yaml:"all"`
}

// behaviorTargets maps each behavior kind to the single state it can be
// steadily observed in.
var behaviorTargets = map[string]core.State{
	"immediate": core.StateTerminated,
	"sleep":     core.StateTimedWaiting,
	"wait":      core.StateWaiting,
	"acquire":   core.StateBlocked,
	"spin":      core.StateRunnable,
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate rejects scenarios whose scripts could not reach their declared
// targets under the scripted timing.
func (s *Scenario) Validate() error {
	if s.Monitor.Period <= 0 {
		return fmt.Errorf("monitor.period must be positive")
	}
	if s.Monitor.Ticks <= 0 {
		return fmt.Errorf("monitor.ticks must be positive")
	}
	if s.Stagger <= 0 {
		return fmt.Errorf("stagger must be positive")
	}

	resources := make(map[string]bool, len(s.Resources))
	for _, name := range s.Resources {
		if resources[name] {
			return fmt.Errorf("duplicate resource %q", name)
		}
		resources[name] = true
	}

	signals := make(map[string]string, len(s.Signals))
	for _, sig := range s.Signals {
		if _, dup := signals[sig.Name]; dup {
			return fmt.Errorf("duplicate signal %q", sig.Name)
		}
		if !resources[sig.Resource] {
			return fmt.Errorf("signal %q: unknown resource %q", sig.Name, sig.Resource)
		}
		signals[sig.Name] = sig.Resource
	}

	names := make(map[string]bool)
	for _, a := range s.Actors {
		if names[a.Name] {
			return fmt.Errorf("duplicate actor %q", a.Name)
		}
		names[a.Name] = true

		target, known := behaviorTargets[a.Behavior]
		if !known {
			return fmt.Errorf("actor %q: unknown behavior %q", a.Name, a.Behavior)
		}
		if a.Target != target {
			return fmt.Errorf("actor %q: behavior %q reaches %s, not %s",
				a.Name, a.Behavior, target, a.Target)
		}

		switch a.Behavior {
		case "sleep", "spin":
			if a.Duration <= 0 {
				return fmt.Errorf("actor %q: %s requires a positive duration", a.Name, a.Behavior)
			}
		case "wait":
			if a.Resource == "" || a.Signal == "" {
				return fmt.Errorf("actor %q: wait requires a resource and a signal", a.Name)
			}
			if bound, ok := signals[a.Signal]; !ok {
				return fmt.Errorf("actor %q: unknown signal %q", a.Name, a.Signal)
			} else if bound != a.Resource {
				return fmt.Errorf("actor %q: signal %q is bound to %q, not %q",
					a.Name, a.Signal, bound, a.Resource)
			}
		case "acquire":
			if !resources[a.Resource] {
				return fmt.Errorf("actor %q: unknown resource %q", a.Name, a.Resource)
			}
			if a.Resource != s.Schedule.Release.Resource {
				return fmt.Errorf("actor %q: resource %q is never pre-held by the schedule",
					a.Name, a.Resource)
			}
		}
	}

	if d := s.Deadlock; d != nil {
		if d.First == "" || d.Second == "" || d.First == d.Second {
			return fmt.Errorf("deadlock: first and second must be distinct names")
		}
		if names[d.First] || names[d.Second] {
			return fmt.Errorf("deadlock: actor names must not collide with scripted actors")
		}
		if !resources[d.LockA] || !resources[d.LockB] || d.LockA == d.LockB {
			return fmt.Errorf("deadlock: needs two distinct registered locks")
		}
		if d.Hold <= s.Stagger {
			return fmt.Errorf("deadlock: hold (%v) must exceed stagger (%v) for the crossed wait to form",
				d.Hold, s.Stagger)
		}
	}

	if r := s.Schedule.Release; r.Resource != "" && !resources[r.Resource] {
		return fmt.Errorf("schedule.release: unknown resource %q", r.Resource)
	}
	if n := s.Schedule.Notify; n.Signal != "" {
		if _, ok := signals[n.Signal]; !ok {
			return fmt.Errorf("schedule.notify: unknown signal %q", n.Signal)
		}
	}
	return nil
}

// defaultDocument drives one full run covering every lifecycle state plus
// the crossed-lock pair. Offsets are generous enough for the 100ms cadence
// to catch every steady window.
const defaultDocument = `
stagger: 150ms
monitor:
  period: 100ms
  ticks: 40
resources: [lockA, lockB, lockX, lockW]
signals:
  - name: doorbell
    resource: lockW
actors:
  - name: finisher
    target: TERMINATED
    behavior: immediate
  - name: sleeper
    target: TIMED_WAITING
    behavior: sleep
    duration: 2s
  - name: parker
    target: WAITING
    behavior: wait
    resource: lockW
    signal: doorbell
  - name: claimant
    target: BLOCKED
    behavior: acquire
    resource: lockX
    hold: 100ms
  - name: spinner
    target: RUNNABLE
    behavior: spin
    duration: 1500ms
deadlock:
  first: method1
  second: method2
  lockA: lockA
  lockB: lockB
  hold: 500ms
schedule:
  release:
    at: 1s
    resource: lockX
  notify:
    at: 1200ms
    signal: doorbell
    all: true
`

// Default returns the embedded default scenario.
func Default() *Scenario {
	sc, err := Parse([]byte(defaultDocument))
	if err != nil {
		panic(fmt.Sprintf("default scenario invalid: %v", err))
	}
	return sc
}
