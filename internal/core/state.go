// Package core defines the fundamental types shared by the harness:
// lifecycle states, state samples, and the recorder sink.
package core

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// State is an actor's lifecycle state, mirroring the six documented
// thread states.
type State int32

const (
	StateNew State = iota
	StateRunnable
	StateBlocked
	StateWaiting
	StateTimedWaiting
	StateTerminated
)

var stateNames = map[State]string{
	StateNew:          "NEW",
	StateRunnable:     "RUNNABLE",
	StateBlocked:      "BLOCKED",
	StateWaiting:      "WAITING",
	StateTimedWaiting: "TIMED_WAITING",
	StateTerminated:   "TERMINATED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE(%d)", int32(s))
}

// Terminal reports whether s is absorbing: no transitions leave it.
func (s State) Terminal() bool {
	return s == StateTerminated
}

// Suspended reports whether s is one of the states an actor can only be
// observed in while parked inside a suspension point.
func (s State) Suspended() bool {
	return s == StateBlocked || s == StateWaiting || s == StateTimedWaiting
}

// ParseState converts the canonical upper-case name back to a State.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return StateNew, fmt.Errorf("unknown state %q", name)
}

// UnmarshalYAML lets scenario documents name target states directly.
func (s *State) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s State) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Sample is one timestamped observation of one actor's lifecycle state.
type Sample struct {
	Timestamp time.Time
	Tick      int
	Actor     string
	State     State
}

// Recorder is the sink the monitor emits samples to.
type Recorder interface {
	Record(Sample)
}

// NullRecorder discards all samples.
var NullRecorder Recorder = nullRecorder{}

type nullRecorder struct{}

func (nullRecorder) Record(Sample) {}
