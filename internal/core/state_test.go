package core

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateNew:          "NEW",
		StateRunnable:     "RUNNABLE",
		StateBlocked:      "BLOCKED",
		StateWaiting:      "WAITING",
		StateTimedWaiting: "TIMED_WAITING",
		StateTerminated:   "TERMINATED",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, expected %q", state, got, want)
		}
	}
}

func TestParseState_RoundTrip(t *testing.T) {
	for _, s := range []State{StateNew, StateRunnable, StateBlocked, StateWaiting, StateTimedWaiting, StateTerminated} {
		parsed, err := ParseState(s.String())
		if err != nil {
			t.Fatalf("ParseState(%q): %v", s.String(), err)
		}
		if parsed != s {
			t.Errorf("ParseState(%q) = %v, expected %v", s.String(), parsed, s)
		}
	}
}

func TestParseState_Unknown(t *testing.T) {
	if _, err := ParseState("SLEEPING"); err == nil {
		t.Error("expected error for unknown state name")
	}
}

func TestState_Terminal(t *testing.T) {
	if !StateTerminated.Terminal() {
		t.Error("TERMINATED should be terminal")
	}
	if StateBlocked.Terminal() {
		t.Error("BLOCKED should not be terminal")
	}
}

func TestState_Suspended(t *testing.T) {
	suspended := []State{StateBlocked, StateWaiting, StateTimedWaiting}
	for _, s := range suspended {
		if !s.Suspended() {
			t.Errorf("%s should be suspended", s)
		}
	}
	for _, s := range []State{StateNew, StateRunnable, StateTerminated} {
		if s.Suspended() {
			t.Errorf("%s should not be suspended", s)
		}
	}
}

func TestState_UnmarshalYAML(t *testing.T) {
	var s State
	if err := yaml.Unmarshal([]byte("TIMED_WAITING"), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != StateTimedWaiting {
		t.Errorf("unmarshaled %v, expected TIMED_WAITING", s)
	}

	if err := yaml.Unmarshal([]byte("NAPPING"), &s); err == nil {
		t.Error("expected error for unknown state name")
	}
}

func TestNotOwnerError_Message(t *testing.T) {
	err := &NotOwnerError{Actor: "parker", Resource: "lockW", Op: "wait"}
	want := "parker: wait lockW: caller is not the owner"
	if err.Error() != want {
		t.Errorf("Error() = %q, expected %q", err.Error(), want)
	}

	var target *NotOwnerError
	if !errors.As(error(err), &target) {
		t.Error("errors.As should match *NotOwnerError")
	}
}
