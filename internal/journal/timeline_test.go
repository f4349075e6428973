package journal

import (
	"testing"

	"stagecraft/internal/core"
)

func samplesFor(actor string, states ...core.State) []core.Sample {
	out := make([]core.Sample, len(states))
	for i, s := range states {
		out[i] = core.Sample{Actor: actor, Tick: i + 1, State: s}
	}
	return out
}

func TestBuildTimelines_GroupsByActor(t *testing.T) {
	samples := []core.Sample{
		{Actor: "a", Tick: 1, State: core.StateNew},
		{Actor: "b", Tick: 1, State: core.StateRunnable},
		{Actor: "a", Tick: 2, State: core.StateRunnable},
	}
	timelines := BuildTimelines(samples)

	if len(timelines) != 2 {
		t.Fatalf("expected 2 timelines, got %d", len(timelines))
	}
	if len(timelines["a"].Samples) != 2 {
		t.Errorf("expected 2 samples for a, got %d", len(timelines["a"].Samples))
	}
	if timelines["a"].Samples[0].State != core.StateNew {
		t.Error("timeline must preserve recording order")
	}
}

func TestTimeline_Observed(t *testing.T) {
	tl := BuildTimelines(samplesFor("a", core.StateNew, core.StateTimedWaiting, core.StateTerminated))["a"]

	if !tl.Observed(core.StateTimedWaiting) {
		t.Error("TIMED_WAITING was sampled, Observed should be true")
	}
	if tl.Observed(core.StateBlocked) {
		t.Error("BLOCKED was never sampled")
	}
}

func TestTimeline_FirstAndLast(t *testing.T) {
	tl := BuildTimelines(samplesFor("a", core.StateRunnable, core.StateBlocked, core.StateBlocked, core.StateTerminated))["a"]

	first, ok := tl.First(core.StateBlocked)
	if !ok || first.Tick != 2 {
		t.Errorf("First(BLOCKED) = tick %d, expected 2", first.Tick)
	}
	last, ok := tl.Last()
	if !ok || last.State != core.StateTerminated {
		t.Errorf("Last() = %v, expected TERMINATED", last.State)
	}
}

func TestTimeline_StatesCollapsesRepeats(t *testing.T) {
	tl := BuildTimelines(samplesFor("a",
		core.StateNew, core.StateNew, core.StateRunnable,
		core.StateBlocked, core.StateBlocked, core.StateTerminated))["a"]

	states := tl.States()
	want := []core.State{core.StateNew, core.StateRunnable, core.StateBlocked, core.StateTerminated}
	if len(states) != len(want) {
		t.Fatalf("States() = %v, expected %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("States()[%d] = %v, expected %v", i, states[i], want[i])
		}
	}
}

func TestActors_StableOrder(t *testing.T) {
	timelines := BuildTimelines([]core.Sample{
		{Actor: "zed", State: core.StateRunnable},
		{Actor: "abe", State: core.StateRunnable},
	})
	names := Actors(timelines)
	if len(names) != 2 || names[0] != "abe" || names[1] != "zed" {
		t.Errorf("Actors() = %v, expected sorted order", names)
	}
}
