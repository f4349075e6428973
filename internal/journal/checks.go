package journal

import (
	"fmt"

	"stagecraft/internal/core"
)

// Expectation defines the pass criteria for one actor's timeline.
// Terminates is false only for the deadlock pair, which by design never
// finishes.
type Expectation struct {
	Actor      string
	Target     core.State
	Terminates bool
}

// CheckResult is the outcome of a single property check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// CheckResults contains all property check results for a run.
type CheckResults struct {
	Passed  bool          `json:"passed"`
	Results []CheckResult `json:"results"`
}

func (r *CheckResults) add(name string, passed bool, detail string) {
	if !passed {
		r.Passed = false
	}
	r.Results = append(r.Results, CheckResult{Name: name, Passed: passed, Detail: detail})
}

// Violations returns only the failed results.
func (r *CheckResults) Violations() []CheckResult {
	failed := make([]CheckResult, 0)
	for _, result := range r.Results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Check evaluates every expectation against the recorded timelines:
// the target state was observed; TERMINATED is final and monotonic for
// actors that finish; the deadlock pair ends BLOCKED and never finishes;
// NEW appears only as a leading prefix.
func Check(timelines map[string]*Timeline, expectations []Expectation) *CheckResults {
	results := &CheckResults{Passed: true, Results: make([]CheckResult, 0)}

	for _, want := range expectations {
		t, ok := timelines[want.Actor]
		if !ok || len(t.Samples) == 0 {
			results.add(want.Actor+".sampled", false, "no samples recorded")
			continue
		}
		results.checkTimeline(t, want)
	}
	return results
}

func (r *CheckResults) checkTimeline(t *Timeline, want Expectation) {
	r.add(t.Actor+".target_observed",
		t.Observed(want.Target),
		fmt.Sprintf("want %s in %v", want.Target, t.States()))

	r.add(t.Actor+".new_leading",
		newOnlyLeading(t),
		"NEW may only appear before the first start")

	if want.Terminates {
		last, _ := t.Last()
		r.add(t.Actor+".terminated",
			last.State == core.StateTerminated,
			fmt.Sprintf("final sample is %s", last.State))
		r.add(t.Actor+".terminal_monotonic",
			terminalMonotonic(t),
			"no state may follow TERMINATED")
		return
	}

	// Deadlocked by design: parked in BLOCKED and never finishing.
	last, _ := t.Last()
	detail := fmt.Sprintf("final sample is %s", last.State)
	r.add(t.Actor+".deadlocked",
		last.State == core.StateBlocked && !t.Observed(core.StateTerminated),
		detail)
}

func newOnlyLeading(t *Timeline) bool {
	started := false
	for _, s := range t.Samples {
		if s.State != core.StateNew {
			started = true
			continue
		}
		if started {
			return false
		}
	}
	return true
}

func terminalMonotonic(t *Timeline) bool {
	terminated := false
	for _, s := range t.Samples {
		if terminated && s.State != core.StateTerminated {
			return false
		}
		if s.State == core.StateTerminated {
			terminated = true
		}
	}
	return true
}
