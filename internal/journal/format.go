package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"stagecraft/internal/core"
)

// Report is everything the run produced: the recorded timelines, the
// property check outcomes, and run metadata.
type Report struct {
	RunID     string
	Duration  time.Duration
	Timelines map[string]*Timeline
	Expected  []Expectation
	Checks    *CheckResults
}

// FormatText writes the final report in human-readable form.
func FormatText(w io.Writer, r *Report) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Stagecraft - Run Report")
	fmt.Fprintln(w, "=======================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Run:      %s\n", r.RunID)
	fmt.Fprintf(w, "Duration: %v\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Samples:  %d\n", totalSamples(r.Timelines))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Observed timelines:")

	targets := make(map[string]core.State, len(r.Expected))
	for _, e := range r.Expected {
		targets[e.Actor] = e.Target
	}
	for _, name := range Actors(r.Timelines) {
		t := r.Timelines[name]
		fmt.Fprintf(w, "  %-10s target=%-13s %s\n",
			name, targets[name], formatStates(t.States()))
	}

	if r.Checks != nil && len(r.Checks.Results) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Checks:")
		for _, result := range r.Checks.Results {
			symbol := "✓"
			if !result.Passed {
				symbol = "✗"
			}
			fmt.Fprintf(w, "  %s %s (%s)\n", symbol, result.Name, result.Detail)
		}
	}
}

// FormatJSON writes the final report in JSON form.
func FormatJSON(w io.Writer, r *Report) {
	type jsonActor struct {
		Target   string   `json:"target"`
		Observed []string `json:"observed"`
		Samples  int      `json:"samples"`
	}
	output := struct {
		RunID    string               `json:"runId"`
		Duration string               `json:"duration"`
		Samples  int                  `json:"samples"`
		Actors   map[string]jsonActor `json:"actors"`
		Checks   *CheckResults        `json:"checks,omitempty"`
	}{
		RunID:    r.RunID,
		Duration: r.Duration.Round(time.Millisecond).String(),
		Samples:  totalSamples(r.Timelines),
		Actors:   make(map[string]jsonActor),
		Checks:   r.Checks,
	}

	targets := make(map[string]core.State, len(r.Expected))
	for _, e := range r.Expected {
		targets[e.Actor] = e.Target
	}
	for name, t := range r.Timelines {
		states := t.States()
		observed := make([]string, len(states))
		for i, s := range states {
			observed[i] = s.String()
		}
		output.Actors[name] = jsonActor{
			Target:   targets[name].String(),
			Observed: observed,
			Samples:  len(t.Samples),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output) // stdout errors are unrecoverable
}

func formatStates(states []core.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}

func totalSamples(timelines map[string]*Timeline) int {
	total := 0
	for _, t := range timelines {
		total += len(t.Samples)
	}
	return total
}
