package journal

import (
	"sort"

	"stagecraft/internal/core"
)

// Timeline is the ordered sequence of samples observed for one actor.
type Timeline struct {
	Actor   string
	Samples []core.Sample
}

// BuildTimelines groups samples by actor, preserving recording order.
// Pure function, no side effects.
func BuildTimelines(samples []core.Sample) map[string]*Timeline {
	timelines := make(map[string]*Timeline)
	for _, s := range samples {
		t, ok := timelines[s.Actor]
		if !ok {
			t = &Timeline{Actor: s.Actor}
			timelines[s.Actor] = t
		}
		t.Samples = append(t.Samples, s)
	}
	return timelines
}

// Actors returns timeline keys in stable order.
func Actors(timelines map[string]*Timeline) []string {
	names := make([]string, 0, len(timelines))
	for name := range timelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Observed reports whether the actor was ever sampled in state s.
func (t *Timeline) Observed(s core.State) bool {
	for _, sample := range t.Samples {
		if sample.State == s {
			return true
		}
	}
	return false
}

// First returns the earliest sample in state s.
func (t *Timeline) First(s core.State) (core.Sample, bool) {
	for _, sample := range t.Samples {
		if sample.State == s {
			return sample, true
		}
	}
	return core.Sample{}, false
}

// Last returns the final sample, if any.
func (t *Timeline) Last() (core.Sample, bool) {
	if len(t.Samples) == 0 {
		return core.Sample{}, false
	}
	return t.Samples[len(t.Samples)-1], true
}

// States returns the distinct states in observation order, with
// consecutive repeats collapsed.
func (t *Timeline) States() []core.State {
	var out []core.State
	for _, s := range t.Samples {
		if len(out) == 0 || out[len(out)-1] != s.State {
			out = append(out, s.State)
		}
	}
	return out
}
