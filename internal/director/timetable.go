package director

import (
	"context"
	"time"

	"stagecraft/internal/core"
)

const tickInterval = 25 * time.Millisecond

// Timetable fires named actions at fixed offsets from a start instant.
// The director uses it for the scripted resource release and the wake
// signal; stagger delays aside, it is the only timing authority in a run.
type Timetable struct {
	clock     core.Clock
	startTime time.Time
	entries   []*entry
}

type entry struct {
	name  string
	at    time.Duration
	fire  func() error
	fired bool
}

func NewTimetable(clock core.Clock) *Timetable {
	return &Timetable{clock: clock}
}

// Add schedules fire at offset at. Must be called before Start.
func (t *Timetable) Add(name string, at time.Duration, fire func() error) {
	t.entries = append(t.entries, &entry{name: name, at: at, fire: fire})
}

// Start fixes the instant offsets are measured from.
func (t *Timetable) Start() {
	t.startTime = t.clock.Now()
}

// Elapsed returns time since Start.
func (t *Timetable) Elapsed() time.Duration {
	return t.clock.Since(t.startTime)
}

// Complete reports whether every entry has fired.
func (t *Timetable) Complete() bool {
	for _, e := range t.entries {
		if !e.fired {
			return false
		}
	}
	return true
}

// Run polls until every due entry has fired or the context is cancelled.
// Entries fire in Add order once their offset has elapsed; a firing error
// aborts the run.
func (t *Timetable) Run(ctx context.Context) error {
	if t.Complete() {
		return nil
	}
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			elapsed := t.Elapsed()
			for _, e := range t.entries {
				if e.fired || elapsed < e.at {
					continue
				}
				e.fired = true
				if err := e.fire(); err != nil {
					return err
				}
			}
			if t.Complete() {
				return nil
			}
		}
	}
}
