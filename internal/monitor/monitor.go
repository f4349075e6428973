// Package monitor samples actor lifecycle states on a fixed cadence.
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"stagecraft/internal/actor"
	"stagecraft/internal/cadence"
	"stagecraft/internal/core"
)

// Monitor polls a fixed list of actor handles and emits one Sample per
// actor per tick to its Recorder. It never touches arena resources and
// never blocks on an actor: reading a handle's state is a lock-free
// observation.
type Monitor struct {
	recorder core.Recorder
	pacer    *cadence.Pacer
	clock    core.Clock
	output   io.Writer
	mu       sync.Mutex
}

func New(recorder core.Recorder, period time.Duration, clock core.Clock) *Monitor {
	return &Monitor{
		recorder: recorder,
		pacer:    cadence.NewPacer(period),
		clock:    clock,
		output:   os.Stdout,
	}
}

func (m *Monitor) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.output = w
}

// Sample reads every handle's current state once. Pure observation:
// bounded time, no mutation, regardless of what the actors are doing.
func (m *Monitor) Sample(handles []*actor.Handle, tick int) []core.Sample {
	now := m.clock.Now()
	samples := make([]core.Sample, 0, len(handles))
	for _, h := range handles {
		samples = append(samples, core.Sample{
			Timestamp: now,
			Tick:      tick,
			Actor:     h.Name(),
			State:     h.State(),
		})
	}
	return samples
}

// Run samples every period until totalTicks ticks have been emitted or the
// context is cancelled. Each tick records all samples and prints one state
// table line.
func (m *Monitor) Run(ctx context.Context, handles []*actor.Handle, totalTicks int) error {
	for tick := 1; tick <= totalTicks; tick++ {
		if err := m.pacer.Wait(ctx); err != nil {
			return err
		}
		samples := m.Sample(handles, tick)
		for _, s := range samples {
			m.recorder.Record(s)
		}
		m.printTable(tick, samples)
	}
	return nil
}

func (m *Monitor) printTable(tick int, samples []core.Sample) {
	var b strings.Builder
	for i, s := range samples {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%s=%s", s.Actor, s.State)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.output, "[%s] tick %2d | %s\n",
		m.clock.Now().Format("15:04:05.000"), tick, b.String())
}
