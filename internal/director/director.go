// Package director owns the run: startup ordering, stagger delays,
// resource hand-off timing, the wake schedule, and the final join and
// report sequence.
package director

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"stagecraft/internal/arena"
	"stagecraft/internal/core"
	"stagecraft/internal/journal"
	"stagecraft/internal/monitor"
	"stagecraft/internal/scenario"
)

const (
	// joinTimeout bounds the wait for actors that are scripted to finish.
	joinTimeout = 10 * time.Second
	// watchTimeout bounds how long the director waits to observe the
	// crossed-lock pair parked in BLOCKED.
	watchTimeout = 5 * time.Second
)

// Director assembles the arena, cast, monitor, and timetable for one
// scenario and runs them to a report.
type Director struct {
	clock       core.Clock
	runID       string
	output      io.Writer
	joinTimeout time.Duration
}

func New(clock core.Clock) *Director {
	return &Director{
		clock:       clock,
		runID:       uuid.New().String(),
		output:      os.Stdout,
		joinTimeout: joinTimeout,
	}
}

func (d *Director) RunID() string { return d.runID }

// SetOutput redirects the monitor's state tables (tests use a buffer).
func (d *Director) SetOutput(w io.Writer) { d.output = w }

// Run executes the full scenario and returns the report. The two
// deadlocked actors are never joined: once both are observed BLOCKED the
// anomaly is logged as the expected outcome and their goroutines are left
// parked for process exit to reclaim.
func (d *Director) Run(ctx context.Context, sc *scenario.Scenario) (*journal.Report, error) {
	cast, err := sc.Build(d.clock)
	if err != nil {
		return nil, err
	}

	entry := log.WithField("run", d.runID)
	entry.Infof("scenario: %d actors, monitor %v x %d ticks",
		len(cast.Handles), sc.Monitor.Period, sc.Monitor.Ticks)

	steward := arena.NewSteward("director")
	if cast.Held != nil {
		if !cast.Held.TryAcquire(steward) {
			return nil, fmt.Errorf("pre-holding %s: already owned", cast.Held.Name())
		}
		entry.Infof("director holding %s", cast.Held.Name())
	}

	jr := journal.New()
	mon := monitor.New(jr, sc.Monitor.Period, d.clock)
	mon.SetOutput(d.output)

	tt := NewTimetable(d.clock)
	d.schedule(tt, sc, cast, steward, entry)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return mon.Run(gctx, cast.Handles, sc.Monitor.Ticks)
	})

	tt.Start()
	g.Go(func() error {
		return tt.Run(gctx)
	})

	d.startActors(runCtx, sc, cast, entry)
	d.joinFinishing(runCtx, cast, entry)
	d.watchDeadlock(runCtx, cast, entry)

	err = g.Wait()
	jr.Close()

	timelines := journal.BuildTimelines(jr.Samples())
	report := &journal.Report{
		RunID:     d.runID,
		Duration:  jr.Duration(),
		Timelines: timelines,
		Expected:  cast.Expectations,
		Checks:    journal.Check(timelines, cast.Expectations),
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return report, err
	}
	return report, nil
}

// schedule wires the scenario's timetable: the scripted release of the
// pre-held resource, and the gate-and-notify wake-up. Both act through the
// steward, which must own the bound resource to signal on it.
func (d *Director) schedule(tt *Timetable, sc *scenario.Scenario, cast *scenario.Cast, steward *arena.Steward, entry *log.Entry) {
	if cast.Held != nil {
		held := cast.Held
		tt.Add("release", sc.Schedule.Release.At, func() error {
			entry.Infof("director releasing %s", held.Name())
			return held.Release(steward)
		})
	}
	if cast.NotifySignal != nil {
		sig := cast.NotifySignal
		notifyAll := cast.NotifyAll
		tt.Add("notify", sc.Schedule.Notify.At, func() error {
			if err := sig.Resource().Acquire(steward); err != nil {
				return err
			}
			cast.Gate.Store(true)
			entry.Infof("director notifying %s", sig.Name())
			var err error
			if notifyAll {
				err = sig.NotifyAll(steward)
			} else {
				err = sig.NotifyOne(steward)
			}
			if relErr := sig.Resource().Release(steward); err == nil {
				err = relErr
			}
			return err
		})
	}
}

// startActors launches every handle in scenario order, a stagger apart.
// The staggers are the only mechanism establishing cross-actor ordering.
func (d *Director) startActors(ctx context.Context, sc *scenario.Scenario, cast *scenario.Cast, entry *log.Entry) {
	for i, h := range cast.Handles {
		if i > 0 {
			time.Sleep(sc.Stagger)
		}
		entry.WithField("actor", h.Name()).Infof("starting, target %s", h.Target())
		h.Start(ctx)
	}
}

// joinFinishing waits for every actor that is scripted to terminate.
// The deadline is absolute and shared by the whole join pass, so every
// straggler past it is interrupted, not just the first one found; the
// interrupt takes effect at the straggler's next suspension point and it
// still reaches TERMINATED.
func (d *Director) joinFinishing(ctx context.Context, cast *scenario.Cast, entry *log.Entry) {
	parked := make(map[string]bool, len(cast.Deadlocked))
	for _, h := range cast.Deadlocked {
		parked[h.Name()] = true
	}

	deadline := time.Now().Add(d.joinTimeout)
	for _, h := range cast.Handles {
		if parked[h.Name()] {
			continue
		}
		select {
		case <-h.Done():
		case <-ctx.Done():
			entry.WithField("actor", h.Name()).Warn("run cancelled, interrupting")
			h.Interrupt()
			<-h.Done()
		case <-time.After(time.Until(deadline)):
			entry.WithField("actor", h.Name()).Warn("join deadline hit, interrupting")
			h.Interrupt()
			<-h.Done()
		}
		if err := h.Err(); err != nil {
			entry.WithField("actor", h.Name()).WithError(err).Warn("terminated with error")
		} else {
			entry.WithField("actor", h.Name()).Info("terminated")
		}
	}
}

// watchDeadlock polls until both crossed-lock actors are observed BLOCKED.
// The deadlock is the scenario under test, so finding it is success; the
// pair is left parked.
func (d *Director) watchDeadlock(ctx context.Context, cast *scenario.Cast, entry *log.Entry) {
	if len(cast.Deadlocked) == 0 {
		return
	}
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	deadline := time.After(watchTimeout)

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			entry.Warn("deadlock pair not observed BLOCKED within watch window")
			return
		case <-ticker.C:
			allBlocked := true
			for _, h := range cast.Deadlocked {
				if h.State() != core.StateBlocked {
					allBlocked = false
					break
				}
			}
			if allBlocked {
				entry.Info("deadlock anomaly observed: crossed-lock pair permanently BLOCKED (expected)")
				return
			}
		}
	}
}
