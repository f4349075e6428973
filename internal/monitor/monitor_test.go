package monitor

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stagecraft/internal/actor"
	"stagecraft/internal/core"
	"stagecraft/internal/journal"
)

func TestMonitor_SampleReadsEveryHandle(t *testing.T) {
	clock := core.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	m := New(core.NullRecorder, 10*time.Millisecond, clock)

	handles := []*actor.Handle{
		actor.NewHandle(actor.Script{Name: "a", Target: core.StateTerminated, Body: actor.Immediate()}, clock),
		actor.NewHandle(actor.Script{Name: "b", Target: core.StateTerminated, Body: actor.Immediate()}, clock),
	}

	samples := m.Sample(handles, 7)
	require.Len(t, samples, 2)
	for i, s := range samples {
		require.Equal(t, handles[i].Name(), s.Actor)
		require.Equal(t, core.StateNew, s.State, "unstarted handles are NEW")
		require.Equal(t, 7, s.Tick)
		require.Equal(t, clock.Now(), s.Timestamp)
	}
}

func TestMonitor_RunRecordsEveryTick(t *testing.T) {
	jr := journal.New()
	m := New(jr, 10*time.Millisecond, core.RealClock{})
	var out bytes.Buffer
	m.SetOutput(&out)

	h := actor.NewHandle(actor.Script{Name: "sleeper", Target: core.StateTimedWaiting,
		Body: actor.FixedSleep(500 * time.Millisecond)}, core.RealClock{})
	h.Start(context.Background())

	const ticks = 10
	require.NoError(t, m.Run(context.Background(), []*actor.Handle{h}, ticks))
	jr.Close()

	samples := jr.Samples()
	require.Len(t, samples, ticks)
	for i, s := range samples {
		require.Equal(t, "sleeper", s.Actor)
		require.Equal(t, i+1, s.Tick)
	}

	timelines := journal.BuildTimelines(samples)
	require.True(t, timelines["sleeper"].Observed(core.StateTimedWaiting),
		"the sampling cadence must catch the sleep window")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, ticks, "one state table line per tick")
	require.Contains(t, lines[0], "sleeper=")

	h.Interrupt()
	<-h.Done()
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	m := New(core.NullRecorder, 50*time.Millisecond, core.RealClock{})
	m.SetOutput(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Run(ctx, nil, 1000)
	require.Error(t, err)
}
