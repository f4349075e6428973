package scenario

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stagecraft/internal/core"
)

func TestDefault_IsValid(t *testing.T) {
	sc := Default()
	require.Len(t, sc.Actors, 5, "one scripted actor per target state")
	require.NotNil(t, sc.Deadlock)
	require.Greater(t, sc.Deadlock.Hold, sc.Stagger)
	require.Equal(t, 100*time.Millisecond, sc.Monitor.Period)

	// Every observable target state is covered exactly once.
	seen := make(map[core.State]int)
	for _, a := range sc.Actors {
		seen[a.Target]++
	}
	for _, want := range []core.State{
		core.StateRunnable, core.StateBlocked, core.StateWaiting,
		core.StateTimedWaiting, core.StateTerminated,
	} {
		require.Equal(t, 1, seen[want], "target %s", want)
	}
}

func mutateDefault(t *testing.T, from, to string) ([]byte, error) {
	t.Helper()
	doc := strings.Replace(defaultDocument, from, to, 1)
	require.NotEqual(t, defaultDocument, doc, "mutation %q not found", from)
	_, err := Parse([]byte(doc))
	return []byte(doc), err
}

func TestParse_RejectsTargetBehaviorMismatch(t *testing.T) {
	_, err := mutateDefault(t, "target: TIMED_WAITING", "target: BLOCKED")
	require.ErrorContains(t, err, "reaches TIMED_WAITING")
}

func TestParse_RejectsUnknownBehavior(t *testing.T) {
	_, err := mutateDefault(t, "behavior: spin", "behavior: dance")
	require.ErrorContains(t, err, "unknown behavior")
}

func TestParse_RejectsDuplicateActor(t *testing.T) {
	_, err := mutateDefault(t, "name: spinner", "name: finisher")
	require.ErrorContains(t, err, "duplicate actor")
}

func TestParse_RejectsShortDeadlockHold(t *testing.T) {
	_, err := mutateDefault(t, "hold: 500ms", "hold: 100ms")
	require.ErrorContains(t, err, "must exceed stagger")
}

func TestParse_RejectsUnboundSignal(t *testing.T) {
	_, err := mutateDefault(t, "signal: doorbell", "signal: klaxon")
	require.ErrorContains(t, err, "unknown signal")
}

func TestParse_RejectsUnheldAcquireResource(t *testing.T) {
	_, err := mutateDefault(t, "resource: lockX\n    hold: 100ms", "resource: lockB\n    hold: 100ms")
	require.ErrorContains(t, err, "never pre-held")
}

func TestParse_RejectsZeroCadence(t *testing.T) {
	_, err := mutateDefault(t, "period: 100ms", "period: 0s")
	require.ErrorContains(t, err, "monitor.period")
}

func TestBuild_Cast(t *testing.T) {
	sc := Default()
	cast, err := sc.Build(core.RealClock{})
	require.NoError(t, err)

	require.Len(t, cast.Handles, 7, "five scripted actors plus the deadlock pair")
	require.Len(t, cast.Deadlocked, 2)
	require.Len(t, cast.Expectations, 7)

	for _, h := range cast.Handles {
		require.Equal(t, core.StateNew, h.State(), "nothing may run at build time")
	}

	require.NotNil(t, cast.Held)
	require.Equal(t, "lockX", cast.Held.Name())
	require.NotNil(t, cast.NotifySignal)
	require.Equal(t, "doorbell", cast.NotifySignal.Name())
	require.True(t, cast.NotifyAll)
	require.False(t, cast.Gate.Load())

	// Deadlock expectations never terminate; scripted ones always do.
	parked := 0
	for _, e := range cast.Expectations {
		if !e.Terminates {
			parked++
			require.Equal(t, core.StateBlocked, e.Target)
		}
	}
	require.Equal(t, 2, parked)
}
