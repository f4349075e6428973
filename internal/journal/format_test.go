package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"stagecraft/internal/core"
)

func sampleReport() *Report {
	timelines := BuildTimelines(append(
		samplesFor("sleeper", core.StateNew, core.StateTimedWaiting, core.StateTerminated),
		samplesFor("method1", core.StateRunnable, core.StateBlocked, core.StateBlocked)...))
	expected := []Expectation{
		{Actor: "sleeper", Target: core.StateTimedWaiting, Terminates: true},
		{Actor: "method1", Target: core.StateBlocked, Terminates: false},
	}
	return &Report{
		RunID:     "run-123",
		Duration:  1503 * time.Millisecond,
		Timelines: timelines,
		Expected:  expected,
		Checks:    Check(timelines, expected),
	}
}

func TestFormatText_Contents(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, sampleReport())
	out := buf.String()

	require.Contains(t, out, "run-123")
	require.Contains(t, out, "sleeper")
	require.Contains(t, out, "NEW -> TIMED_WAITING -> TERMINATED")
	require.Contains(t, out, "RUNNABLE -> BLOCKED")
	require.Contains(t, out, "✓ sleeper.target_observed")
	require.Contains(t, out, "✓ method1.deadlocked")
	require.NotContains(t, out, "✗")
}

func TestFormatText_MarksViolations(t *testing.T) {
	r := sampleReport()
	r.Checks.add("sleeper.target_observed", false, "forced failure")

	var buf bytes.Buffer
	FormatText(&buf, r)
	require.Contains(t, buf.String(), "✗ sleeper.target_observed")
}

func TestFormatJSON_Queryable(t *testing.T) {
	var buf bytes.Buffer
	FormatJSON(&buf, sampleReport())
	out := buf.String()
	require.True(t, gjson.Valid(out))

	require.Equal(t, "run-123", gjson.Get(out, "runId").String())
	require.Equal(t, "1.503s", gjson.Get(out, "duration").String())
	require.Equal(t, int64(6), gjson.Get(out, "samples").Int())

	require.Equal(t, "TIMED_WAITING", gjson.Get(out, "actors.sleeper.target").String())
	observed := gjson.Get(out, "actors.sleeper.observed").Array()
	require.Len(t, observed, 3)
	require.Equal(t, "TERMINATED", observed[2].String())

	require.Equal(t, "BLOCKED", gjson.Get(out, "actors.method1.target").String())
	require.True(t, gjson.Get(out, "checks.passed").Bool())

	names := gjson.Get(out, "checks.results.#.name").Array()
	var found bool
	for _, n := range names {
		if strings.HasPrefix(n.String(), "method1.deadlocked") {
			found = true
		}
	}
	require.True(t, found, "deadlock check missing from JSON report")
}
