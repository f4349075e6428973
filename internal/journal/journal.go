// Package journal stores state samples and verifies the run's observable
// properties.
package journal

import (
	"sync"
	"time"

	"stagecraft/internal/core"
)

// Journal is an append-only store of samples from the monitor. Unlike a
// lossy metrics pipeline, it must not drop samples: they are the evidence
// the run's checks are judged on, so Record blocks when the buffer is
// momentarily full.
type Journal struct {
	samples   []core.Sample
	ch        chan core.Sample
	done      chan struct{}
	mu        sync.Mutex
	startTime time.Time
	endTime   time.Time
}

// New creates a Journal and starts its collection goroutine.
func New() *Journal {
	j := &Journal{
		ch:        make(chan core.Sample, 256),
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	go j.collect()
	return j
}

func (j *Journal) collect() {
	for s := range j.ch {
		j.mu.Lock()
		j.samples = append(j.samples, s)
		j.mu.Unlock()
	}
	close(j.done)
}

// Record appends a sample. Safe for concurrent use.
func (j *Journal) Record(s core.Sample) {
	j.ch <- s
}

// Close stops accepting samples and waits for the backlog to drain.
func (j *Journal) Close() {
	j.endTime = time.Now()
	close(j.ch)
	<-j.done
}

// Samples returns a copy of everything recorded so far, in order.
func (j *Journal) Samples() []core.Sample {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]core.Sample, len(j.samples))
	copy(out, j.samples)
	return out
}

// Duration returns how long the journal has been (or was) open.
func (j *Journal) Duration() time.Duration {
	if !j.endTime.IsZero() {
		return j.endTime.Sub(j.startTime)
	}
	return time.Since(j.startTime)
}
