// Package cadence paces the monitor's sampling loop.
package cadence

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces ticks a fixed interval apart. The interval can be adjusted
// mid-run.
type Pacer struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next tick is due, or the context is cancelled.
// A zero interval never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.RLock()
	limiter := p.limiter
	limit := limiter.Limit()
	p.mu.RUnlock()

	if limit == rate.Inf {
		return nil
	}
	return limiter.Wait(ctx)
}

func (p *Pacer) SetInterval(interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if interval <= 0 {
		p.limiter.SetLimit(rate.Inf)
		return
	}
	p.limiter.SetLimit(rate.Every(interval))
	p.limiter.SetBurst(1)
}
