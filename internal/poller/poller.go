// Package poller drives the enrichment cycle on a fixed interval until it is
// cancelled.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultInterval is the pause between the end of one tick and the next.
const DefaultInterval = 10 * time.Second

// State is the poller lifecycle state.
type State int

const (
	// Running is the initial state; the poller is ticking or waiting.
	Running State = iota
	// Stopped is terminal, reached on cancellation or a fatal tick error.
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Ticker runs one cycle. A non-nil error while the context is still live is
// fatal to the poller.
type Ticker interface {
	RunTick(ctx context.Context) error
}

// Stats is a snapshot of poller progress.
type Stats struct {
	Ticks        int64         `json:"ticks"`
	StartedAt    time.Time     `json:"started_at"`
	LastTickAt   time.Time     `json:"last_tick_at"`
	LastDuration time.Duration `json:"last_duration_ns"`
}

// Poller runs a Ticker, then waits interval, until cancelled.
type Poller struct {
	ticker   Ticker
	interval time.Duration

	mu    sync.RWMutex
	state State
	stats Stats
}

// New creates a Poller in the Running state. A non-positive interval uses
// DefaultInterval.
func New(t Ticker, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{ticker: t, interval: interval, state: Running}
}

// Run ticks immediately and then once per interval. It returns nil when ctx
// is cancelled and a wrapped error when a tick fails.
func (p *Poller) Run(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "poller"))
	log.Info("starting token monitoring", zap.Duration("interval", p.interval))

	p.mu.Lock()
	p.stats.StartedAt = time.Now()
	p.mu.Unlock()

	for {
		start := time.Now()
		err := p.ticker.RunTick(ctx)
		p.record(start)

		if ctx.Err() != nil {
			break
		}
		if err != nil {
			p.setState(Stopped)
			log.Error("poller: fatal error in tick, stopping", zap.Error(err))
			return eris.Wrap(err, "poller: tick")
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			break
		}
	}

	p.setState(Stopped)
	log.Info("token monitoring terminated", zap.Int64("ticks", p.Stats().Ticks))
	return nil
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Stats returns a snapshot of progress counters.
func (p *Poller) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) record(start time.Time) {
	now := time.Now()
	p.mu.Lock()
	p.stats.Ticks++
	p.stats.LastTickAt = now
	p.stats.LastDuration = now.Sub(start)
	p.mu.Unlock()
}
