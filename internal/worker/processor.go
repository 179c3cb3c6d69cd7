package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Refresher is the work a Processor repeats.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Processor refreshes on a fixed interval as a backstop for lost messages.
type Processor struct {
	target   Refresher
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewProcessor(target Refresher, interval time.Duration) *Processor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Processor{target: target, interval: interval}
}

// Start begins the loop. Returns an error if already running.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Refresh processor started", "interval", p.interval)
	return nil
}

// Stop signals the loop and waits for it, or for ctx.
func (p *Processor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Refresh processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresh processor stop timed out")
		return ctx.Err()
	}
}

func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// refresh immediately on startup
	p.refresh(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Processor) refresh(ctx context.Context) {
	if err := p.target.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
	}
}
