package agent

import (
	"context"
	"time"
)

// Poller runs a task on a fixed interval until its context is cancelled.
// Notification refresh and session re-validation use separate pollers with
// no ordering between them.
type Poller struct {
	interval time.Duration
	task     func(context.Context)
}

func NewPoller(interval time.Duration, task func(context.Context)) *Poller {
	return &Poller{interval: interval, task: task}
}

// Run blocks until ctx is cancelled. The task does not run immediately;
// callers wanting an initial fetch invoke it themselves first.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.task(ctx)
		}
	}
}

// Start runs the poller in the background and returns a stop function tied
// to the session lifetime.
func (p *Poller) Start(ctx context.Context) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go p.Run(ctx)
	return cancel
}
