// Package poller runs periodic background tasks, primarily cache warmers
// that keep the dashboard and mailbox aggregates fresh so interactive
// requests hit Redis instead of Mongo or the Gmail API.
package poller

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

const (
	// jitterFraction spreads task wakeups by up to ±10% of the interval so
	// several pollers never align on the same tick.
	jitterFraction = 0.1
	// backoffLimit caps the failure backoff multiplier at 8x the interval.
	backoffLimit = 8
)

// Task is one periodic unit of work.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Poller runs a fixed set of tasks, each on its own goroutine. A failing
// task backs off exponentially (2x per consecutive failure, capped) and
// resets to its base interval on the next success.
type Poller struct {
	tasks []Task
	log   zerolog.Logger
}

func New(log zerolog.Logger, tasks ...Task) *Poller {
	return &Poller{tasks: tasks, log: log}
}

// Start launches all task loops. They stop when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	for _, task := range p.tasks {
		go p.runTask(ctx, task)
	}
}

func (p *Poller) runTask(ctx context.Context, task Task) {
	failures := 0
	timer := time.NewTimer(withJitter(task.Interval))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := task.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			p.log.Warn().Err(err).
				Str("task", task.Name).
				Int("consecutive_failures", failures).
				Msg("poller task failed")
		} else {
			failures = 0
		}

		timer.Reset(withJitter(nextInterval(task.Interval, failures)))
	}
}

// nextInterval doubles the base interval per consecutive failure, capped at
// backoffLimit times the base.
func nextInterval(base time.Duration, failures int) time.Duration {
	multiplier := 1
	for i := 0; i < failures && multiplier < backoffLimit; i++ {
		multiplier *= 2
	}
	return base * time.Duration(multiplier)
}

func withJitter(d time.Duration) time.Duration {
	spread := float64(d) * jitterFraction
	return d + time.Duration((rand.Float64()*2-1)*spread)
}
