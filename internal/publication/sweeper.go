package publication

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically promotes scheduled publication on the server side, so
// results go public at the deadline even when no client is polling.
type Sweeper struct {
	scheduler *Scheduler
	interval  time.Duration
	enabled   bool
}

// NewSweeper creates a Sweeper.
func NewSweeper(scheduler *Scheduler, interval time.Duration, enabled bool) *Sweeper {
	return &Sweeper{scheduler: scheduler, interval: interval, enabled: enabled}
}

// Run checks the schedule every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if !s.enabled {
		log.Println("Publication sweeper is disabled. Not starting.")
		return
	}
	log.Println("Starting publication sweeper...")

	s.scheduler.CheckAndUpdate(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Publication sweeper shutting down.")
			return
		case <-timer.C:
			s.scheduler.CheckAndUpdate(ctx)
			timer.Reset(s.interval)
		}
	}
}
