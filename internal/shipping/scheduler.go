package shipping

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the sweeper on a six-field cron spec in UTC. A tick that
// fires while the previous sweep is still running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	onSweep func(SweepResult, error)
}

func NewScheduler(sweeper *Sweeper, spec string, timeout time.Duration) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.Default())
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	s := &Scheduler{cron: c, sweeper: sweeper, timeout: timeout}
	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid shipping schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	result, err := s.sweeper.Sweep(ctx)
	if err != nil {
		log.Printf("[SHIPPING] [ERROR] scheduled sweep failed: %v", err)
	}
	if s.onSweep != nil {
		s.onSweep(result, err)
	}
}

// Start begins ticking; sweeps are cancelled when ctx is done or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	log.Printf("[SHIPPING] [INFO] scheduler started, next run %s", s.cron.Entries()[0].Next.Format(time.RFC3339))
}

// Stop halts the schedule and waits for a running sweep, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Println("[SHIPPING] [WARN] scheduler stop timed out")
	}
}
