// Package scheduler runs the periodic maintenance jobs: pruning old search
// history, sweeping expired in-process sessions and probing dependencies.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deal-drive/site/observability"
)

// sweepSpec is how often expired in-process search sessions are dropped.
const sweepSpec = "@every 10m"

// Pruner deletes search history created before a cutoff.
type Pruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper drops expired sessions and returns how many were removed.
type Sweeper interface {
	Sweep() int
}

// Probe is one dependency pinged by the health job.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Options configures the jobs. A nil History or Sweeper disables its job.
type Options struct {
	History   Pruner
	Retention time.Duration
	PruneSpec string

	Sweeper Sweeper

	Probes       []Probe
	HealthSpec   string
	ProbeTimeout time.Duration
}

// Scheduler wraps robfig/cron and owns the maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
	opts Options
	now  func() time.Time
}

// New creates a Scheduler. Jobs are registered by Start.
func New(opts Options) *Scheduler {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		opts: opts,
		now:  time.Now,
	}
}

// Start registers the jobs and starts the cron loop. ctx is passed to every
// job run and should live as long as the server.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.opts.History != nil {
		if _, err := s.cron.AddFunc(s.opts.PruneSpec, func() { s.runPrune(ctx) }); err != nil {
			return fmt.Errorf("invalid history prune spec %q: %w", s.opts.PruneSpec, err)
		}
	}
	if s.opts.Sweeper != nil {
		if _, err := s.cron.AddFunc(sweepSpec, s.runSweep); err != nil {
			return fmt.Errorf("invalid sweep spec: %w", err)
		}
	}
	if len(s.opts.Probes) > 0 {
		if _, err := s.cron.AddFunc(s.opts.HealthSpec, func() { s.runProbes(ctx) }); err != nil {
			return fmt.Errorf("invalid health check spec %q: %w", s.opts.HealthSpec, err)
		}
	}

	s.cron.Start()
	logger := observability.Component("scheduler")
	logger.Info().Int("jobs", len(s.cron.Entries())).Msg("cron started")
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger := observability.Component("scheduler")
	logger.Info().Msg("cron stopped")
}

func (s *Scheduler) runPrune(ctx context.Context) {
	logger := observability.Component("scheduler")
	cutoff := s.now().Add(-s.opts.Retention)

	removed, err := s.opts.History.PruneOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error().Err(err).Msg("history prune failed")
		return
	}
	logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("pruned search history")
}

func (s *Scheduler) runSweep() {
	if removed := s.opts.Sweeper.Sweep(); removed > 0 {
		logger := observability.Component("scheduler")
		logger.Debug().Int("removed", removed).Msg("swept expired search sessions")
	}
}

// runProbes pings every dependency and returns the names of those that failed.
func (s *Scheduler) runProbes(ctx context.Context) []string {
	logger := observability.Component("scheduler")

	var failed []string
	for _, p := range s.opts.Probes {
		probeCtx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
		err := p.Check(probeCtx)
		cancel()
		if err != nil {
			logger.Error().Str("dependency", p.Name).Err(err).Msg("HEALTH CHECK FAILED")
			failed = append(failed, p.Name)
		}
	}
	return failed
}
