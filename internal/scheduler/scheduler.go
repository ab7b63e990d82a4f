// Package scheduler runs periodic background jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler wraps a cron runner with named jobs and zerolog output.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
	jobs map[string]cron.EntryID
}

// New returns a stopped scheduler. Specs use the standard five-field syntax or descriptors like "@every 30s".
func New(logger zerolog.Logger) *Scheduler {
	l := logger.With().Str("module", "scheduler").Logger()
	c := cron.New(
		cron.WithLogger(cronLogger{log: l}),
		cron.WithChain(cron.Recover(cronLogger{log: l}), cron.SkipIfStillRunning(cronLogger{log: l})),
	)
	return &Scheduler{cron: c, log: l, jobs: map[string]cron.EntryID{}}
}

// Add registers fn under name. An empty spec disables the job.
func (s *Scheduler) Add(name, spec string, fn func()) error {
	if spec == "" {
		s.log.Debug().Str("job", name).Msg("job disabled")
		return nil
	}
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() {
		s.log.Debug().Str("job", name).Msg("job started")
		fn()
	})
	if err != nil {
		return fmt.Errorf("schedule %q (%s): %w", name, spec, err)
	}
	s.jobs[name] = id
	s.log.Info().Str("job", name).Str("spec", spec).Msg("job scheduled")
	return nil
}

// Jobs is the number of registered jobs.
func (s *Scheduler) Jobs() int { return len(s.jobs) }

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Stop prevents new runs and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
