// Package schedule triggers a job once at startup and then on a cron spec.
package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a standard five-field cron spec. Runs never
// overlap: a tick that fires while the job is running is skipped.
type Scheduler struct {
	spec    string
	job     Job
	running atomic.Bool
	cron    *cron.Cron
}

// New validates spec and creates a Scheduler.
func New(spec string, job Job) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, eris.Wrapf(err, "schedule: parse spec %q", spec)
	}
	logger := zapLogger{}
	return &Scheduler{
		spec: spec,
		job:  job,
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger))),
	}, nil
}

// Start runs the job immediately, then on every tick until ctx is done. It
// returns after the cron is stopped and any running job has finished.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Trigger(ctx, "cron") }); err != nil {
		return eris.Wrap(err, "schedule: add job")
	}
	s.cron.Start()
	zap.L().Info("schedule: started", zap.String("spec", s.spec))

	s.Trigger(ctx, "startup")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	zap.L().Info("schedule: stopped")
	return nil
}

// Trigger runs the job now unless a run is already in progress. It reports
// whether the job ran.
func (s *Scheduler) Trigger(ctx context.Context, reason string) bool {
	log := zap.L().With(zap.String("reason", reason))
	if ctx.Err() != nil {
		return false
	}
	if !s.running.CompareAndSwap(false, true) {
		log.Warn("schedule: previous run still in progress, skipping")
		return false
	}
	defer s.running.Store(false)

	start := time.Now()
	log.Info("schedule: run starting")
	if err := s.job(ctx); err != nil {
		log.Error("schedule: run failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return true
	}
	log.Info("schedule: run finished", zap.Duration("duration", time.Since(start)))
	return true
}

// Next returns the next activation time after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	sched, err := cron.ParseStandard(s.spec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(now)
}

// zapLogger adapts the global zap logger to cron.Logger.
type zapLogger struct{}

func (zapLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.L().Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (zapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.L().Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
