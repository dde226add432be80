package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
)

const (
	// DefaultSchedule resyncs once an hour.
	DefaultSchedule = "@every 1h"

	stopTimeout = 30 * time.Second
)

// Runner performs one sync run.
type Runner interface {
	Run(ctx context.Context) (RunResult, error)
}

// Scheduler triggers sync runs on a cron schedule. Overlapping triggers are
// skipped while a run is active.
type Scheduler struct {
	runner   Runner
	schedule string
	logger   logger.Logger

	mu      gosync.Mutex
	cron    *cron.Cron
	sched   cron.Schedule
	entryID cron.EntryID
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler for runner. An empty schedule uses
// DefaultSchedule.
func NewScheduler(runner Runner, schedule string, log logger.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{runner: runner, schedule: schedule, logger: log}
}

// Start registers the job and starts the cron loop. Runs use a context
// derived from ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	sched, err := cron.ParseStandard(s.schedule)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.schedule, err)
	}

	cl := cronLogger{log: s.logger}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	runCtx, cancel := context.WithCancel(ctx)
	id := c.Schedule(sched, cron.FuncJob(func() { s.trigger(runCtx) }))

	s.cron, s.sched, s.entryID, s.cancel = c, sched, id, cancel
	c.Start()

	s.logger.Info("Sync scheduler started",
		logger.String("schedule", s.schedule),
		logger.String("next_run", sched.Next(time.Now()).Format(time.RFC3339)),
	)
	return nil
}

// NextRun returns the next scheduled trigger, or the zero time when stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return time.Time{}
	}
	if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
		return next
	}
	return s.sched.Next(time.Now())
}

// Stop cancels an active run and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	cancel()
	select {
	case <-c.Stop().Done():
	case <-time.After(stopTimeout):
		s.logger.Warn("Sync run did not stop in time")
	}
	s.logger.Info("Sync scheduler stopped")
}

func (s *Scheduler) trigger(ctx context.Context) {
	s.logger.Info("Sync triggered", logger.String("schedule", s.schedule))

	res, err := s.runner.Run(ctx)
	if errors.Is(err, ErrRunInProgress) {
		s.logger.Info("Sync skipped, a run is already active")
		return
	}
	if err != nil {
		s.logger.Error("Sync run failed",
			logger.String("run_id", res.RunID),
			logger.Error(err),
		)
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, logger.Any(key, kv[i+1]))
	}
	return fields
}
