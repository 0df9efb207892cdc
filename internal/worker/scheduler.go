package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSchedule runs the sync every fifteen minutes.
const DefaultSchedule = "@every 15m"

// Scheduler runs the sync job on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	entry  cron.EntryID
	logger zerolog.Logger
}

// NewScheduler schedules job according to schedule, a standard five-field cron
// expression or a descriptor such as "@hourly" or "@every 10m". Overlapping
// runs are skipped.
func NewScheduler(ctx context.Context, schedule string, job *SyncJob, logger zerolog.Logger) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{logger}),
		cron.SkipIfStillRunning(cronLogger{logger}),
	))

	id, err := c.AddFunc(schedule, func() {
		if _, err := job.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled station sync failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parsing sync schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c, entry: id, logger: logger}, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Time("next_run", s.Next(time.Now())).Msg("sync scheduler started")
}

// Next returns the first scheduled run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.cron.Entry(s.entry).Schedule.Next(t)
}

// Stop halts the schedule and waits for a running sync to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
