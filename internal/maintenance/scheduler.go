package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isdelr/yatube/internal/database"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const taskTimeout = 30 * time.Second

// Task is a unit of housekeeping run on the schedule.
type Task func(ctx context.Context) error

// Scheduler runs database housekeeping on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	spec string
	task Task
}

// NewScheduler creates a scheduler that optimizes db according to spec.
func NewScheduler(db *sql.DB, spec string) (*Scheduler, error) {
	return newScheduler(spec, func(ctx context.Context) error {
		return database.Optimize(ctx, db)
	})
}

func newScheduler(spec string, task Task) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec: spec,
		task: task,
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the scheduler in the background.
func (s *Scheduler) Run() {
	log.Info().Str("schedule", s.spec).Msg("Starting database maintenance scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped database maintenance scheduler")
}

// Next reports when the task will run next.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	start := time.Now()
	if err := s.task(ctx); err != nil {
		log.Error().Err(err).Msg("Database maintenance failed")
		return
	}
	log.Debug().Dur("took", time.Since(start)).Msg("Database maintenance finished")
}
