// Package scheduler runs the periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"updaily/backend/config"
	"updaily/backend/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DailyGenerator creates the day's assignments for every active user.
type DailyGenerator interface {
	GenerateForAllActiveUsers(ctx context.Context, date time.Time) (int, error)
}

// Housekeeper removes stale data and sends periodic notifications.
type Housekeeper interface {
	Cleanup(ctx context.Context, now time.Time) (int64, error)
	SendReminders(ctx context.Context, date time.Time) (int, error)
	SendWeeklySummaries(ctx context.Context) (int, error)
}

// Rotator features a new reto per category.
type Rotator interface {
	Rotate(ctx context.Context, date time.Time) ([]models.Reto, error)
}

// JobStatus describes one registered job.
type JobStatus struct {
	Name    string    `json:"name"`
	Spec    string    `json:"spec"`
	NextRun time.Time `json:"next_run"`
	PrevRun time.Time `json:"prev_run,omitempty"`
}

type Scheduler struct {
	cron      *cron.Cron
	generator DailyGenerator
	house     Housekeeper
	rotator   Rotator
	cfg       config.SchedulerConfig
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]registered
	running bool
}

type registered struct {
	id   cron.EntryID
	spec string
}

// New registers every job with a non-empty spec. rotator may be nil, which
// leaves the rotation job out.
func New(cfg *config.Config, generator DailyGenerator, house Housekeeper, rotator Rotator, logger *zap.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		generator: generator,
		house:     house,
		rotator:   rotator,
		cfg:       cfg.Scheduler,
		loc:       loc,
		logger:    logger.Named("scheduler"),
		now:       time.Now,
		entries:   make(map[string]registered),
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"generate_daily", s.cfg.GenerateSpec, s.generateDaily},
		{"cleanup", s.cfg.CleanupSpec, s.cleanup},
		{"reminders", s.cfg.ReminderSpec, s.reminders},
		{"weekly_summary", s.cfg.SummarySpec, s.weeklySummary},
		{"rotate_featured", s.cfg.RotateSpec, s.rotateFeatured},
	}
	for _, job := range jobs {
		if job.spec == "" || (job.name == "rotate_featured" && rotator == nil) {
			continue
		}
		if err := s.add(job.name, job.spec, job.run); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(name, spec string, run func(ctx context.Context) error) error {
	id, err := s.cron.AddFunc(spec, func() { s.execute(name, run) })
	if err != nil {
		return fmt.Errorf("failed to add cron job %s (%q): %w", name, spec, err)
	}
	s.entries[name] = registered{id: id, spec: spec}
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.entries)), zap.String("timezone", s.loc.String()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status lists the registered jobs ordered by name.
func (s *Scheduler) Status() []JobStatus {
	out := make([]JobStatus, 0, len(s.entries))
	for name, reg := range s.entries {
		entry := s.cron.Entry(reg.id)
		next := entry.Next
		if next.IsZero() && entry.Schedule != nil {
			next = entry.Schedule.Next(s.now().In(s.loc))
		}
		out = append(out, JobStatus{Name: name, Spec: reg.spec, NextRun: next, PrevRun: entry.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunNow executes a job synchronously by name.
func (s *Scheduler) RunNow(name string) error {
	jobs := map[string]func(context.Context) error{
		"generate_daily": s.generateDaily,
		"cleanup":        s.cleanup,
		"reminders":      s.reminders,
		"weekly_summary": s.weeklySummary,
	}
	if s.rotator != nil {
		jobs["rotate_featured"] = s.rotateFeatured
	}
	run, ok := jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.execute(name, run)
}

func (s *Scheduler) execute(name string, run func(ctx context.Context) error) error {
	timeout := s.cfg.JobTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info("job started", zap.String("job", name))
	if err := run(ctx); err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return err
	}
	s.logger.Info("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Scheduler) generateDaily(ctx context.Context) error {
	created, err := s.generator.GenerateForAllActiveUsers(ctx, s.now().In(s.loc))
	if err != nil {
		return err
	}
	s.logger.Info("daily assignments generated", zap.Int("created", created))
	return nil
}

func (s *Scheduler) cleanup(ctx context.Context) error {
	deleted, err := s.house.Cleanup(ctx, s.now().In(s.loc))
	if err != nil {
		return err
	}
	s.logger.Info("cleanup finished", zap.Int64("deleted", deleted))
	return nil
}

func (s *Scheduler) reminders(ctx context.Context) error {
	sent, err := s.house.SendReminders(ctx, s.now().In(s.loc))
	if err != nil {
		return err
	}
	s.logger.Info("reminders sent", zap.Int("users", sent))
	return nil
}

func (s *Scheduler) weeklySummary(ctx context.Context) error {
	sent, err := s.house.SendWeeklySummaries(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("weekly summaries sent", zap.Int("users", sent))
	return nil
}

func (s *Scheduler) rotateFeatured(ctx context.Context) error {
	featured, err := s.rotator.Rotate(ctx, s.now().In(s.loc))
	if err != nil {
		return err
	}
	s.logger.Info("featured retos rotated", zap.Int("featured", len(featured)))
	return nil
}
