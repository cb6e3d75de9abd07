package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// tickInterval is the fixed wait between scheduler iterations.
	tickInterval = time.Minute
	// dailySummaryHour is the UTC hour at which daily summaries go out.
	dailySummaryHour = 9
)

// StatusUpdater is the overdue transition engine.
type StatusUpdater interface {
	UpdateOverdueTasks(ctx context.Context) (int64, error)
}

// Notifier bundles the periodic detection passes the scheduler drives.
type Notifier interface {
	CheckDeadlineReminders(ctx context.Context) (int, error)
	CheckOverdueTasks(ctx context.Context) (int, error)
	SendDailySummaries(ctx context.Context) (int, error)
}

// Scheduler is the single process-wide coordinator of periodic work. Every
// tick it updates overdue statuses and checks deadline reminders; overdue
// alerts run once per hour (minute 0) and daily summaries at 09:00 UTC.
// A failing tick is logged and the loop keeps going; only context
// cancellation stops it, checked at the sleep boundary so in-flight work
// always finishes.
type Scheduler struct {
	status   StatusUpdater
	notifier Notifier

	interval time.Duration
	now      func() time.Time
}

// New creates a scheduler with the standard one-minute tick.
func New(status StatusUpdater, notifier Notifier) *Scheduler {
	return &Scheduler{
		status:   status,
		notifier: notifier,
		interval: tickInterval,
		now:      time.Now,
	}
}

// Run executes the scheduler loop until ctx is cancelled. The first tick
// fires after one full interval.
func (s *Scheduler) Run(ctx context.Context) {
	logrus.Info("Background notification scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Background notification scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one scheduler iteration. Nothing raised inside a tick may kill
// the loop: errors are logged and the next tick proceeds normally.
func (s *Scheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("Scheduler tick panicked")
		}
	}()

	now := s.now().UTC()

	if count, err := s.status.UpdateOverdueTasks(ctx); err != nil {
		logrus.WithError(err).Error("Overdue status update failed")
	} else if count > 0 {
		logrus.WithField("count", count).Info("Overdue statuses updated")
	}

	if _, err := s.notifier.CheckDeadlineReminders(ctx); err != nil {
		logrus.WithError(err).Error("Deadline reminder check failed")
	}

	// Overdue alerts every hour at :00.
	if now.Minute() == 0 {
		if _, err := s.notifier.CheckOverdueTasks(ctx); err != nil {
			logrus.WithError(err).Error("Overdue notification check failed")
		}
	}

	// Daily summaries at 09:00 UTC.
	if now.Hour() == dailySummaryHour && now.Minute() == 0 {
		if _, err := s.notifier.SendDailySummaries(ctx); err != nil {
			logrus.WithError(err).Error("Daily summary dispatch failed")
		}
	}
}
