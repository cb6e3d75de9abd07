package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// OverdueTaskStore performs the overdue transition as one unit of work.
type OverdueTaskStore interface {
	MarkOverdueTasks(ctx context.Context, now time.Time) (int64, error)
}

// TaskStatusService drives deadline-driven task status transitions.
// Transitions are one-way: only explicit completion moves a task out of
// the overdue state again.
type TaskStatusService struct {
	tasks OverdueTaskStore
	now   func() time.Time
}

// NewTaskStatusService creates a new instance of TaskStatusService.
func NewTaskStatusService(tasks OverdueTaskStore) *TaskStatusService {
	return &TaskStatusService{
		tasks: tasks,
		now:   time.Now,
	}
}

// UpdateOverdueTasks flips every pending/in-progress task past its deadline
// into the overdue state and returns how many were transitioned. Running it
// again immediately finds nothing to do. Notification of overdue tasks is
// driven separately off the deadline itself, so delivery is not coupled to
// this commit.
func (s *TaskStatusService) UpdateOverdueTasks(ctx context.Context) (int64, error) {
	count, err := s.tasks.MarkOverdueTasks(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to update overdue tasks: %w", err)
	}

	if count > 0 {
		logrus.WithField("count", count).Info("Tasks marked as overdue")
	}
	return count, nil
}
