package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/Madiyar4554/StudentPlanner/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultTaskColor = "#3B82F6"

// TaskService encapsulates the business logic for task operations.
type TaskService struct {
	repo         *repository.TaskRepository
	achievements *AchievementService
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo *repository.TaskRepository, achievements *AchievementService) *TaskService {
	return &TaskService{
		repo:         repo,
		achievements: achievements,
	}
}

// CreateTask validates and stores a new task for the user.
func (s *TaskService) CreateTask(ctx context.Context, userID primitive.ObjectID, task *models.Task) (*models.Task, error) {
	if task.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if task.Deadline.IsZero() {
		return nil, fmt.Errorf("task deadline is required")
	}

	task.UserID = userID
	task.Deadline = task.Deadline.UTC()
	task.Status = models.TaskStatusPending
	task.IsOverdue = false
	task.CompletedAt = nil
	if task.Type == "" {
		task.Type = models.TaskTypeOther
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityCurrent
	}
	if task.Color == "" {
		task.Color = defaultTaskColor
	}

	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	// Creating tasks can itself unlock achievements (tasks_created).
	s.achievements.CheckAndAward(ctx, userID)

	return created, nil
}

// GetTask fetches a single task owned by the user.
func (s *TaskService) GetTask(ctx context.Context, id, userID primitive.ObjectID) (*models.Task, error) {
	return s.repo.GetTaskByID(ctx, id, userID)
}

// GetTasks fetches the user's tasks with optional filters.
func (s *TaskService) GetTasks(ctx context.Context, userID primitive.ObjectID, status, taskType string) ([]models.Task, error) {
	return s.repo.GetTasks(ctx, userID, status, taskType)
}

// UpdateTask applies a partial update; switching the status to completed
// stamps completed_at and clears the overdue flag.
func (s *TaskService) UpdateTask(ctx context.Context, id, userID primitive.ObjectID, update map[string]interface{}) (*models.Task, error) {
	if status, ok := update["status"].(string); ok && models.TaskStatus(status) == models.TaskStatusCompleted {
		update["completed_at"] = time.Now().UTC()
		update["is_overdue"] = false
	}
	if deadline, ok := update["deadline"].(time.Time); ok {
		update["deadline"] = deadline.UTC()
	}

	if err := s.repo.UpdateTask(ctx, id, userID, update); err != nil {
		return nil, err
	}

	task, err := s.repo.GetTaskByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if task.Status == models.TaskStatusCompleted {
		s.achievements.CheckAndAward(ctx, userID)
	}

	return task, nil
}

// CompleteTask marks a task completed. Completion is the only way a task
// leaves the overdue state.
func (s *TaskService) CompleteTask(ctx context.Context, id, userID primitive.ObjectID) (*models.Task, error) {
	update := map[string]interface{}{
		"status":       models.TaskStatusCompleted,
		"completed_at": time.Now().UTC(),
		"is_overdue":   false,
	}

	if err := s.repo.UpdateTask(ctx, id, userID, update); err != nil {
		return nil, err
	}

	logrus.WithField("task_id", id.Hex()).Info("Task completed")
	s.achievements.CheckAndAward(ctx, userID)

	return s.repo.GetTaskByID(ctx, id, userID)
}

// DeleteTask removes a task owned by the user.
func (s *TaskService) DeleteTask(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.repo.DeleteTask(ctx, id, userID)
}
