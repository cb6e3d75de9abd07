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

// GoalService encapsulates the business logic for study goals.
type GoalService struct {
	repo         *repository.GoalRepository
	achievements *AchievementService
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(repo *repository.GoalRepository, achievements *AchievementService) *GoalService {
	return &GoalService{
		repo:         repo,
		achievements: achievements,
	}
}

// CreateGoal validates and stores a new goal.
func (s *GoalService) CreateGoal(ctx context.Context, userID primitive.ObjectID, goal *models.Goal) (*models.Goal, error) {
	if goal.Title == "" {
		return nil, fmt.Errorf("goal title is required")
	}
	if goal.TargetValue <= 0 {
		return nil, fmt.Errorf("goal target value must be positive")
	}
	if goal.EndDate.Before(goal.StartDate) {
		return nil, fmt.Errorf("goal end date must be after start date")
	}

	goal.UserID = userID
	goal.CurrentValue = 0
	goal.IsCompleted = false
	goal.IsActive = true
	if goal.Type == "" {
		goal.Type = models.GoalTypeCustom
	}

	return s.repo.CreateGoal(ctx, goal)
}

// GetGoal fetches a goal owned by the user.
func (s *GoalService) GetGoal(ctx context.Context, id, userID primitive.ObjectID) (*models.Goal, error) {
	return s.repo.GetGoalByID(ctx, id, userID)
}

// GetGoals fetches the user's goals.
func (s *GoalService) GetGoals(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]models.Goal, error) {
	return s.repo.GetGoals(ctx, userID, activeOnly)
}

// UpdateProgress advances the goal's progress counter; reaching the target
// completes the goal.
func (s *GoalService) UpdateProgress(ctx context.Context, id, userID primitive.ObjectID, currentValue int) (*models.Goal, error) {
	goal, err := s.repo.GetGoalByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	update := map[string]interface{}{
		"current_value": currentValue,
	}
	if currentValue >= goal.TargetValue && !goal.IsCompleted {
		now := time.Now().UTC()
		update["is_completed"] = true
		update["is_active"] = false
		update["completed_at"] = now
		logrus.WithField("goal_id", id.Hex()).Info("Goal completed")
	}

	if err := s.repo.UpdateGoal(ctx, id, userID, update); err != nil {
		return nil, err
	}

	if _, ok := update["is_completed"]; ok {
		s.achievements.CheckAndAward(ctx, userID)
	}

	return s.repo.GetGoalByID(ctx, id, userID)
}

// UpdateGoal applies a partial update to the goal.
func (s *GoalService) UpdateGoal(ctx context.Context, id, userID primitive.ObjectID, update map[string]interface{}) (*models.Goal, error) {
	if err := s.repo.UpdateGoal(ctx, id, userID, update); err != nil {
		return nil, err
	}
	return s.repo.GetGoalByID(ctx, id, userID)
}

// DeleteGoal removes a goal owned by the user.
func (s *GoalService) DeleteGoal(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.repo.DeleteGoal(ctx, id, userID)
}
