package services

import (
	"context"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/Madiyar4554/StudentPlanner/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// defaultAchievements seeds the catalog of a fresh database.
var defaultAchievements = []models.Achievement{
	{Name: "Первый шаг", Description: "Выполните свою первую задачу", Icon: "🎯", ConditionType: "tasks_completed", ConditionValue: 1, Points: 10},
	{Name: "На волне", Description: "Выполните 10 задач", Icon: "🌊", ConditionType: "tasks_completed", ConditionValue: 10, Points: 25},
	{Name: "Мастер дедлайнов", Description: "Выполните 50 задач", Icon: "🏅", ConditionType: "tasks_completed", ConditionValue: 50, Points: 100},
	{Name: "Планировщик", Description: "Создайте 10 задач", Icon: "📝", ConditionType: "tasks_created", ConditionValue: 10, Points: 15},
	{Name: "Целеустремлённый", Description: "Завершите свою первую цель", Icon: "🚀", ConditionType: "goals_completed", ConditionValue: 1, Points: 30},
}

// AchievementService manages the achievement catalog and awards.
type AchievementService struct {
	repo     *repository.AchievementRepository
	tasks    *repository.TaskRepository
	goals    *repository.GoalRepository
	notifier *NotificationService
}

// NewAchievementService creates a new instance of AchievementService.
// notifier may be set later via SetNotifier to break the construction cycle
// with NotificationService.
func NewAchievementService(repo *repository.AchievementRepository, tasks *repository.TaskRepository, goals *repository.GoalRepository) *AchievementService {
	return &AchievementService{
		repo:  repo,
		tasks: tasks,
		goals: goals,
	}
}

// SetNotifier wires the push notifier used to announce new awards.
func (s *AchievementService) SetNotifier(notifier *NotificationService) {
	s.notifier = notifier
}

// SeedCatalog populates the achievement catalog if it is empty.
func (s *AchievementService) SeedCatalog(ctx context.Context) error {
	return s.repo.SeedCatalog(ctx, defaultAchievements)
}

// GetCatalog returns all achievements.
func (s *AchievementService) GetCatalog(ctx context.Context) ([]models.Achievement, error) {
	return s.repo.GetAllAchievements(ctx)
}

// GetUserAchievements returns the user's earned awards.
func (s *AchievementService) GetUserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	return s.repo.GetUserAchievements(ctx, userID)
}

// CheckAndAward evaluates all award conditions for the user and grants any
// newly satisfied achievements, announcing each over push. Failures here
// never propagate: achievements are a side effect of task/goal operations.
func (s *AchievementService) CheckAndAward(ctx context.Context, userID primitive.ObjectID) {
	catalog, err := s.repo.GetAllAchievements(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load achievement catalog")
		return
	}

	earned, err := s.repo.GetUserAchievements(ctx, userID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load user achievements")
		return
	}
	earnedIDs := make(map[primitive.ObjectID]struct{}, len(earned))
	for _, award := range earned {
		earnedIDs[award.AchievementID] = struct{}{}
	}

	completedTasks, err := s.tasks.CountCompleted(ctx, userID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to count completed tasks")
		return
	}
	totalTasks, err := s.tasks.CountAll(ctx, userID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to count tasks")
		return
	}
	completedGoals, err := s.goals.CountCompleted(ctx, userID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to count completed goals")
		return
	}

	for _, achievement := range catalog {
		if _, ok := earnedIDs[achievement.ID]; ok {
			continue
		}

		satisfied := false
		switch achievement.ConditionType {
		case "tasks_completed":
			satisfied = completedTasks >= int64(achievement.ConditionValue)
		case "tasks_created":
			satisfied = totalTasks >= int64(achievement.ConditionValue)
		case "goals_completed":
			satisfied = completedGoals >= int64(achievement.ConditionValue)
		}
		if !satisfied {
			continue
		}

		if _, err := s.repo.AwardAchievement(ctx, userID, achievement.ID); err != nil {
			logrus.WithError(err).WithField("achievement", achievement.Name).Warn("Failed to award achievement")
			continue
		}

		if s.notifier != nil {
			s.notifier.SendAchievementNotification(ctx, userID, achievement.Name)
		}
	}
}
