package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// reminderWindows are the deadline lookaheads checked on every tick. The
// windows nest, so the union is deduplicated by task identity: a task 20
// minutes from its deadline matches all three but is notified once per tick.
var reminderWindows = []time.Duration{
	24 * time.Hour,
	time.Hour,
	30 * time.Minute,
}

// Pusher is the delivery boundary; failures are a boolean outcome.
type Pusher interface {
	Deliver(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]interface{}) bool
}

// NotificationTaskStore is the task query surface the detection logic needs.
type NotificationTaskStore interface {
	GetTasksDueWithin(ctx context.Context, from, to time.Time) ([]models.Task, error)
	GetOverdueTasks(ctx context.Context, now time.Time) ([]models.Task, error)
	CountTasksInWindow(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (total, completed int64, err error)
	CountOverdue(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error)
}

// NotificationUserStore resolves subscription owners for the daily summary.
type NotificationUserStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// SubscriptionLister enumerates all registered push subscriptions.
type SubscriptionLister interface {
	GetAll(ctx context.Context) ([]models.PushSubscription, error)
}

// NotificationLog records dispatched notifications.
type NotificationLog interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
}

// NotificationService builds notification content and drives the periodic
// detection passes invoked by the scheduler.
type NotificationService struct {
	push  Pusher
	log   NotificationLog
	tasks NotificationTaskStore
	users NotificationUserStore
	subs  SubscriptionLister

	now func() time.Time
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(push Pusher, log NotificationLog, tasks NotificationTaskStore, users NotificationUserStore, subs SubscriptionLister) *NotificationService {
	return &NotificationService{
		push:  push,
		log:   log,
		tasks: tasks,
		users: users,
		subs:  subs,
		now:   time.Now,
	}
}

// CheckDeadlineReminders finds tasks approaching their deadline in any of
// the lookahead windows and sends one reminder per task. There is no
// persisted "already notified" state: a task still inside a window on the
// next pass is reminded again (at-least-once policy).
func (s *NotificationService) CheckDeadlineReminders(ctx context.Context) (int, error) {
	now := s.now().UTC()

	seen := make(map[primitive.ObjectID]struct{})
	var candidates []models.Task
	for _, window := range reminderWindows {
		tasks, err := s.tasks.GetTasksDueWithin(ctx, now, now.Add(window))
		if err != nil {
			return 0, fmt.Errorf("failed to fetch tasks due within %s: %w", window, err)
		}
		for _, task := range tasks {
			if _, ok := seen[task.ID]; ok {
				continue
			}
			seen[task.ID] = struct{}{}
			candidates = append(candidates, task)
		}
	}

	sent := 0
	for _, task := range candidates {
		if s.SendDeadlineNotification(ctx, task) {
			sent++
		}
	}

	if sent > 0 {
		logrus.WithField("count", sent).Info("Deadline reminders sent")
	}
	return sent, nil
}

// CheckOverdueTasks re-alerts users about every task overdue by a day or
// more. There is deliberately no de-duplication across hours: an incomplete
// overdue task is re-alerted every hourly pass until completed.
func (s *NotificationService) CheckOverdueTasks(ctx context.Context) (int, error) {
	now := s.now().UTC()

	tasks, err := s.tasks.GetOverdueTasks(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch overdue tasks: %w", err)
	}

	sent := 0
	for _, task := range tasks {
		daysOverdue := int(now.Sub(task.Deadline.UTC()) / (24 * time.Hour))
		if daysOverdue <= 0 {
			// Less than a full day overdue: not worth an hourly alert yet.
			continue
		}

		title := fmt.Sprintf("⚠️ Задача просрочена на %d дн.", daysOverdue)
		body := fmt.Sprintf("%s - проверьте статус выполнения", task.Title)
		data := map[string]interface{}{
			"type":         "overdue",
			"task_id":      task.ID.Hex(),
			"days_overdue": daysOverdue,
		}

		if s.send(ctx, task.UserID, &task.ID, "overdue", title, body, data) {
			sent++
		}
	}

	if sent > 0 {
		logrus.WithField("count", sent).Info("Overdue alerts sent")
	}
	return sent, nil
}

// SendDailySummaries sends every active subscribed user their counts for
// the current UTC day. The overdue total is computed for the log only; the
// message body carries just the day's totals.
func (s *NotificationService) SendDailySummaries(ctx context.Context) (int, error) {
	now := s.now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayEnd := todayStart.Add(24 * time.Hour)

	subs, err := s.subs.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		user, err := s.users.GetUserByID(ctx, sub.UserID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", sub.UserID.Hex()).Warn("Failed to resolve subscription owner")
			continue
		}
		if !user.IsActive {
			continue
		}

		total, completed, err := s.tasks.CountTasksInWindow(ctx, user.ID, todayStart, todayEnd)
		if err != nil {
			logrus.WithError(err).WithField("user_id", user.ID.Hex()).Warn("Failed to count today's tasks")
			continue
		}
		overdue, err := s.tasks.CountOverdue(ctx, user.ID, now)
		if err != nil {
			overdue = 0
		}

		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID.Hex(),
			"total":     total,
			"completed": completed,
			"overdue":   overdue,
		}).Debug("Daily summary computed")

		if s.SendDailySummary(ctx, user.ID, total, completed) {
			sent++
		}
	}

	if sent > 0 {
		logrus.WithField("count", sent).Info("Daily summaries sent")
	}
	return sent, nil
}

// SendDeadlineNotification sends a reminder that the task's deadline is near.
func (s *NotificationService) SendDeadlineNotification(ctx context.Context, task models.Task) bool {
	deadline := task.Deadline.UTC()

	title := "⏰ Приближается дедлайн!"
	body := fmt.Sprintf("Задача '%s' должна быть выполнена до %s", task.Title, deadline.Format("02.01.2006 15:04"))
	data := map[string]interface{}{
		"type":       "deadline",
		"task_title": task.Title,
		"deadline":   deadline.Format(time.RFC3339),
		"url":        "/tasks",
	}

	return s.send(ctx, task.UserID, &task.ID, "deadline", title, body, data)
}

// SendDailySummary sends today's task counts to the user.
func (s *NotificationService) SendDailySummary(ctx context.Context, userID primitive.ObjectID, tasksCount, completedCount int64) bool {
	title := "📊 Ежедневная сводка"
	body := fmt.Sprintf("Сегодня у вас %d задач, выполнено: %d", tasksCount, completedCount)
	data := map[string]interface{}{
		"type":            "daily_summary",
		"tasks_count":     tasksCount,
		"completed_count": completedCount,
		"url":             "/dashboard",
	}

	return s.send(ctx, userID, nil, "daily_summary", title, body, data)
}

// SendAchievementNotification congratulates the user on a new achievement.
func (s *NotificationService) SendAchievementNotification(ctx context.Context, userID primitive.ObjectID, achievementName string) bool {
	title := "🏆 Новое достижение!"
	body := fmt.Sprintf("Поздравляем! Вы получили достижение: %s", achievementName)
	data := map[string]interface{}{
		"type":             "achievement",
		"achievement_name": achievementName,
		"url":              "/achievements",
	}

	return s.send(ctx, userID, nil, "achievement", title, body, data)
}

// SendTestNotification lets the user check that push delivery works.
func (s *NotificationService) SendTestNotification(ctx context.Context, userID primitive.ObjectID) bool {
	return s.send(ctx, userID, nil, "test",
		"🧪 Тестовое уведомление",
		"Система push-уведомлений работает корректно!",
		map[string]interface{}{"test": true},
	)
}

// SendSubscriptionEnabledNotification welcomes a freshly subscribed user.
func (s *NotificationService) SendSubscriptionEnabledNotification(ctx context.Context, userID primitive.ObjectID) bool {
	return s.send(ctx, userID, nil, "subscription_enabled",
		"🎉 Уведомления включены!",
		"Теперь вы будете получать напоминания о дедлайнах",
		map[string]interface{}{"type": "subscription_enabled", "url": "/"},
	)
}

// send delivers the notification and, on success, records it in the log.
// Log failures never fail the send.
func (s *NotificationService) send(ctx context.Context, userID primitive.ObjectID, taskID *primitive.ObjectID, notifType, title, body string, data map[string]interface{}) bool {
	if !s.push.Deliver(ctx, userID, title, body, data) {
		return false
	}

	notif := &models.Notification{
		UserID:  userID,
		TaskID:  taskID,
		Type:    notifType,
		Title:   title,
		Message: body,
		SentAt:  s.now().UTC(),
	}
	if err := s.log.CreateNotification(ctx, notif); err != nil {
		logrus.WithError(err).Warn("Failed to record notification in log")
	}

	return true
}
