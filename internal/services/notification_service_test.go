package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Madiyar4554/StudentPlanner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type pushCall struct {
	userID primitive.ObjectID
	title  string
	body   string
	data   map[string]interface{}
}

type fakePusher struct {
	calls  []pushCall
	result bool
}

func (f *fakePusher) Deliver(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]interface{}) bool {
	f.calls = append(f.calls, pushCall{userID: userID, title: title, body: body, data: data})
	return f.result
}

type fakeNotificationLog struct {
	entries []models.Notification
	err     error
}

func (f *fakeNotificationLog) CreateNotification(ctx context.Context, notif *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *notif)
	return nil
}

// fakeTaskQueries answers the window queries from a fixed task list the way
// the repository would, so the window-union semantics are exercised for real.
type fakeTaskQueries struct {
	tasks []models.Task

	todayTotal     int64
	todayCompleted int64
	overdueCount   int64
}

func (f *fakeTaskQueries) GetTasksDueWithin(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	var out []models.Task
	for _, task := range f.tasks {
		if task.Status == models.TaskStatusCompleted {
			continue
		}
		if task.Deadline.After(from) && !task.Deadline.After(to) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskQueries) GetOverdueTasks(ctx context.Context, now time.Time) ([]models.Task, error) {
	var out []models.Task
	for _, task := range f.tasks {
		if task.Status != models.TaskStatusCompleted && task.Deadline.Before(now) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskQueries) CountTasksInWindow(ctx context.Context, userID primitive.ObjectID, from, to time.Time) (int64, int64, error) {
	return f.todayTotal, f.todayCompleted, nil
}

func (f *fakeTaskQueries) CountOverdue(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error) {
	return f.overdueCount, nil
}

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

type fakeSubscriptionLister struct {
	subs []models.PushSubscription
}

func (f *fakeSubscriptionLister) GetAll(ctx context.Context) ([]models.PushSubscription, error) {
	return f.subs, nil
}

func newTestNotificationService(pusher *fakePusher, tasks *fakeTaskQueries, users *fakeUserStore, subs *fakeSubscriptionLister, now time.Time) (*NotificationService, *fakeNotificationLog) {
	log := &fakeNotificationLog{}
	svc := NewNotificationService(pusher, log, tasks, users, subs)
	svc.now = func() time.Time { return now }
	return svc, log
}

func TestCheckDeadlineRemindersDeduplicatesWindows(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:       primitive.NewObjectID(),
		UserID:   primitive.NewObjectID(),
		Title:    "Сдать лабораторную",
		Status:   models.TaskStatusPending,
		Deadline: now.Add(20 * time.Minute), // inside all three windows
	}

	pusher := &fakePusher{result: true}
	svc, _ := newTestNotificationService(pusher, &fakeTaskQueries{tasks: []models.Task{task}}, nil, nil, now)

	sent, err := svc.CheckDeadlineReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sent)
	require.Len(t, pusher.calls, 1, "a task inside nested windows is notified once per pass")
	assert.Equal(t, task.UserID, pusher.calls[0].userID)
	assert.Equal(t, "⏰ Приближается дедлайн!", pusher.calls[0].title)
	assert.Contains(t, pusher.calls[0].body, "Сдать лабораторную")
}

func TestCheckDeadlineRemindersSkipsDistantTasks(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{ID: primitive.NewObjectID(), Title: "Далёкая", Status: models.TaskStatusPending, Deadline: now.Add(48 * time.Hour)},
		{ID: primitive.NewObjectID(), Title: "Завершённая", Status: models.TaskStatusCompleted, Deadline: now.Add(time.Hour)},
	}

	pusher := &fakePusher{result: true}
	svc, _ := newTestNotificationService(pusher, &fakeTaskQueries{tasks: tasks}, nil, nil, now)

	sent, err := svc.CheckDeadlineReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, pusher.calls)
}

func TestCheckOverdueTasksWholeDaysOnly(t *testing.T) {
	now := time.Date(2024, 3, 2, 13, 0, 0, 0, time.UTC)
	userID := primitive.NewObjectID()
	tasks := []models.Task{
		{ID: primitive.NewObjectID(), UserID: userID, Title: "Сутки прошли", Status: models.TaskStatusOverdue, Deadline: now.Add(-25 * time.Hour)},
		{ID: primitive.NewObjectID(), UserID: userID, Title: "Ещё нет", Status: models.TaskStatusOverdue, Deadline: now.Add(-23 * time.Hour)},
	}

	pusher := &fakePusher{result: true}
	svc, _ := newTestNotificationService(pusher, &fakeTaskQueries{tasks: tasks}, nil, nil, now)

	sent, err := svc.CheckOverdueTasks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sent, "tasks overdue by less than a full day are skipped")
	require.Len(t, pusher.calls, 1)
	assert.Equal(t, "⚠️ Задача просрочена на 1 дн.", pusher.calls[0].title)
	assert.Contains(t, pusher.calls[0].body, "Сутки прошли")
	assert.Equal(t, 1, pusher.calls[0].data["days_overdue"])
}

func TestSendDailySummaries(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	activeID := primitive.NewObjectID()
	inactiveID := primitive.NewObjectID()

	users := &fakeUserStore{users: map[primitive.ObjectID]*models.User{
		activeID:   {ID: activeID, IsActive: true},
		inactiveID: {ID: inactiveID, IsActive: false},
	}}
	subs := &fakeSubscriptionLister{subs: []models.PushSubscription{
		{UserID: activeID},
		{UserID: inactiveID},
	}}
	tasks := &fakeTaskQueries{todayTotal: 3, todayCompleted: 1}

	pusher := &fakePusher{result: true}
	svc, _ := newTestNotificationService(pusher, tasks, users, subs, now)

	sent, err := svc.SendDailySummaries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sent, "inactive users are skipped")
	require.Len(t, pusher.calls, 1)
	assert.Equal(t, activeID, pusher.calls[0].userID)
	assert.Equal(t, "📊 Ежедневная сводка", pusher.calls[0].title)
	assert.Equal(t, "Сегодня у вас 3 задач, выполнено: 1", pusher.calls[0].body)
}

func TestSendRecordsNotificationLog(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	userID := primitive.NewObjectID()

	pusher := &fakePusher{result: true}
	svc, log := newTestNotificationService(pusher, &fakeTaskQueries{}, nil, nil, now)

	ok := svc.SendTestNotification(context.Background(), userID)
	require.True(t, ok)

	require.Len(t, log.entries, 1)
	assert.Equal(t, "test", log.entries[0].Type)
	assert.Equal(t, userID, log.entries[0].UserID)
	assert.Equal(t, now, log.entries[0].SentAt)
}

func TestSendSkipsLogWhenDeliveryFails(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pusher := &fakePusher{result: false}
	svc, log := newTestNotificationService(pusher, &fakeTaskQueries{}, nil, nil, now)

	ok := svc.SendTestNotification(context.Background(), primitive.NewObjectID())
	assert.False(t, ok)
	assert.Empty(t, log.entries)
}

func TestSendToleratesLogFailure(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pusher := &fakePusher{result: true}
	log := &fakeNotificationLog{err: errors.New("mongo down")}
	svc := NewNotificationService(pusher, log, &fakeTaskQueries{}, nil, nil)
	svc.now = func() time.Time { return now }

	ok := svc.SendTestNotification(context.Background(), primitive.NewObjectID())
	assert.True(t, ok, "a log write failure must not fail the delivery")
}
