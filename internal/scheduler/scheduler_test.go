package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatusUpdater struct {
	calls int
	count int64
	err   error
}

func (f *fakeStatusUpdater) UpdateOverdueTasks(ctx context.Context) (int64, error) {
	f.calls++
	return f.count, f.err
}

type fakeNotifier struct {
	reminderCalls int
	overdueCalls  int
	summaryCalls  int

	panicOnReminders bool
}

func (f *fakeNotifier) CheckDeadlineReminders(ctx context.Context) (int, error) {
	f.reminderCalls++
	if f.panicOnReminders {
		panic("boom")
	}
	return 0, nil
}

func (f *fakeNotifier) CheckOverdueTasks(ctx context.Context) (int, error) {
	f.overdueCalls++
	return 0, nil
}

func (f *fakeNotifier) SendDailySummaries(ctx context.Context) (int, error) {
	f.summaryCalls++
	return 0, nil
}

func newTestScheduler(status *fakeStatusUpdater, notifier *fakeNotifier, now time.Time) *Scheduler {
	s := New(status, notifier)
	s.now = func() time.Time { return now }
	return s
}

func TestTickRunsPerMinuteWork(t *testing.T) {
	status := &fakeStatusUpdater{}
	notifier := &fakeNotifier{}
	s := newTestScheduler(status, notifier, time.Date(2024, 3, 1, 10, 37, 0, 0, time.UTC))

	s.tick(context.Background())

	assert.Equal(t, 1, status.calls, "overdue transition runs every tick")
	assert.Equal(t, 1, notifier.reminderCalls, "deadline reminders run every tick")
	assert.Equal(t, 0, notifier.overdueCalls, "overdue alerts only fire at minute 0")
	assert.Equal(t, 0, notifier.summaryCalls, "summaries only fire at 09:00 UTC")
}

func TestTickHourlyOverdueAlerts(t *testing.T) {
	status := &fakeStatusUpdater{}
	notifier := &fakeNotifier{}
	s := newTestScheduler(status, notifier, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	s.tick(context.Background())

	assert.Equal(t, 1, notifier.overdueCalls)
	assert.Equal(t, 0, notifier.summaryCalls)
}

func TestTickDailySummaryAtNineUTC(t *testing.T) {
	status := &fakeStatusUpdater{}
	notifier := &fakeNotifier{}
	s := newTestScheduler(status, notifier, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	s.tick(context.Background())

	assert.Equal(t, 1, status.calls)
	assert.Equal(t, 1, notifier.reminderCalls)
	assert.Equal(t, 1, notifier.overdueCalls, "09:00 is also a minute-0 tick")
	assert.Equal(t, 1, notifier.summaryCalls)
}

func TestTickAtNinePastMinuteZeroSkipsSummary(t *testing.T) {
	status := &fakeStatusUpdater{}
	notifier := &fakeNotifier{}
	s := newTestScheduler(status, notifier, time.Date(2024, 3, 1, 9, 1, 0, 0, time.UTC))

	s.tick(context.Background())

	assert.Equal(t, 0, notifier.summaryCalls)
}

func TestTickSurvivesStatusError(t *testing.T) {
	status := &fakeStatusUpdater{err: errors.New("mongo down")}
	notifier := &fakeNotifier{}
	s := newTestScheduler(status, notifier, time.Date(2024, 3, 1, 10, 37, 0, 0, time.UTC))

	s.tick(context.Background())

	assert.Equal(t, 1, notifier.reminderCalls, "a failing stage must not stop the rest of the tick")
}

func TestTickRecoversFromPanic(t *testing.T) {
	status := &fakeStatusUpdater{}
	notifier := &fakeNotifier{panicOnReminders: true}
	s := newTestScheduler(status, notifier, time.Date(2024, 3, 1, 10, 37, 0, 0, time.UTC))

	require.NotPanics(t, func() {
		s.tick(context.Background())
	})
}

func TestRunStopsOnContextCancel(t *testing.T) {
	status := &fakeStatusUpdater{}
	notifier := &fakeNotifier{}
	s := New(status, notifier)
	s.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}

	assert.Greater(t, status.calls, 0, "ticks should have run before cancellation")
}
