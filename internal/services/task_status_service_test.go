package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOverdueStore struct {
	count int64
	err   error

	gotNow time.Time
	calls  int
}

func (f *fakeOverdueStore) MarkOverdueTasks(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	f.gotNow = now
	return f.count, f.err
}

func TestUpdateOverdueTasks(t *testing.T) {
	store := &fakeOverdueStore{count: 3}
	svc := NewTaskStatusService(store)

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("UTC+5", 5*3600))
	svc.now = func() time.Time { return fixed }

	count, err := svc.UpdateOverdueTasks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), count)
	assert.Equal(t, fixed.UTC(), store.gotNow, "the cutoff is always evaluated in UTC")
}

func TestUpdateOverdueTasksError(t *testing.T) {
	store := &fakeOverdueStore{err: errors.New("mongo down")}
	svc := NewTaskStatusService(store)

	_, err := svc.UpdateOverdueTasks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update overdue tasks")
}

func TestUpdateOverdueTasksIdempotentPassthrough(t *testing.T) {
	store := &fakeOverdueStore{count: 0}
	svc := NewTaskStatusService(store)

	count, err := svc.UpdateOverdueTasks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 1, store.calls)
}
