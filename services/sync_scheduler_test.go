package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnceDrainsBacklog(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)
	sched := NewSyncScheduler(q, time.Minute)

	q.Enqueue(context.Background(), testDoc("scheduled drain one"))
	q.Enqueue(context.Background(), testDoc("scheduled drain two"))

	sched.runOnce(context.Background())

	assert.Equal(t, 2, store.rowCount())
	assert.Equal(t, 0, q.Backlog())

	health := sched.Health()
	assert.Equal(t, int64(1), health.RunCount)
	assert.Equal(t, int64(0), health.ErrorCount)
	assert.WithinDuration(t, time.Now(), health.LastRun, time.Second)
}

func TestRunOnceEmptyBacklogSkipsStore(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)
	sched := NewSyncScheduler(q, time.Minute)

	sched.runOnce(context.Background())

	assert.Equal(t, 0, store.callCount())
	assert.Equal(t, int64(1), sched.Health().RunCount)
}

func TestRunOnceCountsErrors(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)
	sched := NewSyncScheduler(q, time.Minute)

	q.Enqueue(context.Background(), testDoc("doomed doc"))
	sched.runOnce(context.Background())

	health := sched.Health()
	assert.Equal(t, int64(1), health.ErrorCount)
	assert.False(t, health.Healthy)
}

func TestHealthNoHistoryIsHealthy(t *testing.T) {
	q := NewSyncQueue(newFakeStore(), nil, 100, time.Hour, 0)
	sched := NewSyncScheduler(q, time.Minute)

	assert.True(t, sched.Health().Healthy)
}

func TestHealthLargeBacklogIsUnhealthy(t *testing.T) {
	q := NewSyncQueue(newFakeStore(), nil, 1000, time.Hour, 0)
	sched := NewSyncScheduler(q, time.Minute)

	for i := 0; i < healthMaxBacklog; i++ {
		q.Enqueue(context.Background(), testDoc("backlog filler"))
	}

	health := sched.Health()
	assert.False(t, health.Healthy)
	assert.Equal(t, healthMaxBacklog, health.Backlog)
}

func TestHealthStaleSchedulerIsUnhealthy(t *testing.T) {
	q := NewSyncQueue(newFakeStore(), nil, 100, time.Hour, 0)
	sched := NewSyncScheduler(q, 10*time.Millisecond)

	sched.runOnce(context.Background())
	require.True(t, sched.Health().Healthy)

	// staleness threshold is twice the period
	assert.Eventually(t, func() bool {
		return !sched.Health().Healthy
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerTicks(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)
	sched := NewSyncScheduler(q, 20*time.Millisecond)

	q.Enqueue(context.Background(), testDoc("ticked doc"))
	sched.Start()
	defer sched.Stop()

	assert.Eventually(t, func() bool {
		return store.rowCount() == 1 && q.Backlog() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	q := NewSyncQueue(newFakeStore(), nil, 100, time.Hour, 0)
	sched := NewSyncScheduler(q, time.Minute)

	sched.Start()
	sched.Stop()
	sched.Stop()
}
