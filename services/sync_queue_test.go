package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painfulChen/offercome-sub000/models"
)

// fakeStore records upserted items keyed by content hash and can be told to
// fail a number of upcoming writes.
type fakeStore struct {
	mu       sync.Mutex
	rows     map[string]models.QueueItem
	calls    int
	failNext int
	failAll  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]models.QueueItem)}
}

func (f *fakeStore) UpsertBatch(_ context.Context, items []*models.QueueItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll || f.failNext > 0 {
		if f.failNext > 0 {
			f.failNext--
		}
		return errors.New("durable store unavailable")
	}
	for _, item := range items {
		f.rows[item.ContentHash] = *item
	}
	return nil
}

func (f *fakeStore) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) row(contentHash string) (models.QueueItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.rows[contentHash]
	return item, ok
}

func testDoc(content string) *models.Document {
	return &models.Document{
		ID:       "doc-" + Fingerprint(content),
		Title:    "t",
		Type:     models.DocTypeText,
		FileName: "a.txt",
		Content:  content,
		Chunks:   BuildChunks(content, 500),
		Status:   models.StatusActive,
	}
}

func TestEnqueueBelowBatchSizeDoesNotFlush(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 5, time.Hour, 0)

	for i := 0; i < 4; i++ {
		require.True(t, q.Enqueue(context.Background(), testDoc(fmt.Sprintf("content %d", i))))
	}

	assert.Equal(t, 4, q.Backlog())
	assert.Equal(t, 0, store.callCount())
}

func TestEnqueueReachingBatchSizeTriggersFlush(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 3, time.Hour, 0)

	for i := 0; i < 3; i++ {
		q.Enqueue(context.Background(), testDoc(fmt.Sprintf("content %d", i)))
	}

	// the size-triggered flush is fire-and-forget
	require.Eventually(t, func() bool {
		return store.rowCount() == 3 && q.Backlog() == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, store.callCount())
}

func TestTimerTriggersFlush(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, 30*time.Millisecond, 0)
	q.Start()
	defer q.Stop()

	q.Enqueue(context.Background(), testDoc("timed out content"))

	require.Eventually(t, func() bool {
		return store.rowCount() == 1 && q.Backlog() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFlushBatchEmptyBufferIsNoop(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 5, time.Hour, 0)

	acquired, err := q.FlushBatch(context.Background())
	assert.True(t, acquired)
	assert.NoError(t, err)
	assert.Equal(t, 0, store.callCount())
}

func TestFlushBatchReentryIsNoop(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 5, time.Hour, 0)
	q.Enqueue(context.Background(), testDoc("pending"))

	// simulate a concurrent flush holding the guard
	require.True(t, q.processing.CompareAndSwap(false, true))
	acquired, err := q.FlushBatch(context.Background())
	assert.False(t, acquired)
	assert.NoError(t, err)
	assert.Equal(t, 0, store.callCount())
	assert.Equal(t, 1, q.Backlog())
	q.processing.Store(false)
}

func TestFailedBatchRequeuesToFront(t *testing.T) {
	store := newFakeStore()
	store.failNext = 1
	q := NewSyncQueue(store, nil, 2, time.Hour, 0)

	q.Enqueue(context.Background(), testDoc("first"))
	acquired, err := q.FlushBatch(context.Background())
	require.True(t, acquired)
	require.Error(t, err)

	// the failed item is back in the buffer with its retry recorded
	require.Equal(t, 1, q.Backlog())
	q.mu.Lock()
	assert.Equal(t, 1, q.buffer[0].RetryCount)
	q.mu.Unlock()

	// next flush succeeds
	acquired, err = q.FlushBatch(context.Background())
	require.True(t, acquired)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Backlog())
	assert.Equal(t, 1, store.rowCount())
}

func TestRetryCapDropsAfterThreeFailures(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	q := NewSyncQueue(store, nil, 2, time.Hour, 0)

	q.Enqueue(context.Background(), testDoc("doomed"))

	for i := 0; i < 3; i++ {
		acquired, err := q.FlushBatch(context.Background())
		require.True(t, acquired)
		require.Error(t, err)
	}

	// three consecutive failures exhaust the retries; no fourth attempt
	assert.Equal(t, 0, q.Backlog())
	assert.Equal(t, 3, store.callCount())
	assert.Equal(t, int64(1), q.Stats().Dropped)

	acquired, err := q.FlushBatch(context.Background())
	assert.True(t, acquired)
	assert.NoError(t, err)
	assert.Equal(t, 3, store.callCount())
}

func TestDuplicateContentUpsertsSameRow(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)

	// byte-identical content, metadata and filename: same natural key
	q.Enqueue(context.Background(), testDoc("hello world"))
	q.Enqueue(context.Background(), testDoc("hello world"))
	require.NoError(t, q.FlushAll(context.Background()))

	assert.Equal(t, 1, store.rowCount())
	assert.Equal(t, 0, q.Backlog())
}

func TestFlushAllDrainsMultipleBatches(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)

	for _, content := range []string{"a a", "b b", "c c", "d d", "e e"} {
		q.Enqueue(context.Background(), testDoc(content))
	}
	// shrink the batch after enqueuing so the drain takes several rounds
	q.batchSize = 2

	require.NoError(t, q.FlushAll(context.Background()))
	assert.Equal(t, 5, store.rowCount())
	assert.Equal(t, 0, q.Backlog())
	assert.Equal(t, 3, store.callCount())
}

func TestEnqueueSnapshotsDocument(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)

	doc := testDoc("original content")
	q.Enqueue(context.Background(), doc)

	// mutate after enqueue; the queued snapshot must not change
	doc.Status = models.StatusInactive
	require.NoError(t, q.FlushAll(context.Background()))

	for _, row := range store.rows {
		assert.Equal(t, models.StatusActive, row.Document.Status)
	}
}

func TestStopDrainsBuffer(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)
	q.Start()

	q.Enqueue(context.Background(), testDoc("drain me"))
	q.Stop()

	assert.Equal(t, 1, store.rowCount())
	assert.Equal(t, 0, q.Backlog())
}

func TestFlushAllWaitsOutConcurrentFlush(t *testing.T) {
	store := newFakeStore()
	q := NewSyncQueue(store, nil, 100, time.Hour, 0)
	q.Enqueue(context.Background(), testDoc("blocked behind another flush"))

	// simulate an in-flight size-/timer-triggered flush holding the guard
	require.True(t, q.processing.CompareAndSwap(false, true))
	go func() {
		time.Sleep(30 * time.Millisecond)
		q.processing.Store(false)
	}()

	require.NoError(t, q.FlushAll(context.Background()))
	assert.Equal(t, 1, store.rowCount())
	assert.Equal(t, 0, q.Backlog())
}

func TestFlushAllHonorsContextWhileBlocked(t *testing.T) {
	q := NewSyncQueue(newFakeStore(), nil, 100, time.Hour, 0)
	q.Enqueue(context.Background(), testDoc("stuck behind a hung flush"))

	require.True(t, q.processing.CompareAndSwap(false, true))
	defer q.processing.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.FlushAll(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, q.Backlog())
}

func TestConfiguredMaxRetriesIsHonored(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	q := NewSyncQueue(store, nil, 100, time.Hour, 1)

	q.Enqueue(context.Background(), testDoc("single attempt only"))
	require.Error(t, q.FlushAll(context.Background()))

	assert.Equal(t, 1, store.callCount())
	assert.Equal(t, 0, q.Backlog())
	assert.Equal(t, int64(1), q.Stats().Dropped)
}
