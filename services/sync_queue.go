package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/painfulChen/offercome-sub000/models"
	"github.com/painfulChen/offercome-sub000/pkg/logging"
	"github.com/painfulChen/offercome-sub000/platform/events"
	"github.com/painfulChen/offercome-sub000/utils"
)

const (
	defaultBatchSize     = 20
	defaultFlushInterval = 5 * time.Second
	defaultMaxRetries    = 3
)

// SyncQueueStats is a point-in-time snapshot of queue health counters.
type SyncQueueStats struct {
	Backlog     int
	Flushes     int64
	FlushErrors int64
	Dropped     int64
	LastFlush   time.Time
}

// SyncQueue buffers newly ingested documents and flushes them in batches to
// the durable store. One instance per process; all router partitions share
// it. A size trigger (enqueue reaching batchSize) and a background timer
// both feed FlushBatch, which guards re-entry with a compare-and-set so a
// concurrent trigger is a no-op rather than a race on the buffer.
type SyncQueue struct {
	store         DurableStore
	publisher     *events.EventPublisher
	batchSize     int
	flushInterval time.Duration
	maxRetries    int

	mu          sync.Mutex
	buffer      []*models.QueueItem
	lastFlush   time.Time
	flushes     int64
	flushErrors int64
	dropped     int64

	processing atomic.Bool

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSyncQueue(store DurableStore, publisher *events.EventPublisher, batchSize int, flushInterval time.Duration, maxRetries int) *SyncQueue {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &SyncQueue{
		store:         store,
		publisher:     publisher,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		maxRetries:    maxRetries,
		stopCh:        make(chan struct{}),
	}
}

// Start launches the background flush timer. The timer fires every
// flushInterval and flushes when the buffer is non-empty and no flush has
// succeeded within the interval.
func (q *SyncQueue) Start() {
	q.wg.Add(1)
	go q.run()
}

// Stop halts the timer and drains whatever is buffered.
func (q *SyncQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopCh)
	})
	q.wg.Wait()
	if err := q.FlushAll(context.Background()); err != nil {
		logging.Logger.Error("final drain failed", "error", err)
	}
}

func (q *SyncQueue) run() {
	defer q.wg.Done()
	ticker := time.NewTicker(q.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			q.mu.Lock()
			due := len(q.buffer) > 0 && time.Since(q.lastFlush) >= q.flushInterval
			q.mu.Unlock()
			if due {
				q.FlushBatch(context.Background())
			}
		}
	}
}

// Enqueue snapshots the document and appends it to the buffer. Reaching
// batchSize triggers a flush, fire-and-forget from the caller's view.
func (q *SyncQueue) Enqueue(ctx context.Context, doc *models.Document) bool {
	snapshot := doc.Clone()
	item := &models.QueueItem{
		Document:    *snapshot,
		ContentHash: utils.ContentHash(snapshot.Content, snapshot.Metadata, snapshot.FileName),
		EnqueuedAt:  time.Now(),
	}

	q.mu.Lock()
	q.buffer = append(q.buffer, item)
	full := len(q.buffer) >= q.batchSize
	q.mu.Unlock()

	if full {
		go q.FlushBatch(context.Background())
	}
	return true
}

// FlushBatch writes up to batchSize items from the front of the buffer.
// Returns acquired=false when another flush holds the guard (the call is a
// no-op); err carries the store failure, after retry bookkeeping.
func (q *SyncQueue) FlushBatch(ctx context.Context) (acquired bool, err error) {
	if !q.processing.CompareAndSwap(false, true) {
		return false, nil
	}
	defer q.processing.Store(false)

	q.mu.Lock()
	n := len(q.buffer)
	if n == 0 {
		q.mu.Unlock()
		return true, nil
	}
	if n > q.batchSize {
		n = q.batchSize
	}
	batch := q.buffer[:n:n]
	q.buffer = q.buffer[n:]
	q.mu.Unlock()

	err = q.store.UpsertBatch(ctx, batch)
	if err == nil {
		q.mu.Lock()
		q.flushes++
		q.lastFlush = time.Now()
		q.mu.Unlock()
		for _, item := range batch {
			_ = q.publisher.PublishDocumentEvent(&models.DocumentEvent{
				Type:        models.EventDocumentPersisted,
				DocID:       item.Document.ID,
				StudentID:   item.Document.Metadata.StudentID,
				ContentHash: item.ContentHash,
				Status:      item.Document.Status,
			})
		}
		return true, nil
	}

	// Failed batch: retryable items go back to the FRONT so they run before
	// newer documents; exhausted items are dropped. Best-effort durability.
	var retry []*models.QueueItem
	var lost []*models.QueueItem
	for _, item := range batch {
		item.RetryCount++
		if item.RetryCount < q.maxRetries {
			retry = append(retry, item)
		} else {
			lost = append(lost, item)
		}
	}

	q.mu.Lock()
	q.flushErrors++
	q.dropped += int64(len(lost))
	if len(retry) > 0 {
		q.buffer = append(retry, q.buffer...)
	}
	q.mu.Unlock()

	for _, item := range lost {
		logging.Logger.Error("dropping document after exhausted retries",
			"docID", item.Document.ID,
			"contentHash", item.ContentHash,
			"retries", item.RetryCount,
			"error", err,
		)
		_ = q.publisher.PublishDocumentEvent(&models.DocumentEvent{
			Type:        models.EventSyncFailed,
			DocID:       item.Document.ID,
			StudentID:   item.Document.Metadata.StudentID,
			ContentHash: item.ContentHash,
			Message:     err.Error(),
		})
	}
	return true, err
}

// FlushAll drains the buffer completely, used for forced syncs and
// shutdown. A concurrent size- or timer-triggered flush holding the guard is
// waited out, not treated as done: the loop only exits once the buffer is
// empty or the context expires. Terminates even under persistent store
// failure because the retry cap eventually drops every item.
func (q *SyncQueue) FlushAll(ctx context.Context) error {
	var lastErr error
	for {
		if q.Backlog() == 0 {
			return lastErr
		}
		acquired, err := q.FlushBatch(ctx)
		if !acquired {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Millisecond):
			}
			continue
		}
		if err != nil {
			lastErr = err
		}
	}
}

func (q *SyncQueue) Backlog() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffer)
}

func (q *SyncQueue) Stats() SyncQueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return SyncQueueStats{
		Backlog:     len(q.buffer),
		Flushes:     q.flushes,
		FlushErrors: q.flushErrors,
		Dropped:     q.dropped,
		LastFlush:   q.lastFlush,
	}
}
