package services

import (
	"context"
	"sync"
	"time"

	"github.com/painfulChen/offercome-sub000/pkg/logging"
)

const (
	defaultSchedulerPeriod = 5 * time.Minute

	healthMaxBacklog   = 100
	healthMaxErrorRate = 0.1
)

// SchedulerHealth is the composite health signal derived from queue backlog
// and scheduler run history.
type SchedulerHealth struct {
	Healthy    bool
	Backlog    int
	RunCount   int64
	ErrorCount int64
	LastRun    time.Time
}

// SyncScheduler is the supervisory timer: on each tick it forces a full
// queue drain if anything is backlogged, independent of the queue's own
// short-interval flush timer.
type SyncScheduler struct {
	queue  *SyncQueue
	period time.Duration

	mu         sync.Mutex
	runCount   int64
	errorCount int64
	lastRun    time.Time
	started    bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewSyncScheduler(queue *SyncQueue, period time.Duration) *SyncScheduler {
	if period <= 0 {
		period = defaultSchedulerPeriod
	}
	return &SyncScheduler{
		queue:  queue,
		period: period,
	}
}

func (s *SyncScheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.period)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.runOnce(context.Background())
			}
		}
	}()
	logging.Logger.Info("sync scheduler started", "period", s.period)
}

func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	s.runCount++
	s.lastRun = time.Now()
	s.mu.Unlock()

	if s.queue.Backlog() == 0 {
		return
	}
	if err := s.queue.FlushAll(ctx); err != nil {
		s.mu.Lock()
		s.errorCount++
		s.mu.Unlock()
		logging.Logger.Error("scheduled drain failed", "error", err)
	}
}

// Health is unhealthy when the backlog is large, the error rate is high, or
// the scheduler has gone stale (no run within twice its period).
func (s *SyncScheduler) Health() SchedulerHealth {
	s.mu.Lock()
	runCount := s.runCount
	errorCount := s.errorCount
	lastRun := s.lastRun
	s.mu.Unlock()

	backlog := s.queue.Backlog()

	healthy := true
	if backlog >= healthMaxBacklog {
		healthy = false
	}
	if runCount > 0 && float64(errorCount)/float64(runCount) >= healthMaxErrorRate {
		healthy = false
	}
	if !lastRun.IsZero() && time.Since(lastRun) > 2*s.period {
		healthy = false
	}

	return SchedulerHealth{
		Healthy:    healthy,
		Backlog:    backlog,
		RunCount:   runCount,
		ErrorCount: errorCount,
		LastRun:    lastRun,
	}
}
