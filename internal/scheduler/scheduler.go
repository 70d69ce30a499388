package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/wordvault/api/internal/history"
)

// FlushScheduler periodically flushes pending drill-history buffers to the
// database so quiz activity survives Redis restarts.
type FlushScheduler struct {
	flusher  *history.Flusher
	interval time.Duration

	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	lastCount int
	stopOnce  sync.Once
	stopChan  chan struct{}
}

func NewFlushScheduler(flusher *history.Flusher, interval time.Duration) *FlushScheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &FlushScheduler{
		flusher:  flusher,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the flush loop until the context is canceled or Stop is called.
func (s *FlushScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[Scheduler] Drill history flush every %v", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.setStopped()
			return
		case <-s.stopChan:
			s.setStopped()
			return
		case <-ticker.C:
			count, err := s.flusher.FlushAll(ctx)
			if err != nil {
				log.Printf("[Scheduler] Flush failed: %v", err)
				continue
			}
			s.mu.Lock()
			s.lastRun = time.Now()
			s.lastCount = count
			s.mu.Unlock()
			if count > 0 {
				log.Printf("[Scheduler] Flushed drill history for %d users", count)
			}
		}
	}
}

// Stop terminates the loop; repeated calls are no-ops.
func (s *FlushScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *FlushScheduler) setStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// GetStatus reports the scheduler state for the status endpoint.
func (s *FlushScheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]interface{}{
		"enabled":       true,
		"running":       s.running,
		"interval":      s.interval.String(),
		"lastRun":       s.lastRun,
		"lastUserCount": s.lastCount,
	}
}
