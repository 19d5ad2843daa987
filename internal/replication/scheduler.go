package replication

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"memcortex/pkg/logger"
)

// Record is one primary-store memory to mirror into the graph
type Record struct {
	MemoryID string
	Text     string
	UserID   string
	Metadata map[string]any
}

// Syncer performs a single idempotent sync of one record into the graph
type Syncer interface {
	SyncMemory(ctx context.Context, memoryID, text, userID string, metadata map[string]any) error
}

// Stats is a snapshot of the scheduler's counters
type Stats struct {
	InFlight int64 `json:"in_flight"`
	Synced   int64 `json:"synced"`
	Failed   int64 `json:"failed"`
}

// Scheduler mirrors newly created primary-store records into the graph
// store in the background. Each record gets an independent task: the caller
// never waits, tasks never block each other, and a task retries with
// exponential backoff (1s, 2s, 4s, ... between failures) up to maxRetries
// attempts. A task that exhausts its retries logs a terminal failure and is
// not rescheduled; the memory stays absent from the graph until some other
// path triggers a successful sync.
type Scheduler struct {
	syncer     Syncer
	logger     *zap.Logger
	maxRetries int
	baseDelay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	inFlight atomic.Int64
	synced   atomic.Int64
	failed   atomic.Int64
}

// NewScheduler creates a scheduler. maxRetries below 1 falls back to the
// default of 7; baseDelay of zero falls back to one second.
func NewScheduler(syncer Syncer, maxRetries int, baseDelay time.Duration) *Scheduler {
	if maxRetries < 1 {
		maxRetries = 7
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		syncer:     syncer,
		logger:     logger.Get(),
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Enqueue schedules a background sync for one record and returns
// immediately
func (s *Scheduler) Enqueue(rec Record) {
	s.inFlight.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Add(-1)
		s.run(rec)
	}()
}

func (s *Scheduler) run(rec Record) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.syncer.SyncMemory(s.ctx, rec.MemoryID, rec.Text, rec.UserID, rec.Metadata)
		if err == nil {
			s.synced.Add(1)
			s.logger.Info("Memory synced to graph store",
				zap.String("memory_id", rec.MemoryID),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", s.maxRetries),
			)
			return
		}

		if attempt == s.maxRetries {
			s.failed.Add(1)
			s.logger.Error("Graph sync failed, retries exhausted",
				zap.String("memory_id", rec.MemoryID),
				zap.Int("attempts", s.maxRetries),
				zap.Error(err),
			)
			return
		}

		wait := s.baseDelay << (attempt - 1)
		s.logger.Warn("Graph sync failed, retrying",
			zap.String("memory_id", rec.MemoryID),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", s.maxRetries),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			timer.Stop()
			s.failed.Add(1)
			s.logger.Warn("Graph sync abandoned on shutdown",
				zap.String("memory_id", rec.MemoryID),
			)
			return
		}
	}
}

// Stats returns a snapshot of the scheduler counters
func (s *Scheduler) Stats() Stats {
	return Stats{
		InFlight: s.inFlight.Load(),
		Synced:   s.synced.Load(),
		Failed:   s.failed.Load(),
	}
}

// Wait blocks until all scheduled tasks have finished
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Shutdown abandons in-flight backoff waits and returns once all tasks have
// exited. Not-yet-successful syncs are lost.
func (s *Scheduler) Shutdown() {
	s.cancel()
	s.wg.Wait()
}
