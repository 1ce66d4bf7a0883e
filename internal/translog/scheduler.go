package translog

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs transcript cleanup on a fixed interval.
type Scheduler struct {
	cleaner  *Cleaner
	logger   *zap.Logger
	ticker   *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler that triggers the cleaner every
// interval.
func NewScheduler(cleaner *Cleaner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cleaner: cleaner,
		logger:  logger,
		ticker:  time.NewTicker(interval),
		stop:    make(chan struct{}),
	}
}

// Start begins the cleanup loop. An initial cleanup runs immediately.
func (s *Scheduler) Start() {
	go s.runCleanup()

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.runCleanup()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Scheduler) runCleanup() {
	deleted, err := s.cleaner.Cleanup()
	if err != nil {
		s.logger.Warn("transcript cleanup failed", zap.Error(err))
	} else if deleted > 0 {
		s.logger.Info("cleaned up old transcripts", zap.Int("deleted", deleted))
	}
}

// Stop halts the cleanup loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stop)
	})
}
