package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"portfolio-backend/internal/github/usecase"
)

// SyncScheduler periodically refreshes the GitHub repo cache
type SyncScheduler struct {
	githubUsecase usecase.GitHubUsecase
	interval      time.Duration
	timeout       time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewSyncScheduler creates a new scheduler. A non-positive interval disables it.
func NewSyncScheduler(githubUsecase usecase.GitHubUsecase, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		githubUsecase: githubUsecase,
		interval:      interval,
		timeout:       time.Minute,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *SyncScheduler) Start() {
	if s.interval <= 0 {
		log.Println("[GitHubScheduler] Sync interval not set, scheduler disabled")
		return
	}

	log.Printf("[GitHubScheduler] Starting repo sync scheduler (interval: %s)", s.interval)

	go func() {
		s.sync()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sync()
			case <-s.stopChan:
				log.Println("[GitHubScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler. It is safe to call more than once.
func (s *SyncScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *SyncScheduler) sync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.githubUsecase.Sync(ctx); err != nil {
		log.Printf("[GitHubScheduler] Sync failed: %v", err)
	}
}
