package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/repositories"
)

// CleanupService forgets finished jobs once their result TTL has passed
type CleanupService struct {
	repo     repositories.JobRepository
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(repo repositories.JobRepository, ttl, interval time.Duration, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		repo:     repo,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (s *CleanupService) Start() {
	go s.cleanupLoop()
	s.logger.Info("Job cleanup service started", zap.Duration("ttl", s.ttl))
}

// Stop gracefully stops the cleanup service
func (s *CleanupService) Stop() {
	close(s.stopChan)
	<-s.done
	s.logger.Info("Job cleanup service stopped")
}

func (s *CleanupService) cleanupLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce(context.Background())
		}
	}
}

// RunOnce deletes every job that finished more than ttl ago
func (s *CleanupService) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	deleted, err := s.repo.DeleteCompletedBefore(ctx, s.now().Add(-s.ttl))
	if err != nil {
		s.logger.Error("Failed to delete expired jobs", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		s.logger.Info("Job cleanup completed", zap.Int64("deleted", deleted))
	}
	return deleted
}
