// Package memory keeps analysis jobs in process memory. It backs the service
// when no MongoDB is configured.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
)

// JobRepository is an in-memory implementation of repositories.JobRepository
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[string]entities.Job // id -> snapshot
}

// NewJobRepository creates an empty repository
func NewJobRepository() *JobRepository {
	return &JobRepository{
		jobs: make(map[string]entities.Job),
	}
}

// Save stores a snapshot of the job
func (m *JobRepository) Save(_ context.Context, job *entities.Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

// GetByID returns a copy of the stored job
func (m *JobRepository) GetByID(_ context.Context, id string) (*entities.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, repositories.ErrJobNotFound
	}
	return &job, nil
}

// DeleteCompletedBefore removes finished jobs completed before cutoff
func (m *JobRepository) DeleteCompletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, job := range m.jobs {
		if job.State.IsTerminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			deleted++
		}
	}
	return deleted, nil
}

// Count returns the number of stored jobs
func (m *JobRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}
