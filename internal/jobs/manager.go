// Package jobs runs batch analyses in the background. Each job follows the
// pipeline state machine and is persisted after every transition.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/analysis"
	"github.com/Intervyou-site/intervyou/internal/config"
)

var (
	// ErrQueueFull is returned when every worker is busy and the queue is full.
	ErrQueueFull = errors.New("analysis queue is full")
	// ErrRateLimited is returned when submissions exceed the configured rate.
	ErrRateLimited = errors.New("too many analysis requests")
	// ErrStopped is returned after Stop.
	ErrStopped = errors.New("job manager stopped")
)

// Pipeline runs one analysis and reports the states it passes through.
type Pipeline interface {
	Analyze(ctx context.Context, path, transcript string, opts ...analysis.RunOption) (*entities.AnalysisResult, error)
}

// Manager owns the worker pool that executes analysis jobs
type Manager struct {
	pipeline Pipeline
	repo     repositories.JobRepository
	limiter  *rate.Limiter
	logger   *zap.Logger

	queue   chan *entities.Job
	workers int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewManager creates a job manager. Call Start to launch the workers.
func NewManager(pipeline Pipeline, repo repositories.JobRepository, cfg config.Jobs, logger *zap.Logger) *Manager {
	limit := rate.Inf
	if cfg.SubmitRate > 0 {
		limit = rate.Limit(cfg.SubmitRate)
	}
	burst := cfg.SubmitBurst
	if burst <= 0 {
		burst = 1
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		pipeline: pipeline,
		repo:     repo,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logger,
		queue:    make(chan *entities.Job, cfg.QueueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines
func (m *Manager) Start() {
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	m.logger.Info("Job manager started", zap.Int("workers", m.workers))
}

// Stop cancels running analyses, waits for the workers to exit and fails
// the jobs still queued
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()

	abandoned := 0
drain:
	for {
		select {
		case job := <-m.queue:
			m.fail(job, fmt.Errorf("analysis cancelled: %w", ErrStopped))
			abandoned++
		default:
			break drain
		}
	}
	m.logger.Info("Job manager stopped", zap.Int("abandoned", abandoned))
}

// Submit persists a new job and queues it for analysis
func (m *Manager) Submit(ctx context.Context, videoPath, transcript string) (*entities.Job, error) {
	job := entities.NewJob(videoPath, transcript)
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if !m.limiter.Allow() {
		return nil, ErrRateLimited
	}
	if err := m.repo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	snapshot := *job

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return nil, ErrStopped
	}

	select {
	case m.queue <- job:
	default:
		m.fail(job, ErrQueueFull)
		return nil, ErrQueueFull
	}

	m.logger.Info("Job submitted", zap.String("jobID", snapshot.ID), zap.String("path", videoPath))
	return &snapshot, nil
}

// Get returns the current state of a job
func (m *Manager) Get(ctx context.Context, id string) (*entities.Job, error) {
	return m.repo.GetByID(ctx, id)
}

func (m *Manager) worker(n int) {
	m.logger.Debug("Worker started", zap.Int("worker", n))
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case job := <-m.queue:
			m.run(job)
		}
	}
}

// run executes one job, saving it on every state change
func (m *Manager) run(job *entities.Job) {
	logger := m.logger.With(zap.String("jobID", job.ID))
	logger.Info("Job started")

	observe := func(state entities.PipelineState) {
		if state.IsTerminal() {
			return
		}
		if err := job.Transition(state); err != nil {
			logger.Warn("Unexpected job transition", zap.Error(err))
			return
		}
		m.save(job)
	}

	result, err := m.pipeline.Analyze(m.ctx, job.VideoPath, job.Transcript, analysis.WithObserver(observe))
	job.Result = result
	if err != nil {
		logger.Error("Job failed", zap.Error(err))
		m.fail(job, err)
		return
	}

	final := entities.StateDone
	if !result.Quality.IsValid {
		final = entities.StateInvalid
	}
	if err := job.Transition(final); err != nil {
		logger.Error("Job finished in an unexpected state", zap.Error(err))
		m.fail(job, err)
		return
	}
	m.save(job)
	logger.Info("Job completed", zap.String("state", string(job.State)))
}

func (m *Manager) fail(job *entities.Job, err error) {
	job.Error = err.Error()
	if transitionErr := job.Transition(entities.StateFailed); transitionErr != nil {
		m.logger.Warn("Cannot mark job failed", zap.String("jobID", job.ID), zap.Error(transitionErr))
	}
	m.save(job)
}

func (m *Manager) save(job *entities.Job) {
	// the request context may be gone; jobs outlive it
	if err := m.repo.Save(context.Background(), job); err != nil {
		m.logger.Error("Failed to save job", zap.String("jobID", job.ID), zap.Error(err))
	}
}
