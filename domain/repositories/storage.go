package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// ErrJobNotFound is returned when no job matches the given ID
var ErrJobNotFound = errors.New("job not found")

// JobRepository stores analysis jobs and their results
type JobRepository interface {
	Save(ctx context.Context, job *entities.Job) error
	GetByID(ctx context.Context, id string) (*entities.Job, error)
	// DeleteCompletedBefore removes finished jobs completed before cutoff.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
