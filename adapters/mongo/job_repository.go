package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
)

const jobsCollection = "analyses"

// JobRepository stores analysis jobs and their results in MongoDB
type JobRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewJobRepository creates a new MongoDB job repository
func NewJobRepository(db *mongo.Database, logger *zap.Logger) *JobRepository {
	return &JobRepository{
		collection: db.Collection(jobsCollection),
		logger:     logger,
	}
}

// EnsureIndexes creates the index used by result expiry
func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "state", Value: 1}, {Key: "completed_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create job indexes: %w", err)
	}
	return nil
}

// Save implements repositories.JobRepository by upserting the whole job
func (r *JobRepository) Save(ctx context.Context, job *entities.Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": job.ID},
		job,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

// GetByID implements repositories.JobRepository
func (r *JobRepository) GetByID(ctx context.Context, id string) (*entities.Job, error) {
	if id == "" {
		return nil, errors.New("job ID cannot be empty")
	}

	var job entities.Job
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return &job, nil
}

// DeleteCompletedBefore implements repositories.JobRepository
func (r *JobRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"state": bson.M{"$in": []entities.PipelineState{
			entities.StateInvalid, entities.StateDone, entities.StateFailed,
		}},
		"completed_at": bson.M{"$lt": cutoff},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired jobs: %w", err)
	}
	if result.DeletedCount > 0 {
		r.logger.Info("Deleted expired jobs", zap.Int64("count", result.DeletedCount))
	}
	return result.DeletedCount, nil
}
