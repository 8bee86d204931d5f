package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/config"
)

var _ repositories.JobRepository = &JobRepository{}

// TestJobRepository_Integration requires a running MongoDB instance
// (skipped if MONGODB_URI is not set)
func TestJobRepository_Integration(t *testing.T) {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		t.Skip("Skipping MongoDB integration test - MONGODB_URI not set")
	}

	ctx := context.Background()
	logger := zap.NewNop()

	client, err := NewClient(ctx, config.Mongo{URI: mongoURI, Database: "intervyou_test"}, logger)
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		_ = client.Database.Drop(ctx)
		_ = client.Close(ctx)
	}()

	repo := NewJobRepository(client.Database, logger)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}

	t.Run("SaveAndGet", func(t *testing.T) {
		job := entities.NewJob("/videos/a.mp4", "")
		if err := repo.Save(ctx, job); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		_ = job.Transition(entities.StateValidating)
		_ = job.Transition(entities.StateInvalid)
		job.Result = &entities.AnalysisResult{ConfidenceScore: 1.5, Recommendations: []string{"Record a longer video"}}
		if err := repo.Save(ctx, job); err != nil {
			t.Fatalf("Save() update error = %v", err)
		}

		got, err := repo.GetByID(ctx, job.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.State != entities.StateInvalid || got.Result == nil || got.Result.ConfidenceScore != 1.5 {
			t.Errorf("GetByID() = %+v", got)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, repositories.ErrJobNotFound) {
			t.Errorf("error = %v, want ErrJobNotFound", err)
		}
	})

	t.Run("DeleteCompletedBefore", func(t *testing.T) {
		running := entities.NewJob("/videos/b.mp4", "")
		_ = running.Transition(entities.StateValidating)
		if err := repo.Save(ctx, running); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		deleted, err := repo.DeleteCompletedBefore(ctx, time.Now().Add(time.Minute))
		if err != nil {
			t.Fatalf("DeleteCompletedBefore() error = %v", err)
		}
		if deleted != 1 {
			t.Errorf("deleted = %d, want 1", deleted)
		}
		if _, err := repo.GetByID(ctx, running.ID); err != nil {
			t.Errorf("running job removed: %v", err)
		}
	})
}
