package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
)

var _ repositories.JobRepository = &JobRepository{}

func TestJobRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository()

	job := entities.NewJob("/videos/a.mp4", "hello")
	if err := repo.Save(ctx, job); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// later mutations of the caller's job are not visible until saved
	_ = job.Transition(entities.StateValidating)
	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.State != entities.StateCreated {
		t.Errorf("state = %s, want created", got.State)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, repositories.ErrJobNotFound) {
		t.Errorf("error = %v, want ErrJobNotFound", err)
	}
	if err := repo.Save(ctx, &entities.Job{}); err == nil {
		t.Error("Save() of an invalid job succeeded")
	}
}

func TestJobRepositoryDeleteCompletedBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository()

	done := entities.NewJob("/videos/done.mp4", "")
	for _, s := range []entities.PipelineState{entities.StateValidating, entities.StateExtracting, entities.StateFusing, entities.StateDone} {
		if err := done.Transition(s); err != nil {
			t.Fatalf("Transition(%s) error = %v", s, err)
		}
	}
	running := entities.NewJob("/videos/running.mp4", "")
	_ = running.Transition(entities.StateValidating)

	for _, j := range []*entities.Job{done, running} {
		if err := repo.Save(ctx, j); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	deleted, err := repo.DeleteCompletedBefore(ctx, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("DeleteCompletedBefore() error = %v", err)
	}
	if deleted != 1 || repo.Count() != 1 {
		t.Errorf("deleted = %d, remaining = %d, want 1 and 1", deleted, repo.Count())
	}
	if _, err := repo.GetByID(ctx, running.ID); err != nil {
		t.Errorf("running job removed: %v", err)
	}
}
