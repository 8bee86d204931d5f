package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PipelineState is a state of the batch analysis pipeline
type PipelineState string

const (
	StateCreated    PipelineState = "created"
	StateValidating PipelineState = "validating"
	StateInvalid    PipelineState = "invalid"
	StateExtracting PipelineState = "extracting"
	StateFusing     PipelineState = "fusing"
	StateDone       PipelineState = "done"
	// StateFailed covers unreadable input and cancelled runs.
	StateFailed PipelineState = "failed"
)

var transitions = map[PipelineState][]PipelineState{
	StateCreated:    {StateValidating, StateFailed},
	StateValidating: {StateInvalid, StateExtracting, StateFailed},
	StateExtracting: {StateFusing, StateFailed},
	StateFusing:     {StateDone, StateFailed},
}

// CanTransition reports whether the pipeline may move from one state to another
func CanTransition(from, to PipelineState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s PipelineState) IsTerminal() bool {
	return s == StateInvalid || s == StateDone || s == StateFailed
}

// Job is one queued batch analysis
type Job struct {
	ID          string          `json:"id" bson:"_id"`
	VideoPath   string          `json:"video_path" bson:"video_path"`
	Transcript  string          `json:"-" bson:"transcript,omitempty"`
	State       PipelineState   `json:"state" bson:"state"`
	Result      *AnalysisResult `json:"result,omitempty" bson:"result,omitempty"`
	Error       string          `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// NewJob creates a job in the created state
func NewJob(videoPath, transcript string) *Job {
	now := time.Now()
	return &Job{
		ID:         uuid.New().String(),
		VideoPath:  videoPath,
		Transcript: transcript,
		State:      StateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks the job's required fields
func (j *Job) Validate() error {
	if j.ID == "" {
		return errors.New("job ID is required")
	}
	if j.VideoPath == "" {
		return errors.New("video path is required")
	}
	return nil
}

// Transition moves the job to the next pipeline state
func (j *Job) Transition(to PipelineState) error {
	if !CanTransition(j.State, to) {
		return fmt.Errorf("invalid job transition %s -> %s", j.State, to)
	}
	now := time.Now()
	j.State = to
	j.UpdatedAt = now
	if to.IsTerminal() {
		j.CompletedAt = &now
	}
	return nil
}

// IsExpired reports whether a finished job is older than ttl
func (j *Job) IsExpired(ttl time.Duration, now time.Time) bool {
	if j.CompletedAt == nil {
		return false
	}
	return now.Sub(*j.CompletedAt) > ttl
}
