package api

import "github.com/Intervyou-site/intervyou/domain/entities"

// ValidateRequest asks for the quality gate of a recording
type ValidateRequest struct {
	VideoPath string `json:"video_path" validate:"required"`
}

// AnalyzeRequest submits a recording for background analysis
type AnalyzeRequest struct {
	VideoPath  string `json:"video_path" validate:"required"`
	Transcript string `json:"transcript,omitempty" validate:"max=100000"`
}

// AnalyzeResponse acknowledges a submitted job
type AnalyzeResponse struct {
	JobID string                 `json:"job_id"`
	State entities.PipelineState `json:"state"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
