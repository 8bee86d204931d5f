package analysis

import (
	"errors"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

var (
	// ErrUnreadableInput means the recording could not be opened at all.
	ErrUnreadableInput = errors.New("unreadable input")
	// ErrModalityUnavailable means the modality's backing model is absent.
	ErrModalityUnavailable = errors.New("modality unavailable")
	// ErrNoSamples means every sample of a modality was skipped.
	ErrNoSamples = errors.New("no usable samples")
)

// ErrorKind classifies why a modality has no measurement.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "modality_unavailable"
	KindNoSamples   ErrorKind = "no_samples"
	KindFailed      ErrorKind = "failed"
)

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrModalityUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrNoSamples):
		return KindNoSamples
	default:
		return KindFailed
	}
}

func statusOf(err error) entities.ModalityStatus {
	if err == nil {
		return entities.ModalityStatus{Measured: true}
	}
	return entities.ModalityStatus{ErrorKind: string(kindOf(err)), Error: err.Error()}
}
