package stt

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/repositories"
)

// MockSpeechToText returns canned answers sized by the audio length
type MockSpeechToText struct {
	logger *zap.Logger
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{
		logger: logger,
	}
}

// TranscribeAudio implements repositories.SpeechToText
func (s *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	s.logger.Info("Processing speech-to-text",
		zap.Int("audioSize", len(audioData)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding))

	seconds := audioSeconds(len(audioData), config)
	switch {
	case len(audioData) == 0:
		return "", fmt.Errorf("no audio data received")
	case seconds > 30:
		return "In my last role I led a small team that rebuilt our billing service. " +
			"I planned the migration, um, wrote most of the tests and we shipped it without downtime. " +
			"I learned a lot about communicating trade-offs with product managers.", nil
	case seconds > 10:
		return "I enjoy solving hard problems and I am excited about this opportunity.", nil
	default:
		return "Thank you for having me.", nil
	}
}
