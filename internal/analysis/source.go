package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
)

// Source gives each plugin its own decoders over one recording.
type Source struct {
	Asset      entities.VideoAsset
	Transcript string

	frames repositories.FrameSource
	audio  repositories.AudioExtractor
	logger *zap.Logger
}

// NewSource binds a probed asset to its decoders
func NewSource(asset entities.VideoAsset, transcript string, frames repositories.FrameSource, audio repositories.AudioExtractor, logger *zap.Logger) *Source {
	return &Source{
		Asset:      asset,
		Transcript: transcript,
		frames:     frames,
		audio:      audio,
		logger:     logger,
	}
}

// Audio decodes the whole audio track.
func (s *Source) Audio(ctx context.Context) (*entities.Waveform, error) {
	if s.audio == nil {
		return nil, fmt.Errorf("audio decoder: %w", ErrModalityUnavailable)
	}
	if !s.Asset.HasAudio {
		return nil, fmt.Errorf("recording has no audio track: %w", ErrNoSamples)
	}
	return s.audio.ExtractAudio(ctx, s.Asset, 0)
}

// Walk visits every stride-th frame in time order. A decode error mid-stream
// ends the walk early and keeps what was read. fn returning an error aborts.
func (s *Source) Walk(ctx context.Context, modality string, stride int, fn func(entities.Frame) error) (int, error) {
	if s.frames == nil {
		return 0, fmt.Errorf("frame decoder: %w", ErrModalityUnavailable)
	}
	it, err := s.frames.Frames(ctx, s.Asset, stride)
	if err != nil {
		return 0, fmt.Errorf("open frames: %w", err)
	}
	defer it.Close()

	read := 0
	for {
		if err := ctx.Err(); err != nil {
			return read, err
		}
		frame, err := it.Next()
		if errors.Is(err, io.EOF) {
			return read, nil
		}
		if err != nil {
			s.logger.Warn("Frame decoding stopped early",
				zap.String("modality", modality),
				zap.Int("framesRead", read),
				zap.Error(err))
			return read, nil
		}
		read++
		if err := fn(frame); err != nil {
			return read, err
		}
	}
}
