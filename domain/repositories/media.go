package repositories

import (
	"context"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// MediaProber reads container metadata without decoding frames
type MediaProber interface {
	Probe(ctx context.Context, path string) (entities.VideoAsset, error)
}

// FrameSource opens an independent decoder over a video
type FrameSource interface {
	// Frames yields every stride-th frame (index % stride == 0) in time order.
	Frames(ctx context.Context, asset entities.VideoAsset, stride int) (FrameIterator, error)
}

// FrameIterator walks decoded frames. Next returns io.EOF after the last frame.
type FrameIterator interface {
	Next() (entities.Frame, error)
	Close() error
}

// AudioExtractor decodes the audio track to mono PCM.
// maxSeconds limits the decoded length; zero decodes the full track.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, asset entities.VideoAsset, maxSeconds float64) (*entities.Waveform, error)
}
