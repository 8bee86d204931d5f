package ffmpeg

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// ExtractAudio decodes the audio track to mono float PCM at the configured rate.
// The intermediate file is removed on every return path.
func (r *Runner) ExtractAudio(ctx context.Context, asset entities.VideoAsset, maxSeconds float64) (*entities.Waveform, error) {
	tmp, err := os.CreateTemp("", "intervyou-audio-*.f32")
	if err != nil {
		return nil, fmt.Errorf("create temp audio: %w", err)
	}
	name := tmp.Name()
	tmp.Close()
	defer func() {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("Failed to remove temp audio", zap.String("file", name), zap.Error(err))
		}
	}()

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if maxSeconds > 0 {
		args = append(args, "-t", strconv.FormatFloat(maxSeconds, 'f', 3, 64))
	}
	args = append(args,
		"-i", asset.Path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(r.sampleRate),
		"-f", "f32le",
		name,
	)
	if _, err := r.run(ctx, r.ffmpeg, args...); err != nil {
		return nil, fmt.Errorf("extract audio %s: %w", asset.Path, err)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read temp audio: %w", err)
	}
	return &entities.Waveform{Samples: decodeF32LE(data), SampleRate: r.sampleRate}, nil
}

func decodeF32LE(data []byte) []float64 {
	samples := make([]float64, len(data)/4)
	for i := range samples {
		samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:])))
	}
	return samples
}
