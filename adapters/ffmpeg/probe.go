package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
}

// Probe reads the container metadata of a recording.
func (r *Runner) Probe(ctx context.Context, path string) (entities.VideoAsset, error) {
	out, err := r.run(ctx, r.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	if err != nil {
		return entities.VideoAsset{}, fmt.Errorf("probe %s: %w", path, err)
	}
	asset, err := parseProbe(out)
	if err != nil {
		return entities.VideoAsset{}, fmt.Errorf("probe %s: %w", path, err)
	}
	asset.Path = path

	r.logger.Debug("Probed video",
		zap.String("path", path),
		zap.Float64("duration", asset.Duration),
		zap.Float64("fps", asset.FPS),
		zap.Int("frames", asset.FrameCount),
		zap.Bool("audio", asset.HasAudio))
	return asset, nil
}

func parseProbe(data []byte) (entities.VideoAsset, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return entities.VideoAsset{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	var asset entities.VideoAsset
	var video *probeStream
	for i := range out.Streams {
		s := &out.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil {
				video = s
			}
		case "audio":
			asset.HasAudio = true
		}
	}
	if video == nil {
		return asset, errors.New("no video stream")
	}

	asset.Width, asset.Height = video.Width, video.Height
	asset.FPS = parseRate(video.AvgFrameRate)
	if asset.FPS == 0 {
		asset.FPS = parseRate(video.RFrameRate)
	}
	asset.Duration = parseSeconds(video.Duration)
	if asset.Duration == 0 {
		asset.Duration = parseSeconds(out.Format.Duration)
	}
	if n, err := strconv.Atoi(video.NbFrames); err == nil && n > 0 {
		asset.FrameCount = n
	} else if asset.FPS > 0 {
		asset.FrameCount = int(math.Round(asset.Duration * asset.FPS))
	}
	return asset, nil
}

// parseRate parses rates such as "30000/1001" or "25"; zero when unknown.
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
