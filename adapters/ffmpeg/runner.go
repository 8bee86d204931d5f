// Package ffmpeg decodes interview recordings with the ffmpeg and ffprobe
// binaries. Every call starts its own process, so decoders are independent.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/internal/config"
)

// Runner implements the media repositories on top of ffmpeg.
type Runner struct {
	ffmpeg     string
	ffprobe    string
	sampleRate int
	logger     *zap.Logger
}

// NewRunner creates a Runner. Empty binary paths fall back to $PATH lookup.
func NewRunner(cfg config.Media, logger *zap.Logger) *Runner {
	r := &Runner{
		ffmpeg:     cfg.FFmpegPath,
		ffprobe:    cfg.FFprobePath,
		sampleRate: cfg.SampleRate,
		logger:     logger,
	}
	if strings.TrimSpace(r.ffmpeg) == "" {
		r.ffmpeg = "ffmpeg"
	}
	if strings.TrimSpace(r.ffprobe) == "" {
		r.ffprobe = "ffprobe"
	}
	if r.sampleRate <= 0 {
		r.sampleRate = 16000
	}
	return r
}

// Available reports whether both binaries can be found
func (r *Runner) Available() error {
	for _, bin := range []string{r.ffmpeg, r.ffprobe} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found: %w", bin, err)
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
