package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
)

// Frames starts a decoder that emits every stride-th frame as raw RGBA.
func (r *Runner) Frames(ctx context.Context, asset entities.VideoAsset, stride int) (repositories.FrameIterator, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if stride < 1 {
		stride = 1
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-noautorotate", "-i", asset.Path}
	if stride > 1 {
		args = append(args, "-vf", fmt.Sprintf(`select=not(mod(n\,%d))`, stride), "-vsync", "0")
	}
	args = append(args, "-an", "-f", "rawvideo", "-pix_fmt", "rgba", "pipe:1")

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...) //nolint:gosec
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &frameIterator{
		cmd:    cmd,
		cancel: cancel,
		stdout: stdout,
		stderr: stderr,
		asset:  asset,
		stride: stride,
		size:   asset.Width * asset.Height * 4,
	}, nil
}

type frameIterator struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout io.Reader
	stderr *bytes.Buffer
	asset  entities.VideoAsset
	stride int
	size   int
	read   int
	done   bool
}

func (it *frameIterator) Next() (entities.Frame, error) {
	if it.done {
		return entities.Frame{}, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, it.asset.Width, it.asset.Height))
	if _, err := io.ReadFull(it.stdout, img.Pix); err != nil {
		it.done = true
		werr := it.wait()
		if errors.Is(err, io.EOF) {
			if werr != nil {
				return entities.Frame{}, werr
			}
			return entities.Frame{}, io.EOF
		}
		return entities.Frame{}, errors.Join(fmt.Errorf("read frame %d: %w", it.read, err), werr)
	}

	index := it.read * it.stride
	it.read++
	return entities.Frame{
		Index:     index,
		Timestamp: float64(index) / it.asset.FPS,
		Image:     img,
	}, nil
}

func (it *frameIterator) wait() error {
	if err := it.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(it.stderr.String()))
	}
	return nil
}

// Close stops the decoder. It is safe to call after the last frame.
func (it *frameIterator) Close() error {
	it.cancel()
	if !it.done {
		it.done = true
		_ = it.cmd.Wait()
	}
	return nil
}
