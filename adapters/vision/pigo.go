// Package vision holds the face and emotion model backends: the in-process
// pigo face detector and clients for the face-mesh and emotion model services.
package vision

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"

	pigo "github.com/esimov/pigo/core"
	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/internal/config"
)

// PigoDetector is a lightweight pixel-intensity-comparison face detector.
type PigoDetector struct {
	classifier *pigo.Pigo
	minSize    int
	minScore   float32
	logger     *zap.Logger
}

// LoadPigoDetector reads a pigo cascade file from disk.
func LoadPigoDetector(cfg config.Vision, logger *zap.Logger) (*PigoDetector, error) {
	cascade, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("read face cascade: %w", err)
	}
	return NewPigoDetector(cascade, cfg, logger)
}

// NewPigoDetector unpacks a cascade already in memory.
func NewPigoDetector(cascade []byte, cfg config.Vision, logger *zap.Logger) (*PigoDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpack face cascade: %w", err)
	}
	minSize := cfg.MinFaceSize
	if minSize <= 0 {
		minSize = 40
	}
	return &PigoDetector{
		classifier: classifier,
		minSize:    minSize,
		minScore:   float32(cfg.MinFaceScore),
		logger:     logger,
	}, nil
}

// DetectFaces returns the faces in img, best score first.
func (d *PigoDetector) DetectFaces(ctx context.Context, img image.Image) ([]entities.FaceBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	cols, rows := b.Dx(), b.Dy()
	params := pigo.CascadeParams{
		MinSize:     d.minSize,
		MaxSize:     max(cols, rows),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	faces := make([]entities.FaceBox, 0, len(dets))
	for _, det := range dets {
		if det.Q < d.minScore {
			continue
		}
		faces = append(faces, entities.FaceBox{
			CenterX: float64(det.Col),
			CenterY: float64(det.Row),
			Size:    float64(det.Scale),
			Score:   float64(det.Q),
		})
	}
	sort.Slice(faces, func(i, j int) bool { return faces[i].Score > faces[j].Score })
	return faces, nil
}
