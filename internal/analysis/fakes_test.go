package analysis

import (
	"context"
	"errors"
	"image"
	"io"
	"math"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/geometry"
)

type fakeProber struct {
	asset entities.VideoAsset
	err   error
}

func (p *fakeProber) Probe(_ context.Context, path string) (entities.VideoAsset, error) {
	if p.err != nil {
		return entities.VideoAsset{}, p.err
	}
	a := p.asset
	a.Path = path
	return a, nil
}

// fakeFrames yields uniform frames whose grey level is given by shade.
type fakeFrames struct {
	shade func(index int) uint8
}

func (f *fakeFrames) Frames(_ context.Context, asset entities.VideoAsset, stride int) (repositories.FrameIterator, error) {
	return &fakeIterator{asset: asset, stride: stride, shade: f.shade}, nil
}

type fakeIterator struct {
	asset  entities.VideoAsset
	stride int
	next   int
	shade  func(int) uint8
}

func (it *fakeIterator) Next() (entities.Frame, error) {
	if it.next >= it.asset.FrameCount {
		return entities.Frame{}, io.EOF
	}
	idx := it.next
	it.next += it.stride

	img := image.NewRGBA(image.Rect(0, 0, it.asset.Width, it.asset.Height))
	var v uint8 = 128
	if it.shade != nil {
		v = it.shade(idx)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return entities.Frame{Index: idx, Timestamp: float64(idx) / it.asset.FPS, Image: img}, nil
}

func (it *fakeIterator) Close() error { return nil }

type fakeAudio struct {
	amplitude float64
	err       error
}

func (a *fakeAudio) ExtractAudio(_ context.Context, asset entities.VideoAsset, maxSeconds float64) (*entities.Waveform, error) {
	if a.err != nil {
		return nil, a.err
	}
	const sr = 16000
	seconds := asset.Duration
	if maxSeconds > 0 {
		seconds = math.Min(seconds, maxSeconds)
	}
	samples := make([]float64, int(seconds*sr))
	for i := range samples {
		samples[i] = a.amplitude * math.Sin(2*math.Pi*200*float64(i)/sr)
	}
	return &entities.Waveform{Samples: samples, SampleRate: sr}, nil
}

type fakeDetector struct {
	face bool
}

func (d *fakeDetector) DetectFaces(_ context.Context, img image.Image) ([]entities.FaceBox, error) {
	if !d.face {
		return nil, nil
	}
	b := img.Bounds()
	return []entities.FaceBox{{
		CenterX: float64(b.Dx()) / 2,
		CenterY: float64(b.Dy()) / 2,
		Size:    float64(b.Dy()) / 2,
		Score:   10,
	}}, nil
}

type fakeClassifier struct {
	dist entities.EmotionDistribution
	err  error
}

func (c *fakeClassifier) ClassifyEmotion(context.Context, image.Image) (entities.EmotionDistribution, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.dist, nil
}

type noFaceMesh struct{}

func (noFaceMesh) DetectLandmarks(context.Context, image.Image) (*entities.FaceLandmarks, error) {
	return nil, repositories.ErrNoFace
}

// Frame shades understood by fakeFaceMesh and fakeShadeClassifier.
const (
	shadeNoFace  uint8 = 0
	shadeFrontal uint8 = 128
	shadeAside   uint8 = 200
)

const meshW, meshH = 640, 480

// faceModel mirrors the head-pose template: nose tip, chin, eye outer
// corners, mouth corners.
var faceModel = [6][3]float64{
	{0, 0, 0},
	{0, 330, 65},
	{-225, -170, 135},
	{225, -170, 135},
	{-150, 150, 125},
	{150, 150, 125},
}

// frontalMesh lays out a 478-point mesh of a head facing the camera with the
// eyes level with the frame centre. Both eyes are 40px wide and eyeGap px
// tall; the irises sit irisShift px right of the eye centre.
func frontalMesh(eyeGap, irisShift float64) *entities.FaceLandmarks {
	lm := &entities.FaceLandmarks{Points: make([]entities.Landmark, 478)}
	set := func(i int, x, y float64) {
		lm.Points[i] = entities.Landmark{X: x / meshW, Y: y / meshH}
	}
	for i, idx := range geometry.PoseLandmarks {
		m := faceModel[i]
		z := m[2] + 2000
		set(idx, meshW*m[0]/z+meshW/2, meshW*(m[1]+170)/z+meshH/2)
	}

	const eyeWidth, eyeY = 40.0, meshH / 2
	ring := func(indices [6]int, x0 float64) {
		set(indices[0], x0, eyeY)
		set(indices[1], x0+eyeWidth/3, eyeY-eyeGap/2)
		set(indices[2], x0+2*eyeWidth/3, eyeY-eyeGap/2)
		set(indices[3], x0+eyeWidth, eyeY)
		set(indices[4], x0+2*eyeWidth/3, eyeY+eyeGap/2)
		set(indices[5], x0+eyeWidth/3, eyeY+eyeGap/2)
	}
	rightOuter := lm.Points[geometry.RightEyeRing[0]].X * meshW
	leftOuter := lm.Points[geometry.LeftEyeRing[3]].X * meshW
	ring(geometry.RightEyeRing, rightOuter)
	ring(geometry.LeftEyeRing, leftOuter-eyeWidth)

	iris := rightOuter + eyeWidth/2 + irisShift
	for _, idx := range append(append([]int{}, geometry.LeftIris...), geometry.RightIris...) {
		set(idx, iris, eyeY)
	}
	return lm
}

func shadeOf(img image.Image) uint8 {
	r, _, _, _ := img.At(0, 0).RGBA()
	return uint8(r >> 8)
}

// fakeFaceMesh finds no face on shadeNoFace frames and irises turned right
// on shadeAside frames.
type fakeFaceMesh struct {
	eyeGap float64
}

func (m fakeFaceMesh) DetectLandmarks(_ context.Context, img image.Image) (*entities.FaceLandmarks, error) {
	switch shadeOf(img) {
	case shadeNoFace:
		return nil, repositories.ErrNoFace
	case shadeAside:
		return frontalMesh(m.eyeGap, 10), nil
	}
	return frontalMesh(m.eyeGap, 0), nil
}

// fakeShadeClassifier reads happy on shadeFrontal frames and sad otherwise.
type fakeShadeClassifier struct{}

func (fakeShadeClassifier) ClassifyEmotion(_ context.Context, img image.Image) (entities.EmotionDistribution, error) {
	if shadeOf(img) == shadeFrontal {
		return entities.EmotionDistribution{entities.EmotionHappy: 0.9, entities.EmotionNeutral: 0.1}, nil
	}
	return entities.EmotionDistribution{entities.EmotionSad: 0.8, entities.EmotionNeutral: 0.2}, nil
}

type fakeSTT struct {
	text  string
	err   error
	calls int
}

func (s *fakeSTT) TranscribeAudio(context.Context, []byte, repositories.AudioConfig) (string, error) {
	s.calls++
	return s.text, s.err
}

var errBroken = errors.New("broken")
