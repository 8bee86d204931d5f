package repositories

import (
	"context"
	"errors"
	"image"

	"github.com/Intervyou-site/intervyou/domain/entities"
)

// ErrNoFace is returned by per-frame models when the frame has no face.
var ErrNoFace = errors.New("no face detected")

// FaceDetector locates faces in a frame
type FaceDetector interface {
	DetectFaces(ctx context.Context, img image.Image) ([]entities.FaceBox, error)
}

// LandmarkDetector returns the dense face mesh of the most prominent face
type LandmarkDetector interface {
	DetectLandmarks(ctx context.Context, img image.Image) (*entities.FaceLandmarks, error)
}

// EmotionClassifier scores facial emotions for the most prominent face
type EmotionClassifier interface {
	ClassifyEmotion(ctx context.Context, img image.Image) (entities.EmotionDistribution, error)
}
