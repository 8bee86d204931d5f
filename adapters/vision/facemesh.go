package vision

import (
	"context"
	"image"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/config"
)

// --- Face mesh (/landmarks) ---
type landmarksResp struct {
	Faces []entities.FaceLandmarks `json:"faces"`
}

// FaceMeshClient calls the dense face-mesh model service.
type FaceMeshClient struct {
	modelClient
}

func NewFaceMeshClient(cfg config.Service) *FaceMeshClient {
	return &FaceMeshClient{newModelClient(cfg.URL, cfg.Timeout)}
}

// DetectLandmarks returns the mesh of the first face, or ErrNoFace.
func (c *FaceMeshClient) DetectLandmarks(ctx context.Context, img image.Image) (*entities.FaceLandmarks, error) {
	var out landmarksResp
	if err := c.postFrame(ctx, "/landmarks", img, &out); err != nil {
		return nil, err
	}
	if len(out.Faces) == 0 || len(out.Faces[0].Points) == 0 {
		return nil, repositories.ErrNoFace
	}
	return &out.Faces[0], nil
}
