package vision

import (
	"context"
	"image"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/config"
)

// --- Emotion (/emotion) ---
type emotionResp struct {
	Faces []struct {
		Box      []int                        `json:"box"`
		Emotions entities.EmotionDistribution `json:"emotions"`
	} `json:"faces"`
}

// EmotionClient calls an emotion CNN model service.
type EmotionClient struct {
	modelClient
}

func NewEmotionClient(cfg config.Service) *EmotionClient {
	return &EmotionClient{newModelClient(cfg.URL, cfg.Timeout)}
}

// ClassifyEmotion scores the first face in img. Unknown labels are dropped.
func (c *EmotionClient) ClassifyEmotion(ctx context.Context, img image.Image) (entities.EmotionDistribution, error) {
	var out emotionResp
	if err := c.postFrame(ctx, "/emotion", img, &out); err != nil {
		return nil, err
	}
	if len(out.Faces) == 0 {
		return nil, repositories.ErrNoFace
	}
	return knownLabels(out.Faces[0].Emotions), nil
}

func knownLabels(in entities.EmotionDistribution) entities.EmotionDistribution {
	dist := make(entities.EmotionDistribution, len(entities.EmotionLabels))
	for _, label := range entities.EmotionLabels {
		if v, ok := in[label]; ok {
			dist[label] = min(max(v, 0), 1)
		}
	}
	return dist
}
