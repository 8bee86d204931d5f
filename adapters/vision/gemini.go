package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/config"
)

const emotionPrompt = `You score facial expressions in interview recordings.
Look at the most prominent face in the image and reply with JSON only:
{"face": true|false, "emotions": {"angry": 0-1, "disgust": 0-1, "fear": 0-1, "happy": 0-1, "sad": 0-1, "surprise": 0-1, "neutral": 0-1}}
Set "face" to false and leave "emotions" empty when no face is visible.`

const geminiAttempts = 3

type geminiEmotion struct {
	Face     bool                         `json:"face"`
	Emotions entities.EmotionDistribution `json:"emotions"`
}

// GeminiEmotion classifies emotions with a multimodal Gemini model.
type GeminiEmotion struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiEmotion(ctx context.Context, cfg config.Gemini, logger *zap.Logger) (*GeminiEmotion, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiEmotion{client: client, model: model, logger: logger}, nil
}

// ClassifyEmotion sends the frame as JPEG and parses the JSON scores.
func (g *GeminiEmotion) ClassifyEmotion(ctx context.Context, img image.Image) (entities.EmotionDistribution, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(emotionPrompt),
			genai.NewPartFromBytes(buf.Bytes(), "image/jpeg"),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	}

	var (
		response *genai.GenerateContentResponse
		err      error
	)
	for attempt := 0; attempt < geminiAttempts; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err == nil {
			break
		}
		g.logger.Warn("Failed to classify emotion, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt < geminiAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("gemini emotion: %w", err)
	}
	return parseGeminiEmotion(responseText(response))
}

func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func parseGeminiEmotion(text string) (entities.EmotionDistribution, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "```")), "```")
	if text == "" {
		return nil, errors.New("gemini emotion: empty response")
	}
	var out geminiEmotion
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("gemini emotion decode: %w", err)
	}
	if !out.Face || len(out.Emotions) == 0 {
		return nil, repositories.ErrNoFace
	}
	return knownLabels(out.Emotions), nil
}
