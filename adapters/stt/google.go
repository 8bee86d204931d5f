package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/repositories"
)

// syncLimitSeconds is the longest audio sent to the synchronous Recognize call.
const syncLimitSeconds = 55

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	client *speech.Client
	logger *zap.Logger
}

// NewGoogleSpeechToText creates a client using application default credentials
func NewGoogleSpeechToText(ctx context.Context, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleSpeechToText{client: client, logger: logger}, nil
}

// Close releases the underlying gRPC connection
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// TranscribeAudio converts a whole recording to text. Short audio uses the
// synchronous API, longer audio a long-running operation.
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("no audio data received")
	}
	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return "", err
	}

	recognitionConfig := &speechpb.RecognitionConfig{
		Encoding:                   encoding,
		SampleRateHertz:            int32(config.SampleRate),
		LanguageCode:               config.Language,
		EnableAutomaticPunctuation: true,
	}
	audio := &speechpb.RecognitionAudio{
		AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
	}

	var results []*speechpb.SpeechRecognitionResult
	if audioSeconds(len(audioData), config) <= syncLimitSeconds {
		resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{Config: recognitionConfig, Audio: audio})
		if err != nil {
			return "", fmt.Errorf("failed to recognize speech: %w", err)
		}
		results = resp.Results
	} else {
		op, err := g.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{Config: recognitionConfig, Audio: audio})
		if err != nil {
			return "", fmt.Errorf("failed to start long running recognition: %w", err)
		}
		resp, err := op.Wait(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to wait for recognition: %w", err)
		}
		results = resp.Results
	}

	transcript := joinTranscripts(results)
	g.logger.Debug("Speech recognized",
		zap.Int("audioSize", len(audioData)),
		zap.Int("results", len(results)),
		zap.Int("characters", len(transcript)))
	if transcript == "" {
		return "", fmt.Errorf("no speech detected in audio")
	}
	return transcript, nil
}

// joinTranscripts concatenates the best alternative of every result
func joinTranscripts(results []*speechpb.SpeechRecognitionResult) string {
	parts := make([]string, 0, len(results))
	for _, result := range results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(result.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func audioSeconds(size int, config repositories.AudioConfig) float64 {
	if config.SampleRate <= 0 {
		return 0
	}
	bytesPerSample := 2
	if config.Encoding == "MULAW" {
		bytesPerSample = 1
	}
	return float64(size) / float64(bytesPerSample*config.SampleRate)
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
}
