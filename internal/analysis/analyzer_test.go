package analysis

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/internal/config"
)

const answer = "I am excited to lead this great team and I love solving hard problems with talented people"

func newTestAnalyzer(t *testing.T, a entities.VideoAsset, stt *fakeSTT) *Analyzer {
	logger := zaptest.NewLogger(t)
	cfg := config.Default()
	frames := &fakeFrames{}
	audio := &fakeAudio{amplitude: 0.3}
	detector := &fakeDetector{face: true}
	classifier := &fakeClassifier{dist: entities.EmotionDistribution{
		entities.EmotionHappy:   0.7,
		entities.EmotionNeutral: 0.3,
	}}

	validator := NewValidator(&fakeProber{asset: a}, frames, audio, detector, cfg.Quality, logger)
	var voice *VoicePlugin
	if stt != nil {
		voice = NewVoicePlugin(stt, "en-US", logger)
	} else {
		voice = NewVoicePlugin(nil, "en-US", logger)
	}
	return NewAnalyzer(validator, frames, audio, logger,
		WithParallelism(3),
		WithPlugins(
			NewEmotionPlugin(classifier, cfg.Sampling.Emotion, logger),
			NewFacialPlugin(detector, classifier, cfg.Sampling.Facial, logger),
			NewGazePlugin(noFaceMesh{}, cfg.Sampling.Gaze, logger),
			NewAttentionPlugin(noFaceMesh{}, cfg.Sampling.HeadPose, logger),
			NewBodyPlugin(cfg.Sampling.Body, logger),
			voice,
		),
	)
}

func TestAnalyze(t *testing.T) {
	a := newTestAnalyzer(t, asset(12, true), nil)

	var states []entities.PipelineState
	result, err := a.Analyze(context.Background(), "interview.mp4", answer,
		WithObserver(func(s entities.PipelineState) { states = append(states, s) }))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	wantStates := []entities.PipelineState{entities.StateValidating, entities.StateExtracting, entities.StateFusing, entities.StateDone}
	if !reflect.DeepEqual(states, wantStates) {
		t.Errorf("states = %v, want %v", states, wantStates)
	}
	if !result.Quality.IsValid {
		t.Fatalf("quality = %+v, want valid", result.Quality)
	}

	for name, score := range map[string]float64{
		"confidence":      result.ConfidenceScore,
		"professionalism": result.Professionalism,
		"engagement":      result.Engagement,
		"authenticity":    result.Authenticity,
	} {
		if score < 0 || score > 10 {
			t.Errorf("%s = %v, out of [0,10]", name, score)
		}
	}

	if result.Emotion == nil || result.Emotion.DominantEmotion != entities.EmotionHappy {
		t.Errorf("emotion = %+v, want happy", result.Emotion)
	}
	if result.Facial == nil || result.Facial.SmileFrequency == nil || *result.Facial.SmileFrequency != 1 {
		t.Errorf("facial = %+v, want smile frequency 1", result.Facial)
	}
	if result.EyeTracking != nil {
		t.Errorf("eye tracking measured without a face: %+v", result.EyeTracking)
	}
	if got := result.Modalities[entities.ModalityEyeTracking].ErrorKind; got != string(KindNoSamples) {
		t.Errorf("eye tracking error kind = %q, want %q", got, KindNoSamples)
	}
	if got := result.Modalities[entities.ModalityMicroExpression].ErrorKind; got != string(KindUnavailable) {
		t.Errorf("micro expression error kind = %q, want %q", got, KindUnavailable)
	}
	if result.Attention == nil || result.Attention.DistractionCount != 36 || result.Attention.FocusPercentage != 0 {
		t.Errorf("attention = %+v, want 36 distractions", result.Attention)
	}
	if result.Voice == nil || result.Voice.TranscriptSource != TranscriptSupplied || !result.Voice.HasTranscript() {
		t.Errorf("voice = %+v, want supplied transcript", result.Voice)
	}
	if result.Sentiment == nil || result.Sentiment.Label != entities.SentimentPositive {
		t.Errorf("sentiment = %+v, want positive", result.Sentiment)
	}
	if len(result.Recommendations) == 0 || len(result.Recommendations) > MaxRecommendations {
		t.Errorf("recommendations = %v", result.Recommendations)
	}
	if len(result.Timeline) == 0 || len(result.Timeline) > MaxTimelineEntries {
		t.Errorf("timeline has %d entries", len(result.Timeline))
	}
}

func TestAnalyzeIsRepeatable(t *testing.T) {
	a := newTestAnalyzer(t, asset(12, true), nil)

	first, err := a.Analyze(context.Background(), "interview.mp4", answer)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	second, err := a.Analyze(context.Background(), "interview.mp4", answer)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !reflect.DeepEqual(first.Quality, second.Quality) {
		t.Errorf("quality differs: %+v vs %+v", first.Quality, second.Quality)
	}
	if !reflect.DeepEqual(first.Emotion, second.Emotion) || !reflect.DeepEqual(first.Voice, second.Voice) || !reflect.DeepEqual(first.BodyMovement, second.BodyMovement) {
		t.Error("deterministic summaries differ between runs")
	}
	if first.ConfidenceScore != second.ConfidenceScore || first.Engagement != second.Engagement {
		t.Error("scores differ between runs")
	}
}

func TestAnalyzeInvalidRecording(t *testing.T) {
	a := newTestAnalyzer(t, asset(5, true), nil)

	var states []entities.PipelineState
	result, err := a.Analyze(context.Background(), "short.mp4", "",
		WithObserver(func(s entities.PipelineState) { states = append(states, s) }))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if states[len(states)-1] != entities.StateInvalid {
		t.Errorf("final state = %v, want invalid", states[len(states)-1])
	}
	want := result.Quality.SuggestedScore
	if result.ConfidenceScore != want || result.Professionalism != want || result.Engagement != want {
		t.Errorf("scores = %v/%v/%v, want %v", result.ConfidenceScore, result.Professionalism, result.Engagement, want)
	}
	if result.Emotion != nil || result.Voice != nil {
		t.Error("deep analysis ran on an invalid recording")
	}
	if !reflect.DeepEqual(result.Recommendations, result.Quality.Recommendations) {
		t.Errorf("recommendations = %v", result.Recommendations)
	}
}

func TestAnalyzeUnreadable(t *testing.T) {
	logger := zap.NewNop()
	v := NewValidator(&fakeProber{err: errBroken}, &fakeFrames{}, &fakeAudio{}, nil, config.Default().Quality, logger)
	a := NewAnalyzer(v, &fakeFrames{}, &fakeAudio{}, logger)

	result, err := a.Analyze(context.Background(), "missing.mp4", "")
	if !errors.Is(err, ErrUnreadableInput) {
		t.Fatalf("error = %v, want ErrUnreadableInput", err)
	}
	if result.HasScores() {
		t.Error("unreadable input reported scores")
	}
}

func TestAnalyzeTranscribesWithoutTranscript(t *testing.T) {
	stt := &fakeSTT{text: answer}
	a := newTestAnalyzer(t, asset(12, true), stt)

	result, err := a.Analyze(context.Background(), "interview.mp4", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if stt.calls != 1 {
		t.Errorf("transcriber called %d times, want 1", stt.calls)
	}
	if result.Voice.TranscriptSource != TranscriptRecognized || result.Voice.Transcription != answer {
		t.Errorf("voice = %+v, want recognized transcript", result.Voice)
	}
	if result.Sentiment == nil {
		t.Error("sentiment not derived from the recognized transcript")
	}
}

func TestAnalyzeSurvivesTranscriberFailure(t *testing.T) {
	stt := &fakeSTT{err: errBroken}
	a := newTestAnalyzer(t, asset(12, true), stt)

	result, err := a.Analyze(context.Background(), "interview.mp4", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Voice == nil || result.Voice.HasTranscript() || result.Voice.ClarityScore != 0 {
		t.Errorf("voice = %+v, want prosody without fluency", result.Voice)
	}
	if got := result.Modalities[entities.ModalitySentiment].ErrorKind; got != string(KindNoSamples) {
		t.Errorf("sentiment error kind = %q", got)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	a := newTestAnalyzer(t, asset(12, true), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Analyze(ctx, "interview.mp4", answer); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
