package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/internal/config"
)

func asset(seconds float64, audio bool) entities.VideoAsset {
	return entities.VideoAsset{
		FPS:        30,
		FrameCount: int(seconds * 30),
		Width:      64,
		Height:     48,
		HasAudio:   audio,
	}
}

func newTestValidator(a entities.VideoAsset, face bool, amplitude float64) *Validator {
	return NewValidator(
		&fakeProber{asset: a},
		&fakeFrames{},
		&fakeAudio{amplitude: amplitude},
		&fakeDetector{face: face},
		config.Default().Quality,
		zap.NewNop(),
	)
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name       string
		asset      entities.VideoAsset
		face       bool
		amplitude  float64
		wantValid  bool
		wantIssues int
		maxScore   float64
	}{
		{
			name:       "short recording only",
			asset:      asset(5, true),
			face:       true,
			amplitude:  0.5,
			wantIssues: 1,
			maxScore:   1.5,
		},
		{
			name:       "short, faceless and silent",
			asset:      asset(5, false),
			wantIssues: 3,
			maxScore:   2.5,
		},
		{
			name:       "faceless",
			asset:      asset(20, true),
			amplitude:  0.5,
			wantIssues: 1,
			maxScore:   2.0,
		},
		{
			name:       "quiet audio",
			asset:      asset(20, true),
			face:       true,
			amplitude:  0.001,
			wantIssues: 1,
			maxScore:   2.0,
		},
		{
			name:      "good recording",
			asset:     asset(20, true),
			face:      true,
			amplitude: 0.5,
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(tt.asset, tt.face, tt.amplitude)
			report, _, err := v.Validate(context.Background(), "interview.mp4")
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if report.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (issues %v)", report.IsValid, tt.wantValid, report.Issues)
			}
			if len(report.Issues) != tt.wantIssues {
				t.Errorf("issues = %v, want %d", report.Issues, tt.wantIssues)
			}
			if !tt.wantValid {
				if report.SuggestedScore > tt.maxScore {
					t.Errorf("SuggestedScore = %v, want <= %v", report.SuggestedScore, tt.maxScore)
				}
				last := report.Recommendations[len(report.Recommendations)-1]
				if last != recommendRecordAgain {
					t.Errorf("last recommendation = %q", last)
				}
			}
		})
	}
}

func TestValidatorReportFields(t *testing.T) {
	v := newTestValidator(asset(5, true), true, 0.5)
	report, got, err := v.Validate(context.Background(), "short.mp4")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if report.Duration != 5 || got.Duration != 5 {
		t.Errorf("duration = %v / %v, want 5", report.Duration, got.Duration)
	}
	if report.FaceDetectionRatio != 1 {
		t.Errorf("FaceDetectionRatio = %v, want 1", report.FaceDetectionRatio)
	}
	if !report.HasAudio {
		t.Errorf("HasAudio = false, energy %v", report.AudioEnergy)
	}
	if report.SuggestedScore != 1.5 {
		t.Errorf("SuggestedScore = %v, want 1.5", report.SuggestedScore)
	}
	if want := "Video too short: 5.0s (minimum 10s required)"; report.Issues[0] != want {
		t.Errorf("issue = %q, want %q", report.Issues[0], want)
	}
}

func TestValidatorUnreadable(t *testing.T) {
	v := NewValidator(&fakeProber{err: errBroken}, &fakeFrames{}, &fakeAudio{}, &fakeDetector{}, config.Default().Quality, zap.NewNop())

	report, _, err := v.Validate(context.Background(), "missing.mp4")
	if !errors.Is(err, ErrUnreadableInput) {
		t.Fatalf("error = %v, want ErrUnreadableInput", err)
	}
	if report.IsValid || report.SuggestedScore != 0 {
		t.Errorf("report = %+v, want invalid with zero score", report)
	}
	if len(report.Issues) != 1 || !strings.HasPrefix(report.Issues[0], "Error validating video:") {
		t.Errorf("issues = %v", report.Issues)
	}
}

func TestValidatorWithoutDetector(t *testing.T) {
	v := NewValidator(&fakeProber{asset: asset(20, true)}, &fakeFrames{}, &fakeAudio{amplitude: 0.5}, nil, config.Default().Quality, zap.NewNop())

	report, _, err := v.Validate(context.Background(), "interview.mp4")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !report.FaceCheckSkipped || !report.IsValid {
		t.Errorf("report = %+v, want valid with skipped face check", report)
	}
}
