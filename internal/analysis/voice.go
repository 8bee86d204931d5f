package analysis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/dsp"
	"github.com/Intervyou-site/intervyou/internal/textanalysis"
)

const (
	lowEnergy    = 0.02
	highEnergy   = 0.05
	silenceTopDB = 30.0
	minPause     = 0.3
)

// Transcript sources.
const (
	TranscriptSupplied   = "supplied"
	TranscriptRecognized = "speech_to_text"
)

// VoicePlugin measures prosody from the waveform and fluency from the transcript.
// The transcriber is optional and only used when no transcript is supplied.
type VoicePlugin struct {
	stt      repositories.SpeechToText
	language string
	logger   *zap.Logger
}

func NewVoicePlugin(stt repositories.SpeechToText, language string, logger *zap.Logger) *VoicePlugin {
	return &VoicePlugin{stt: stt, language: language, logger: logger}
}

func (p *VoicePlugin) Name() string { return entities.ModalityVoice }

func (p *VoicePlugin) Extract(ctx context.Context, src *Source) (Partial, error) {
	wave, err := src.Audio(ctx)
	if err != nil {
		return nil, err
	}
	if len(wave.Samples) == 0 {
		return nil, fmt.Errorf("audio track is empty: %w", ErrNoSamples)
	}

	metrics := MeasureProsody(wave)

	transcript, source := src.Transcript, TranscriptSupplied
	if transcript == "" && p.stt != nil {
		transcript, source = p.transcribe(ctx, wave), TranscriptRecognized
	}
	ApplyTranscript(metrics, transcript, wave.Duration())
	if metrics.Transcription != "" {
		metrics.TranscriptSource = source
	}
	return voicePartial{metrics}, nil
}

func (p *VoicePlugin) transcribe(ctx context.Context, wave *entities.Waveform) string {
	text, err := p.stt.TranscribeAudio(ctx, EncodeLinear16(wave.Samples), repositories.AudioConfig{
		SampleRate: wave.SampleRate,
		Encoding:   "LINEAR16",
		Language:   p.language,
	})
	if err != nil {
		p.logger.Warn("Speech recognition failed, continuing without transcript", zap.Error(err))
		return ""
	}
	return text
}

// MeasureProsody computes pitch, volume and pause statistics of a waveform.
func MeasureProsody(wave *entities.Waveform) *entities.VoiceMetrics {
	pitches := dsp.VoicedPitches(wave.Samples, wave.SampleRate, dsp.DefaultPitchConfig())
	energy := dsp.FrameRMS(wave.Samples, dsp.FrameLength, dsp.HopLength)

	volume := entities.VolumeStats{Mean: round(mean(energy), 4), Std: round(stddev(energy), 4)}
	level := entities.EnergyModerate
	switch {
	case volume.Mean < lowEnergy:
		level = entities.EnergyLow
	case volume.Mean > highEnergy:
		level = entities.EnergyHigh
	}

	intervals := dsp.SplitNonSilent(wave.Samples, silenceTopDB, dsp.FrameLength, dsp.HopLength)
	pauses := dsp.Pauses(intervals, wave.SampleRate, minPause)

	return &entities.VoiceMetrics{
		Pitch: entities.PitchStats{
			Mean:  round(mean(pitches), 2),
			Std:   round(stddev(pitches), 2),
			Range: round(spread(pitches), 2),
		},
		Volume:               volume,
		EnergyLevel:          level,
		PauseCount:           len(pauses),
		AveragePauseDuration: round(mean(pauses), 2),
		FillerWords:          map[string]int{},
	}
}

// ApplyTranscript fills the fluency fields. A transcript without words keeps
// the rate at zero, reports the default clarity and HasTranscript stays false.
func ApplyTranscript(v *entities.VoiceMetrics, transcript string, duration float64) {
	v.Transcription = transcript
	if transcript == "" {
		return
	}
	report := textanalysis.CountFillers(transcript)
	v.FillerWords = report.Counts
	v.TotalFillerCount = report.Total
	v.WordCount = report.WordCount
	if report.WordCount == 0 {
		v.ClarityScore = textanalysis.DefaultClarity
		return
	}
	v.SpeechRate = round(report.SpeechRate(duration), 2)
	v.ClarityScore = round(report.Clarity(), 2)
}

// EncodeLinear16 converts [-1,1] samples to little-endian signed 16-bit PCM.
func EncodeLinear16(samples []float64) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		v := int16(math.Round(clamp(s, -1, 1) * math.MaxInt16))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}
