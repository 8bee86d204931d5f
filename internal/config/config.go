// Package config loads service configuration from .env, an optional YAML file
// and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port           string        `yaml:"port"`
	JWTSecret      string        `yaml:"jwt_secret"`
	RequireAuth    bool          `yaml:"require_auth"`
	ShutdownPeriod time.Duration `yaml:"shutdown_period"`
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type Service struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Services are the HTTP model services for the heavy vision models.
type Services struct {
	FaceMesh     Service `yaml:"face_mesh"`
	Emotion      Service `yaml:"emotion"`
	MicroEmotion Service `yaml:"micro_emotion"`
}

type Gemini struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type Speech struct {
	Provider string `yaml:"provider"`
	Language string `yaml:"language"`
}

type Vision struct {
	CascadePath  string  `yaml:"cascade_path"`
	MinFaceSize  int     `yaml:"min_face_size"`
	MinFaceScore float64 `yaml:"min_face_score"`
}

type Media struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	SampleRate  int    `yaml:"audio_sample_rate"`
}

// Sampling is the frame stride of each video modality.
type Sampling struct {
	Emotion  int `yaml:"emotion"`
	Facial   int `yaml:"facial"`
	Gaze     int `yaml:"gaze"`
	HeadPose int `yaml:"head_pose"`
	Body     int `yaml:"body"`
	Micro    int `yaml:"micro"`
}

type Quality struct {
	MinDuration       float64 `yaml:"min_duration"`
	MinFaceRatio      float64 `yaml:"min_face_ratio"`
	MinAudioEnergy    float64 `yaml:"min_audio_energy"`
	AudioProbeSeconds float64 `yaml:"audio_probe_seconds"`
}

type Realtime struct {
	HistorySize       int           `yaml:"history_size"`
	EyeContactWindow  int           `yaml:"eye_contact_window"`
	EyeContactMinimum float64       `yaml:"eye_contact_minimum"`
	LookingAway       time.Duration `yaml:"looking_away"`
	PoorPosture       time.Duration `yaml:"poor_posture"`
	NegativeEmotion   time.Duration `yaml:"negative_emotion"`
	AssumedFPS        float64       `yaml:"assumed_fps"`
}

type Jobs struct {
	Workers         int           `yaml:"workers"`
	QueueSize       int           `yaml:"queue_size"`
	ResultTTL       time.Duration `yaml:"result_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	SubmitRate      float64       `yaml:"submit_rate"`
	SubmitBurst     int           `yaml:"submit_burst"`
}

type Config struct {
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	Mongo    Mongo    `yaml:"mongo"`
	Services Services `yaml:"services"`
	Gemini   Gemini   `yaml:"gemini"`
	Speech   Speech   `yaml:"speech"`
	Vision   Vision   `yaml:"vision"`
	Media    Media    `yaml:"media"`
	Sampling Sampling `yaml:"sampling"`
	Quality  Quality  `yaml:"quality"`
	Realtime Realtime `yaml:"realtime"`
	Jobs     Jobs     `yaml:"jobs"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: Server{Port: "8080", ShutdownPeriod: 10 * time.Second},
		Log:    Log{Level: "info", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 30},
		Mongo:  Mongo{Database: "intervyou"},
		Services: Services{
			FaceMesh:     Service{Timeout: 10 * time.Second},
			Emotion:      Service{Timeout: 10 * time.Second},
			MicroEmotion: Service{Timeout: 10 * time.Second},
		},
		Gemini: Gemini{Model: "gemini-2.0-flash"},
		Speech: Speech{Provider: "none", Language: "en-US"},
		Vision: Vision{MinFaceSize: 40, MinFaceScore: 5.0},
		Media:  Media{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", SampleRate: 16000},
		Sampling: Sampling{
			Emotion:  30,
			Facial:   30,
			Gaze:     5,
			HeadPose: 10,
			Body:     30,
			Micro:    10,
		},
		Quality: Quality{
			MinDuration:       10,
			MinFaceRatio:      0.3,
			MinAudioEnergy:    0.01,
			AudioProbeSeconds: 30,
		},
		Realtime: Realtime{
			HistorySize:       100,
			EyeContactWindow:  30,
			EyeContactMinimum: 0.4,
			LookingAway:       5 * time.Second,
			PoorPosture:       10 * time.Second,
			NegativeEmotion:   8 * time.Second,
			AssumedFPS:        30,
		},
		Jobs: Jobs{
			Workers:         2,
			QueueSize:       32,
			ResultTTL:       24 * time.Hour,
			CleanupInterval: 30 * time.Minute,
			SubmitRate:      1,
			SubmitBurst:     5,
		},
	}
}

// Load reads .env, the YAML file named by CONFIG_FILE (or config/<APP_ENV>/config.yaml
// when present) and environment overrides.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "dev"
		}
		path = filepath.Join("config", env, "config.yaml")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("PORT", &cfg.Server.Port)
	setString("JWT_SECRET", &cfg.Server.JWTSecret)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FILE", &cfg.Log.File)
	setString("MONGODB_URI", &cfg.Mongo.URI)
	setString("MONGODB_DATABASE", &cfg.Mongo.Database)
	setString("FACEMESH_URL", &cfg.Services.FaceMesh.URL)
	setString("EMOTION_URL", &cfg.Services.Emotion.URL)
	setString("MICRO_EMOTION_URL", &cfg.Services.MicroEmotion.URL)
	setString("GEMINI_API_KEY", &cfg.Gemini.APIKey)
	setString("GEMINI_MODEL", &cfg.Gemini.Model)
	setString("STT_PROVIDER", &cfg.Speech.Provider)
	setString("STT_LANGUAGE", &cfg.Speech.Language)
	setString("FACE_CASCADE_PATH", &cfg.Vision.CascadePath)
	setString("FFMPEG_PATH", &cfg.Media.FFmpegPath)
	setString("FFPROBE_PATH", &cfg.Media.FFprobePath)

	if v := os.Getenv("REQUIRE_AUTH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.RequireAuth = b
		}
	}
	if v := os.Getenv("JOB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Jobs.Workers = n
		}
	}
}

// Validate rejects configurations the pipeline cannot run with
func (c *Config) Validate() error {
	strides := map[string]int{
		"emotion":   c.Sampling.Emotion,
		"facial":    c.Sampling.Facial,
		"gaze":      c.Sampling.Gaze,
		"head_pose": c.Sampling.HeadPose,
		"body":      c.Sampling.Body,
		"micro":     c.Sampling.Micro,
	}
	for name, stride := range strides {
		if stride <= 0 {
			return fmt.Errorf("sampling.%s must be positive, got %d", name, stride)
		}
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("jobs.workers must be positive, got %d", c.Jobs.Workers)
	}
	if c.Jobs.QueueSize < 0 {
		return fmt.Errorf("jobs.queue_size must not be negative, got %d", c.Jobs.QueueSize)
	}
	if c.Realtime.HistorySize <= 0 || c.Realtime.EyeContactWindow <= 0 {
		return errors.New("realtime history and eye contact window must be positive")
	}
	if c.Realtime.EyeContactWindow > c.Realtime.HistorySize {
		return fmt.Errorf("realtime.eye_contact_window %d exceeds history_size %d",
			c.Realtime.EyeContactWindow, c.Realtime.HistorySize)
	}
	if c.Server.RequireAuth && c.Server.JWTSecret == "" {
		return errors.New("server.require_auth needs a jwt secret")
	}
	switch c.Speech.Provider {
	case "none", "mock", "google":
	default:
		return fmt.Errorf("unknown speech provider %q", c.Speech.Provider)
	}
	return nil
}
