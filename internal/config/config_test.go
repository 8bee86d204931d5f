package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Sampling.Gaze != 5 || cfg.Sampling.HeadPose != 10 || cfg.Sampling.Emotion != 30 {
		t.Errorf("unexpected default strides: %+v", cfg.Sampling)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"zero stride", func(c *Config) { c.Sampling.Gaze = 0 }, true},
		{"no workers", func(c *Config) { c.Jobs.Workers = 0 }, true},
		{"window beyond history", func(c *Config) { c.Realtime.EyeContactWindow = 200 }, true},
		{"auth without secret", func(c *Config) { c.Server.RequireAuth = true }, true},
		{"unknown speech provider", func(c *Config) { c.Speech.Provider = "whisper" }, true},
		{"google speech", func(c *Config) { c.Speech.Provider = "google" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
sampling:
  gaze: 1
  body: 2
realtime:
  looking_away: 3s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("FACEMESH_URL", "http://mesh:8000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Port = %s, want env override 7070", cfg.Server.Port)
	}
	if cfg.Sampling.Gaze != 1 || cfg.Sampling.Body != 2 {
		t.Errorf("Sampling = %+v, want gaze 1 body 2", cfg.Sampling)
	}
	if cfg.Sampling.Emotion != 30 {
		t.Errorf("Sampling.Emotion = %d, want default 30 kept", cfg.Sampling.Emotion)
	}
	if cfg.Realtime.LookingAway != 3*time.Second {
		t.Errorf("LookingAway = %v, want 3s", cfg.Realtime.LookingAway)
	}
	if cfg.Services.FaceMesh.URL != "http://mesh:8000" {
		t.Errorf("FaceMesh.URL = %s", cfg.Services.FaceMesh.URL)
	}
}
