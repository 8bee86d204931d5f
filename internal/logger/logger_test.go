package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Intervyou-site/intervyou/internal/config"
)

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intervyou.log")
	log, err := New(config.Log{Level: "debug", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("analysis finished")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "analysis finished") {
		t.Errorf("log file = %q, want the logged message", data)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.Log{Level: "chatty"}); err == nil {
		t.Error("New() with unknown level should fail")
	}
}
