package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "worker.log")

	log, err := New(config.LogConfig{
		Level:  "info",
		Format: "json",
		Output: "file",
		File:   path,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info("✅ pipeline stage completed")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log output in file")
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New(config.LogConfig{Level: "loud", Format: "console"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be disabled at the fallback level")
	}
}
