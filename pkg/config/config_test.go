package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Worker.Concurrency != 5 || cfg.Worker.MaxAttempts != 3 {
		t.Errorf("unexpected worker defaults: %+v", cfg.Worker)
	}
	if cfg.Worker.TaskTimeout != 5*time.Minute {
		t.Errorf("Worker.TaskTimeout = %v, want 5m", cfg.Worker.TaskTimeout)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Worker.QueueName != "meeting-processing" {
		t.Errorf("Worker.QueueName = %q", cfg.Worker.QueueName)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("ASSEMBLYAI_API_KEY", "aai-key")
	t.Setenv("BASE_WEBHOOK_URL", "https://hooks.example.com")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("ASSEMBLYAI_WEBHOOK_SECRET", "s3cret")
	t.Setenv("JWT_SECRET", "jwt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Worker.Concurrency != 8 {
		t.Errorf("Worker.Concurrency = %d, want 8", cfg.Worker.Concurrency)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q", cfg.Database.Host)
	}
	if cfg.Database.MaxConns != 40 {
		t.Errorf("Database.MaxConns = %d, want 40", cfg.Database.MaxConns)
	}
	if got := cfg.GetWebhookURL(); got != "https://hooks.example.com/v1/webhooks/assemblyai" {
		t.Errorf("GetWebhookURL() = %q", got)
	}
	if err := cfg.ValidateWorker(); err != nil {
		t.Errorf("ValidateWorker() error = %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		t.Errorf("ValidateAPI() error = %v", err)
	}
}

func TestValidateWorkerRequiresKeys(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateWorker(); err == nil {
		t.Fatal("expected missing key error")
	}
	if err := cfg.ValidateAPI(); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestValidateRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero concurrency")
	}
}
