package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBeginCarriesMetadata(t *testing.T) {
	ctx, cancel := Begin(context.Background(), Metadata{
		TaskID:      "t-1",
		TaskName:    "summarize_meeting",
		WorkerID:    2,
		Attempt:     1,
		MaxAttempts: 3,
	}, time.Minute)
	defer cancel()

	meta := FromContext(ctx)
	if meta.TaskID != "t-1" || meta.TaskName != "summarize_meeting" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.WorkerID != 2 || meta.Attempt != 1 || meta.MaxAttempts != 3 {
		t.Fatalf("unexpected counters: %+v", meta)
	}
	if meta.StartTime.IsZero() {
		t.Fatal("expected start time to be set")
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected deadline")
	}
}

func TestIsFinalAttempt(t *testing.T) {
	if !IsFinalAttempt(context.Background()) {
		t.Fatal("bare context should count as final")
	}

	tests := []struct {
		attempt, max int
		want         bool
	}{
		{1, 3, false},
		{2, 3, false},
		{3, 3, true},
		{1, 1, true},
	}
	for _, tt := range tests {
		ctx, cancel := Begin(context.Background(), Metadata{Attempt: tt.attempt, MaxAttempts: tt.max}, 0)
		if got := IsFinalAttempt(ctx); got != tt.want {
			t.Errorf("IsFinalAttempt(%d/%d) = %v, want %v", tt.attempt, tt.max, got, tt.want)
		}
		cancel()
	}
}

func TestRunRecoversPanic(t *testing.T) {
	err := Run(context.Background(), func(context.Context) error {
		panic("boom")
	})
	if err == nil || err.Error() != "panic recovered: boom" {
		t.Fatalf("unexpected error: %v", err)
	}

	want := errors.New("plain")
	if err := Run(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := time.Second
	if got := CalculateBackoff(1, base); got != 2*time.Second {
		t.Errorf("attempt 1: got %v", got)
	}
	if got := CalculateBackoff(2, base); got != 4*time.Second {
		t.Errorf("attempt 2: got %v", got)
	}
	if got := CalculateBackoff(10, base); got != 60*time.Second {
		t.Errorf("attempt 10 should cap at 60s, got %v", got)
	}
	if got := CalculateBackoff(-1, base); got != base {
		t.Errorf("negative attempt: got %v", got)
	}
}

func TestIsRetryableError(t *testing.T) {
	retryable := []string{
		"dial tcp: connection refused",
		"googleapi: Error 429: Too Many Requests",
		"status 503 service unavailable",
		"context deadline exceeded",
	}
	for _, msg := range retryable {
		if !IsRetryableError(errors.New(msg)) {
			t.Errorf("expected %q to be retryable", msg)
		}
	}
	if IsRetryableError(errors.New("invalid api key")) {
		t.Error("auth errors should not be retryable")
	}
	if IsRetryableError(nil) {
		t.Error("nil should not be retryable")
	}
}
