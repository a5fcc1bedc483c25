package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/queue"
)

func TestReportQueueLogsNewFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	cfg := queue.Config{Name: "test", ServerName: "node-1"}
	inspector := queue.NewInspector(rdb, cfg)

	fail := func(id string) {
		raw, _ := json.Marshal(&queue.Task{ID: id, Name: "fetch_transcript", Attempt: 3, MaxAttempts: 3, LastError: "provider unavailable"})
		if err := rdb.LPush(ctx, "queue:test:failed", string(raw)).Err(); err != nil {
			t.Fatalf("push failed task: %v", err)
		}
	}

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	fail("t-1")
	seen := reportQueue(ctx, inspector, logger, 0)
	if seen != 1 {
		t.Fatalf("failed count = %d, want 1", seen)
	}
	if got := logs.FilterMessage("💀 Task in failed list").Len(); got != 1 {
		t.Fatalf("failure entries = %d, want 1", got)
	}

	// Nothing new since the last report
	logs.TakeAll()
	seen = reportQueue(ctx, inspector, logger, seen)
	if logs.FilterMessage("💀 Task in failed list").Len() != 0 {
		t.Fatal("old failures should not be logged again")
	}

	fail("t-2")
	logs.TakeAll()
	reportQueue(ctx, inspector, logger, seen)
	entries := logs.FilterMessage("💀 Task in failed list").All()
	if len(entries) != 1 {
		t.Fatalf("failure entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["task_id"] != "t-2" || fields["last_error"] != "provider unavailable" {
		t.Fatalf("unexpected failure entry: %v", fields)
	}
}
