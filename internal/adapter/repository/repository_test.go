package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entities.Meeting{},
		&entities.Transcript{},
		&entities.Summary{},
		&entities.ActionItem{},
		&entities.Export{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createMeeting(t *testing.T, repo *MeetingRepository, status entities.MeetingStatus) *entities.Meeting {
	t.Helper()
	m := entities.NewMeeting(uuid.New(), uuid.New(), "Weekly sync", entities.MeetingSourceUpload)
	m.Status = status
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	return m
}

func TestMeetingCompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMeetingRepository(newTestDB(t))
	m := createMeeting(t, repo, entities.MeetingStatusUploaded)

	ok, err := repo.CompareAndSetStatus(ctx, m.ID, entities.MeetingStatusUploaded, entities.MeetingStatusProcessing)
	if err != nil || !ok {
		t.Fatalf("first CAS = %v, %v; want true", ok, err)
	}

	ok, err = repo.CompareAndSetStatus(ctx, m.ID, entities.MeetingStatusUploaded, entities.MeetingStatusProcessing)
	if err != nil || ok {
		t.Fatalf("second CAS = %v, %v; want false", ok, err)
	}

	got, err := repo.FindByID(ctx, m.ID)
	if err != nil || got.Status != entities.MeetingStatusProcessing {
		t.Fatalf("status = %v, %v", got, err)
	}
}

func TestMeetingFailureReasonLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMeetingRepository(newTestDB(t))
	m := createMeeting(t, repo, entities.MeetingStatusProcessing)

	if err := repo.MarkFailed(ctx, m.ID, "provider exploded"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, _ := repo.FindByID(ctx, m.ID)
	if got.Status != entities.MeetingStatusFailed || got.FailureReason == nil || *got.FailureReason != "provider exploded" {
		t.Fatalf("unexpected failed meeting: %+v", got)
	}

	if err := repo.SetStatus(ctx, m.ID, entities.MeetingStatusUploaded); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, _ = repo.FindByID(ctx, m.ID)
	if got.FailureReason != nil {
		t.Fatalf("failure reason should be cleared, got %q", *got.FailureReason)
	}

	missing, err := repo.FindByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("FindByID(unknown) = %v, %v; want nil, nil", missing, err)
	}
}

func TestMeetingListByWorkspaceNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMeetingRepository(newTestDB(t))
	workspaceID := uuid.New()

	for i, title := range []string{"first", "second"} {
		m := entities.NewMeeting(workspaceID, uuid.New(), title, entities.MeetingSourceRecording)
		m.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	createMeeting(t, repo, entities.MeetingStatusDraft)

	meetings, err := repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(meetings) != 2 || meetings[0].Title != "second" {
		t.Fatalf("unexpected listing: %+v", meetings)
	}
}

func TestTranscriptUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	meetings := NewMeetingRepository(db)
	repo := NewTranscriptRepository(db)
	m := createMeeting(t, meetings, entities.MeetingStatusProcessing)

	if err := repo.UpsertPending(ctx, m.ID, "aai-1", "run-1"); err != nil {
		t.Fatalf("upsert pending: %v", err)
	}
	if err := repo.UpsertPending(ctx, m.ID, "aai-2", "run-2"); err != nil {
		t.Fatalf("second upsert pending: %v", err)
	}

	conf := 0.93
	result := &entities.Transcript{
		MeetingID:              m.ID,
		AssemblyAITranscriptID: "aai-2",
		TextLong:               "hello world",
		Segments:               []entities.Utterance{{Speaker: "A", Start: 0, End: 1.2, Text: "hello world"}},
		ConfidenceAvg:          &conf,
		Status:                 entities.TranscriptStatusReady,
	}
	for i := 0; i < 2; i++ {
		result.ID = uuid.New()
		if err := repo.SaveResult(ctx, result); err != nil {
			t.Fatalf("save result #%d: %v", i, err)
		}
	}

	var count int64
	db.Model(&entities.Transcript{}).Where("meeting_id = ?", m.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one transcript row, got %d", count)
	}

	got, err := repo.FindByExternalID(ctx, "aai-2")
	if err != nil || got == nil {
		t.Fatalf("find by external id = %v, %v", got, err)
	}
	if got.TextLong != "hello world" || got.Status != entities.TranscriptStatusReady || len(got.Segments) != 1 {
		t.Fatalf("unexpected transcript: %+v", got)
	}
	if got.RunToken != "run-2" {
		t.Fatalf("run token = %q, want the latest pending run", got.RunToken)
	}

	if old, _ := repo.FindByExternalID(ctx, "aai-1"); old != nil {
		t.Fatal("stale external id should no longer resolve")
	}
}

func TestTranscriptUpdateText(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTranscriptRepository(db)
	m := createMeeting(t, NewMeetingRepository(db), entities.MeetingStatusReady)

	if err := repo.UpsertPending(ctx, m.ID, "aai-9", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	existing, _ := repo.FindByMeetingID(ctx, m.ID)

	updated, err := repo.UpdateText(ctx, existing.ID, "edited text")
	if err != nil || updated == nil || updated.TextLong != "edited text" {
		t.Fatalf("update text = %+v, %v", updated, err)
	}

	missing, err := repo.UpdateText(ctx, uuid.New(), "nope")
	if err != nil || missing != nil {
		t.Fatalf("update unknown = %v, %v; want nil, nil", missing, err)
	}
}

func TestSummaryUpsertReplacesContent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSummaryRepository(db)
	m := createMeeting(t, NewMeetingRepository(db), entities.MeetingStatusProcessing)

	first := entities.NewSummary(m.ID, &entities.SummaryContent{ExecutiveSummary: "v1", Risks: []string{"r1"}})
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := entities.NewSummary(m.ID, &entities.SummaryContent{ExecutiveSummary: "v2", Questions: []string{"q?"}})
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.FindByMeetingID(ctx, m.ID)
	if err != nil || got == nil {
		t.Fatalf("find = %v, %v", got, err)
	}
	if got.ExecSummary != "v2" || len(got.Risks) != 0 || len(got.Questions) != 1 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestActionItemsReplacedAcrossRuns(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewActionItemRepository(db)
	m := createMeeting(t, NewMeetingRepository(db), entities.MeetingStatusProcessing)

	run1 := entities.NewActionItemsFromSummary(m.ID, m.WorkspaceID, []entities.SummaryActionItem{
		{Task: "a", Confidence: 0.5},
		{Task: "b", Confidence: 0.5},
		{Task: "c", Confidence: 0.5},
	})
	if err := repo.ReplaceForMeeting(ctx, m.ID, run1); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	due := "2025-02-01"
	run2 := entities.NewActionItemsFromSummary(m.ID, m.WorkspaceID, []entities.SummaryActionItem{
		{Task: "only", Confidence: 0.8, DueDate: &due},
	})
	if err := repo.ReplaceForMeeting(ctx, m.ID, run2); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	items, err := repo.ListByMeeting(ctx, m.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Description != "only" {
		t.Fatalf("expected only second run items, got %+v", items)
	}
	if items[0].DueDate == nil || time.Time(*items[0].DueDate).Format("2006-01-02") != "2025-02-01" {
		t.Fatalf("due date not persisted: %v", items[0].DueDate)
	}

	if err := repo.ReplaceForMeeting(ctx, m.ID, nil); err != nil {
		t.Fatalf("empty replace: %v", err)
	}
	items, _ = repo.ListByMeeting(ctx, m.ID)
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestActionItemUpdateStatus(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewActionItemRepository(db)
	m := createMeeting(t, NewMeetingRepository(db), entities.MeetingStatusReady)

	items := entities.NewActionItemsFromSummary(m.ID, m.WorkspaceID, []entities.SummaryActionItem{{Task: "x", Confidence: 1}})
	if err := repo.ReplaceForMeeting(ctx, m.ID, items); err != nil {
		t.Fatalf("replace: %v", err)
	}

	updated, err := repo.UpdateStatus(ctx, items[0].ID, entities.ActionStatusDone)
	if err != nil || updated == nil || updated.Status != entities.ActionStatusDone {
		t.Fatalf("update status = %+v, %v", updated, err)
	}

	listed, err := repo.ListByWorkspace(ctx, m.WorkspaceID)
	if err != nil || len(listed) != 1 {
		t.Fatalf("list by workspace = %v, %v", listed, err)
	}

	missing, err := repo.UpdateStatus(ctx, uuid.New(), entities.ActionStatusDone)
	if err != nil || missing != nil {
		t.Fatalf("update unknown = %v, %v; want nil, nil", missing, err)
	}
}

func TestExportObjectPathUpdate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewExportRepository(db)
	m := createMeeting(t, NewMeetingRepository(db), entities.MeetingStatusReady)

	export := entities.NewExport(m.ID, m.CreatedBy, entities.ExportFormatTXT, time.Now())
	if err := repo.Create(ctx, export); err != nil {
		t.Fatalf("create: %v", err)
	}

	final := entities.ExportObjectPath(m.WorkspaceID, m.ID, export.ID, "txt")
	if err := repo.UpdateObjectPath(ctx, export.ID, final); err != nil {
		t.Fatalf("update path: %v", err)
	}

	got, err := repo.FindByID(ctx, export.ID)
	if err != nil || got.ObjectPath != final || got.IsPending() {
		t.Fatalf("unexpected export: %+v, %v", got, err)
	}

	listed, err := repo.ListByMeeting(ctx, m.ID)
	if err != nil || len(listed) != 1 {
		t.Fatalf("list = %v, %v", listed, err)
	}
}
