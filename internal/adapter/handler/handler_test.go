package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-pipeline/internal/adapter/repository"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/http/middleware"
	meetingUsecase "github.com/johnquangdev/meeting-pipeline/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-pipeline/pkg/ai"
	"github.com/johnquangdev/meeting-pipeline/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/meeting-pipeline/pkg/validator"
)

const hookSecret = "hook-secret"

type stubStorage struct{}

func (stubStorage) SignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + bucket + "/" + object, nil
}

func (stubStorage) SignedUploadURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + bucket + "/" + object + "?upload", nil
}

func (stubStorage) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	return nil
}

type stubQueue struct {
	names []entities.TaskName
}

func (q *stubQueue) Enqueue(ctx context.Context, name entities.TaskName, payload entities.TaskPayload) (string, error) {
	q.names = append(q.names, name)
	return "task", nil
}

type testServer struct {
	e           *echo.Echo
	token       string
	queue       *stubQueue
	transcripts *repository.TranscriptRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entities.Meeting{}, &entities.Transcript{}, &entities.Summary{}, &entities.ActionItem{}, &entities.Export{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	q := &stubQueue{}
	transcripts := repository.NewTranscriptRepository(db)
	svc := meetingUsecase.NewMeetingService(
		repository.NewMeetingRepository(db),
		transcripts,
		repository.NewActionItemRepository(db),
		repository.NewExportRepository(db),
		stubStorage{},
		q,
		cache.NewRunLock(rdb, time.Hour),
		hookSecret,
		nil,
	)

	manager := jwt.NewManager("test-secret", "meeting-pipeline", time.Minute)
	token, err := manager.GenerateAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	e := echo.New()
	e.Validator = pkgvalidator.New()
	NewRouter(
		NewMeetingHandler(svc, nil),
		NewReviewHandler(svc, nil),
		NewWebhookHandler(svc, nil),
		middleware.EchoAuth(manager),
	).Setup(e)

	return &testServer{e: e, token: token, queue: q, transcripts: transcripts}
}

type envelope struct {
	Code    interface{}     `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code, env
}

func (s *testServer) authed(t *testing.T, method, path, body string) (int, envelope) {
	return s.do(t, method, path, body, map[string]string{echo.HeaderAuthorization: "Bearer " + s.token})
}

func (s *testServer) createMeeting(t *testing.T) entities.Meeting {
	t.Helper()
	body := `{"workspace_id":"` + uuid.NewString() + `","title":"Weekly sync","source":"upload"}`
	code, env := s.authed(t, http.MethodPost, "/v1/meetings", body)
	if code != http.StatusCreated {
		t.Fatalf("create meeting status = %d, body = %+v", code, env)
	}
	var m entities.Meeting
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("decode meeting: %v", err)
	}
	return m
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/v1/meetings?workspace_id="+uuid.NewString(), "", nil)
	if code != http.StatusUnauthorized || env.Code != "UNAUTHORIZED" {
		t.Fatalf("no token = %d %v", code, env.Code)
	}

	code, env = s.do(t, http.MethodGet, "/v1/meetings?workspace_id="+uuid.NewString(), "", map[string]string{
		echo.HeaderAuthorization: "Bearer garbage",
	})
	if code != http.StatusUnauthorized || env.Code != "INVALID_TOKEN" {
		t.Fatalf("bad token = %d %v", code, env.Code)
	}
}

func TestCreateMeetingValidation(t *testing.T) {
	s := newTestServer(t)

	m := s.createMeeting(t)
	if m.Status != entities.MeetingStatusDraft {
		t.Fatalf("status = %s, want draft", m.Status)
	}

	code, env := s.authed(t, http.MethodPost, "/v1/meetings", `{"workspace_id":"`+uuid.NewString()+`","title":"x","source":"fax"}`)
	if code != http.StatusBadRequest || env.Code != "INVALID_ARGUMENT" {
		t.Fatalf("bad source = %d %v", code, env.Code)
	}

	code, env = s.authed(t, http.MethodPost, "/v1/meetings", `{not json`)
	if code != http.StatusBadRequest || env.Code != "INVALID_PAYLOAD" {
		t.Fatalf("bad body = %d %v", code, env.Code)
	}

	code, _ = s.authed(t, http.MethodGet, "/v1/meetings/not-a-uuid", "")
	if code != http.StatusBadRequest {
		t.Fatalf("bad id = %d", code)
	}
}

func TestUploadAndProcess(t *testing.T) {
	s := newTestServer(t)
	m := s.createMeeting(t)
	base := "/v1/meetings/" + m.ID.String()

	code, _ := s.authed(t, http.MethodPost, base+"/process", "")
	if code != http.StatusBadRequest {
		t.Fatalf("process draft = %d, want 400", code)
	}

	code, env := s.authed(t, http.MethodPost, base+"/upload-url", `{"file_ext":"mp3","mime_type":"audio/mpeg"}`)
	if code != http.StatusOK {
		t.Fatalf("upload-url = %d", code)
	}
	var target meetingUsecase.UploadTarget
	if err := json.Unmarshal(env.Data, &target); err != nil {
		t.Fatalf("decode upload target: %v", err)
	}
	if !strings.HasSuffix(target.ObjectPath, m.ID.String()+"/source.mp3") {
		t.Fatalf("object path = %q", target.ObjectPath)
	}

	code, _ = s.authed(t, http.MethodPost, base+"/mark-uploaded", `{"object_path":"`+target.ObjectPath+`"}`)
	if code != http.StatusOK {
		t.Fatalf("mark-uploaded = %d", code)
	}

	code, env = s.authed(t, http.MethodPost, base+"/process", "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"processing"`) {
		t.Fatalf("process = %d %s", code, env.Data)
	}

	code, env = s.authed(t, http.MethodPost, base+"/process", "")
	if code != http.StatusConflict || env.Code != "RUN_IN_PROGRESS" {
		t.Fatalf("second process = %d %v", code, env.Code)
	}

	if len(s.queue.names) != 1 || s.queue.names[0] != entities.TaskStartTranscription {
		t.Fatalf("queued = %v", s.queue.names)
	}
}

func TestExportFormatValidation(t *testing.T) {
	s := newTestServer(t)
	m := s.createMeeting(t)
	base := "/v1/meetings/" + m.ID.String() + "/exports"

	code, _ := s.authed(t, http.MethodPost, base, `{"format":"xlsx"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("xlsx = %d, want 400", code)
	}

	code, _ = s.authed(t, http.MethodPost, base, `{"format":"txt"}`)
	if code != http.StatusCreated {
		t.Fatalf("txt = %d, want 201", code)
	}

	code, env := s.authed(t, http.MethodGet, base, "")
	if code != http.StatusOK {
		t.Fatalf("list exports = %d", code)
	}
	var exports []map[string]interface{}
	if err := json.Unmarshal(env.Data, &exports); err != nil {
		t.Fatalf("decode exports: %v", err)
	}
	if len(exports) != 1 {
		t.Fatalf("exports = %d, want 1", len(exports))
	}
	if _, ok := exports[0]["download_url"]; ok {
		t.Fatal("pending export must not carry a download_url")
	}
}

func TestAssemblyAIWebhook(t *testing.T) {
	s := newTestServer(t)
	m := s.createMeeting(t)
	if err := s.transcripts.UpsertPending(context.Background(), m.ID, "tr-1", ""); err != nil {
		t.Fatalf("UpsertPending() error = %v", err)
	}
	path := "/v1/webhooks/assemblyai"
	good := map[string]string{ai.WebhookSecretHeader: hookSecret}

	code, _ := s.do(t, http.MethodPost, path, `{"transcript_id":"tr-1","status":"completed"}`, map[string]string{
		ai.WebhookSecretHeader: "wrong",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("wrong secret = %d, want 401", code)
	}

	code, _ = s.do(t, http.MethodPost, path, `{"transcript_id":"tr-404","status":"completed"}`, good)
	if code != http.StatusNotFound {
		t.Fatalf("unknown transcript = %d, want 404", code)
	}

	code, env := s.do(t, http.MethodPost, path, `{"transcript_id":"tr-1","status":"completed"}`, good)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"ok"`) {
		t.Fatalf("completed = %d %s", code, env.Data)
	}
	if len(s.queue.names) != 1 || s.queue.names[0] != entities.TaskFetchTranscript {
		t.Fatalf("queued = %v", s.queue.names)
	}
}
