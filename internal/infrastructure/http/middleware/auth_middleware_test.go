package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-pipeline/pkg/jwt"
)

func TestEchoAuth(t *testing.T) {
	manager := jwt.NewManager("secret", "meeting-pipeline", time.Minute)
	userID := uuid.New()
	valid, _ := manager.GenerateAccessToken(userID)
	expired, _ := jwt.NewManager("secret", "meeting-pipeline", -time.Minute).GenerateAccessToken(userID)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"valid token", "Bearer " + valid, http.StatusOK, userID.String()},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, userID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/", func(c echo.Context) error {
				id, ok := c.Get(UserIDKey).(uuid.UUID)
				if !ok {
					t.Fatal("user_id not set")
				}
				return c.String(http.StatusOK, id.String())
			}, EchoAuth(manager))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("body = %s, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
