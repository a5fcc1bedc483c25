package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", "meeting-pipeline", time.Minute)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	got, err := claims.UserID()
	if err != nil || got != userID {
		t.Fatalf("UserID() = %v, %v; want %v", got, err, userID)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _ := NewManager("one", "meeting-pipeline", time.Minute).GenerateAccessToken(uuid.New())
	if _, err := NewManager("two", "meeting-pipeline", time.Minute).ValidateAccessToken(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewManager("secret", "meeting-pipeline", -time.Minute)
	token, _ := m.GenerateAccessToken(uuid.New())

	_, err := m.ValidateAccessToken(token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateRejectsNonUUIDSubject(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))

	if _, err := NewManager("secret", "meeting-pipeline", time.Minute).ValidateAccessToken(token); err == nil {
		t.Fatal("expected subject error")
	}
}
