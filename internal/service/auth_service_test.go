package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/security"
	"vocabtrainer/internal/validation"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	email := NewEmailServiceWithClient(sender, "noreply@example.com", "Vocab Trainer", "http://localhost", false)
	auth := newTestAuth(t, db, email)

	learner, err := auth.Register(context.Background(), "  Ada@Example.com ", "password123", "Ada Lovelace")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if learner.Email != "ada@example.com" {
		t.Errorf("Email = %q, want lowercased", learner.Email)
	}
	if learner.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}
	if n := len(sender.sent()); n != 1 {
		t.Errorf("welcome emails sent = %d, want 1", n)
	}

	if _, err := auth.Register(context.Background(), "ada@example.com", "password123", "Ada Again"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register() error = %v, want ErrEmailTaken", err)
	}

	result, err := auth.Login("ADA@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" || result.Learner.ID != learner.ID {
		t.Errorf("Login() = %+v", result)
	}

	got, sessionID, err := auth.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if got.ID != learner.ID || sessionID == "" {
		t.Errorf("ValidateToken() = %d, %q", got.ID, sessionID)
	}

	if err := auth.Logout(sessionID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, _, err := auth.ValidateToken(result.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ValidateToken() after logout error = %v, want ErrSessionNotFound", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db, nil)

	tests := []struct {
		name     string
		email    string
		password string
		learner  string
		wantErr  error
	}{
		{"bad email", "not-an-email", "password123", "Ada", validation.ErrInvalidEmail},
		{"short password", "ada@example.com", "short", "Ada", validation.ErrInvalidPassword},
		{"bad name", "ada@example.com", "password123", "A", validation.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tt.email, tt.password, tt.learner)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db, nil)

	if _, err := auth.Register(context.Background(), "bob@example.com", "password123", "Bob"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "bob@example.com", "password124"},
		{"unknown email", "nobody@example.com", "password123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Login(tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestValidateTokenExpiredSession(t *testing.T) {
	db := newTestDB(t)
	learners := repository.NewLearnerRepository(db)
	tokens := security.NewTokenManager("test-secret", "vocabtrainer")
	auth := NewAuthService(learners, tokens, nil, time.Hour)

	learner := newLearner(t, db, "late@example.com")
	if _, err := learners.CreateSession("stale", learner.ID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	token, err := tokens.Issue(learner.ID, "stale", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, _, err := auth.ValidateToken(token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("ValidateToken() error = %v, want ErrSessionExpired", err)
	}
	if session, _ := learners.GetSession("stale"); session != nil {
		t.Error("expired session should be deleted on validation")
	}

	if _, _, err := auth.ValidateToken("garbage"); !errors.Is(err, security.ErrInvalidToken) {
		t.Errorf("ValidateToken(garbage) error = %v, want ErrInvalidToken", err)
	}
}

func TestOAuthLogin(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db, nil)

	first, err := auth.OAuthLogin("google", "sub-1", "New@Example.com", "")
	if err != nil {
		t.Fatalf("OAuthLogin() error = %v", err)
	}
	if first.Learner.Name != "new" || first.Learner.OAuthSubject != "sub-1" {
		t.Errorf("created learner = %+v", first.Learner)
	}

	again, err := auth.OAuthLogin("google", "sub-1", "new@example.com", "")
	if err != nil {
		t.Fatalf("second OAuthLogin() error = %v", err)
	}
	if again.Learner.ID != first.Learner.ID {
		t.Errorf("second login created learner %d, want %d", again.Learner.ID, first.Learner.ID)
	}

	// A password account is linked on first OAuth login
	registered, err := auth.Register(context.Background(), "pw@example.com", "password123", "Pat")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	linked, err := auth.OAuthLogin("google", "sub-2", "pw@example.com", "Pat")
	if err != nil {
		t.Fatalf("OAuthLogin() link error = %v", err)
	}
	if linked.Learner.ID != registered.ID {
		t.Errorf("linked learner = %d, want %d", linked.Learner.ID, registered.ID)
	}

	if _, err := auth.OAuthLogin("google", "sub-3", "new@example.com", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("OAuthLogin() for linked email error = %v, want ErrEmailTaken", err)
	}
	if _, err := auth.OAuthLogin("", "", "x@example.com", ""); err == nil {
		t.Error("OAuthLogin() without provider should fail")
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	learners := repository.NewLearnerRepository(db)
	auth := newTestAuth(t, db, nil)
	learner := newLearner(t, db, "cleanup@example.com")

	learners.CreateSession("old", learner.ID, time.Now().Add(-time.Hour))
	learners.CreateSession("fresh", learner.ID, time.Now().Add(time.Hour))

	if err := auth.CleanupExpiredSessions(); err != nil {
		t.Fatalf("CleanupExpiredSessions() error = %v", err)
	}
	if s, _ := learners.GetSession("old"); s != nil {
		t.Error("expired session survived cleanup")
	}
	if s, _ := learners.GetSession("fresh"); s == nil {
		t.Error("live session removed by cleanup")
	}
}
