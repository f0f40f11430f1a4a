package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/security"
	"vocabtrainer/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// AuthResult is returned by a successful login
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Learner   *models.Learner
}

// AuthService handles authentication business logic
type AuthService struct {
	learnerRepo     *repository.LearnerRepository
	tokens          *security.TokenManager
	email           *EmailService
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service. email may be nil.
func NewAuthService(learnerRepo *repository.LearnerRepository, tokens *security.TokenManager, email *EmailService, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		learnerRepo:     learnerRepo,
		tokens:          tokens,
		email:           email,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new learner account
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.Learner, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.learnerRepo.GetLearnerByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing learner: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	learner, err := s.learnerRepo.CreateLearner(email, passwordHash, name, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to create learner: %w", err)
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(ctx, learner.Email, learner.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", learner.Email, err)
		}
	}

	return learner, nil
}

// Login authenticates a learner and issues a token for a new session
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	learner, err := s.learnerRepo.GetLearnerByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}
	if learner == nil || !security.CheckPassword(password, learner.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(learner)
}

// OAuthLogin authenticates or creates a learner using an OAuth provider
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*AuthResult, error) {
	if provider == "" || subject == "" {
		return nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	learner, err := s.learnerRepo.GetLearnerByOAuth(provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup oauth learner: %w", err)
	}

	if learner == nil {
		existing, err := s.learnerRepo.GetLearnerByEmail(email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing learner: %w", err)
		}
		switch {
		case existing != nil && existing.OAuthProvider != "":
			// Linked to another provider or another account of this one
			return nil, ErrEmailTaken
		case existing != nil:
			if err := s.learnerRepo.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
				return nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			learner = existing
		default:
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			learner, err = s.learnerRepo.CreateLearner(email, "", name, provider, subject)
			if err != nil {
				return nil, fmt.Errorf("failed to create oauth learner: %w", err)
			}
		}
	}

	return s.startSession(learner)
}

func (s *AuthService) startSession(learner *models.Learner) (*AuthResult, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	if _, err := s.learnerRepo.CreateSession(sessionID, learner.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.Issue(learner.ID, sessionID, expiresAt)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, Learner: learner}, nil
}

// ValidateToken checks the token and its backing session, returning the learner
// and the session ID
func (s *AuthService) ValidateToken(token string) (*models.Learner, string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, "", err
	}

	session, err := s.learnerRepo.GetSession(claims.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, "", ErrSessionNotFound
	}
	if session.IsExpired() {
		if err := s.learnerRepo.DeleteSession(session.ID); err != nil {
			log.Printf("Warning: failed to delete expired session: %v", err)
		}
		return nil, "", ErrSessionExpired
	}

	learnerID, err := claims.LearnerID()
	if err != nil || learnerID != session.LearnerID {
		return nil, "", ErrSessionNotFound
	}

	learner, err := s.learnerRepo.GetLearnerByID(session.LearnerID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get learner: %w", err)
	}
	if learner == nil {
		return nil, "", ErrSessionNotFound
	}

	return learner, session.ID, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.learnerRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	n, err := s.learnerRepo.DeleteExpiredSessions()
	if err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	if n > 0 {
		log.Printf("Removed %d expired sessions", n)
	}
	return nil
}
