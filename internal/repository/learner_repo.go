package repository

import (
	"database/sql"
	"fmt"
	"time"

	"vocabtrainer/internal/database"
	"vocabtrainer/internal/models"
)

// LearnerRepository handles database operations for learners and sessions
type LearnerRepository struct {
	db *database.DB
}

// NewLearnerRepository creates a new learner repository
func NewLearnerRepository(db *database.DB) *LearnerRepository {
	return &LearnerRepository{db: db}
}

const learnerColumns = `id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at`

func scanLearner(row interface{ Scan(...interface{}) error }) (*models.Learner, error) {
	learner := &models.Learner{}
	err := row.Scan(
		&learner.ID,
		&learner.Email,
		&learner.PasswordHash,
		&learner.Name,
		&learner.OAuthProvider,
		&learner.OAuthSubject,
		&learner.CreatedAt,
		&learner.UpdatedAt,
	)
	return learner, err
}

// CreateLearner inserts a new learner. passwordHash is empty for OAuth-only accounts.
func (r *LearnerRepository) CreateLearner(email, passwordHash, name, oauthProvider, oauthSubject string) (*models.Learner, error) {
	query := `
		INSERT INTO learners (email, password_hash, name, oauth_provider, oauth_subject)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, name, oauthProvider, oauthSubject)
	if err != nil {
		return nil, fmt.Errorf("failed to create learner: %w", err)
	}

	now := time.Now()
	return &models.Learner{
		ID:            id,
		Email:         email,
		PasswordHash:  passwordHash,
		Name:          name,
		OAuthProvider: oauthProvider,
		OAuthSubject:  oauthSubject,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GetLearnerByEmail retrieves a learner by email address
func (r *LearnerRepository) GetLearnerByEmail(email string) (*models.Learner, error) {
	learner, err := scanLearner(r.db.QueryRow("SELECT "+learnerColumns+" FROM learners WHERE email = ?", email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}
	return learner, nil
}

// GetLearnerByID retrieves a learner by ID
func (r *LearnerRepository) GetLearnerByID(id int64) (*models.Learner, error) {
	learner, err := scanLearner(r.db.QueryRow("SELECT "+learnerColumns+" FROM learners WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}
	return learner, nil
}

// GetLearnerByOAuth retrieves a learner by OAuth provider and subject
func (r *LearnerRepository) GetLearnerByOAuth(provider, subject string) (*models.Learner, error) {
	query := "SELECT " + learnerColumns + " FROM learners WHERE oauth_provider = ? AND oauth_subject = ?"
	learner, err := scanLearner(r.db.QueryRow(query, provider, subject))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner by oauth: %w", err)
	}
	return learner, nil
}

// GetAllLearners retrieves all learners ordered by ID
func (r *LearnerRepository) GetAllLearners() ([]models.Learner, error) {
	rows, err := r.db.Query("SELECT " + learnerColumns + " FROM learners ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		learner, err := scanLearner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan learner: %w", err)
		}
		learners = append(learners, *learner)
	}
	return learners, rows.Err()
}

// LinkOAuthProvider links an existing learner to an OAuth provider
func (r *LearnerRepository) LinkOAuthProvider(learnerID int64, provider, subject string) error {
	query := `
		UPDATE learners
		SET oauth_provider = ?, oauth_subject = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND oauth_provider = ''
	`
	result, err := r.db.Exec(query, provider, subject, learnerID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read link result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("oauth provider already linked")
	}
	return nil
}

// DeleteLearner deletes a learner and, through cascades, all their data
func (r *LearnerRepository) DeleteLearner(id int64) error {
	if _, err := r.db.Exec("DELETE FROM learners WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete learner: %w", err)
	}
	return nil
}

// CreateSession creates a new session for a learner
func (r *LearnerRepository) CreateSession(sessionID string, learnerID int64, expiresAt time.Time) (*models.Session, error) {
	query := `
		INSERT INTO learner_sessions (id, learner_id, expires_at)
		VALUES (?, ?, ?)
	`
	if _, err := r.db.Exec(query, sessionID, learnerID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		LearnerID: learnerID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by ID
func (r *LearnerRepository) GetSession(sessionID string) (*models.Session, error) {
	query := `
		SELECT id, learner_id, expires_at, created_at
		FROM learner_sessions
		WHERE id = ?
	`
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.LearnerID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteSession removes a session from the database
func (r *LearnerRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM learner_sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *LearnerRepository) DeleteExpiredSessions() (int64, error) {
	result, err := r.db.Exec("DELETE FROM learner_sessions WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
