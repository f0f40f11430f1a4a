package models

import "time"

// Learner represents an account in the system
type Learner struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session represents an authenticated session
type Session struct {
	ID        string
	LearnerID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// StudyWord is an entry of a practice or starred collection
type StudyWord struct {
	Word       string    `json:"word"`
	Definition string    `json:"definition"`
	AddedAt    time.Time `json:"addedAt"`
}
