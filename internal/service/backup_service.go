package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"vocabtrainer/internal/database"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Learners   []LearnerBackup  `json:"learners"`
	Settings   []SettingBackup  `json:"settings"`
	StudyWords []StudyBackup    `json:"study_words"`
	Progress   []ProgressBackup `json:"progress"`
	Rounds     []RoundBackup    `json:"rounds"`
}

// LearnerBackup represents a learner record for backup
type LearnerBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SettingBackup is one stored learner setting
type SettingBackup struct {
	LearnerID int64  `json:"learner_id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// StudyBackup is one word of a practice or starred collection
type StudyBackup struct {
	LearnerID  int64     `json:"learner_id"`
	Collection string    `json:"collection"`
	Word       string    `json:"word"`
	Definition string    `json:"definition"`
	AddedAt    time.Time `json:"added_at"`
}

// ProgressBackup is a learner's correct count for a word
type ProgressBackup struct {
	LearnerID    int64  `json:"learner_id"`
	Word         string `json:"word"`
	CorrectCount int    `json:"correct_count"`
}

// RoundBackup is an archived round
type RoundBackup struct {
	ID              int64     `json:"id"`
	LearnerID       int64     `json:"learner_id"`
	StartDifficulty int       `json:"start_difficulty"`
	EndDifficulty   int       `json:"end_difficulty"`
	TotalWords      int       `json:"total_words"`
	CorrectWords    int       `json:"correct_words"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(file)
	if err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d learners, %d settings, %d study words, %d progress rows, %d rounds",
		len(backup.Learners), len(backup.Settings), len(backup.StudyWords), len(backup.Progress), len(backup.Rounds))
	return nil
}

// ExportToWriter writes the backup as indented JSON and returns what was written
func (s *BackupService) ExportToWriter(w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now(),
		Learners:   []LearnerBackup{},
		Settings:   []SettingBackup{},
		StudyWords: []StudyBackup{},
		Progress:   []ProgressBackup{},
		Rounds:     []RoundBackup{},
	}

	steps := []struct {
		name string
		fn   func(*BackupData) error
	}{
		{"learners", s.exportLearners},
		{"settings", s.exportSettings},
		{"study words", s.exportStudyWords},
		{"progress", s.exportProgress},
		{"rounds", s.exportRounds},
	}
	for _, step := range steps {
		if err := step.fn(backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup into an empty database in one transaction
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(func(tx *database.Tx) error {
		// Import in order of dependencies
		if err := importLearners(tx, backup.Learners); err != nil {
			return fmt.Errorf("failed to import learners: %w", err)
		}
		if err := importSettings(tx, backup.Settings); err != nil {
			return fmt.Errorf("failed to import settings: %w", err)
		}
		if err := importStudyWords(tx, backup.StudyWords); err != nil {
			return fmt.Errorf("failed to import study words: %w", err)
		}
		if err := importProgress(tx, backup.Progress); err != nil {
			return fmt.Errorf("failed to import progress: %w", err)
		}
		if err := importRounds(tx, backup.Rounds); err != nil {
			return fmt.Errorf("failed to import rounds: %w", err)
		}
		return resetSequences(tx)
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportLearners(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at FROM learners ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l LearnerBackup
		if err := rows.Scan(&l.ID, &l.Email, &l.PasswordHash, &l.Name, &l.OAuthProvider, &l.OAuthSubject, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return err
		}
		backup.Learners = append(backup.Learners, l)
	}
	return rows.Err()
}

func (s *BackupService) exportSettings(backup *BackupData) error {
	rows, err := s.db.Query("SELECT learner_id, setting_key, setting_value FROM learner_settings ORDER BY learner_id, setting_key")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st SettingBackup
		if err := rows.Scan(&st.LearnerID, &st.Key, &st.Value); err != nil {
			return err
		}
		backup.Settings = append(backup.Settings, st)
	}
	return rows.Err()
}

func (s *BackupService) exportStudyWords(backup *BackupData) error {
	rows, err := s.db.Query("SELECT learner_id, collection, word, definition, added_at FROM study_words ORDER BY learner_id, collection, added_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w StudyBackup
		if err := rows.Scan(&w.LearnerID, &w.Collection, &w.Word, &w.Definition, &w.AddedAt); err != nil {
			return err
		}
		backup.StudyWords = append(backup.StudyWords, w)
	}
	return rows.Err()
}

func (s *BackupService) exportProgress(backup *BackupData) error {
	rows, err := s.db.Query("SELECT learner_id, word, correct_count FROM word_progress ORDER BY learner_id, word")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProgressBackup
		if err := rows.Scan(&p.LearnerID, &p.Word, &p.CorrectCount); err != nil {
			return err
		}
		backup.Progress = append(backup.Progress, p)
	}
	return rows.Err()
}

func (s *BackupService) exportRounds(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, learner_id, start_difficulty, end_difficulty, total_words, correct_words, started_at, completed_at FROM rounds ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RoundBackup
		if err := rows.Scan(&r.ID, &r.LearnerID, &r.StartDifficulty, &r.EndDifficulty, &r.TotalWords, &r.CorrectWords, &r.StartedAt, &r.CompletedAt); err != nil {
			return err
		}
		backup.Rounds = append(backup.Rounds, r)
	}
	return rows.Err()
}

func importLearners(tx *database.Tx, learners []LearnerBackup) error {
	log.Printf("Importing %d learners...", len(learners))
	query := "INSERT INTO learners (id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	for _, l := range learners {
		if _, err := tx.Exec(query, l.ID, l.Email, l.PasswordHash, l.Name, l.OAuthProvider, l.OAuthSubject, l.CreatedAt, l.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import learner %d: %w", l.ID, err)
		}
	}
	return nil
}

func importSettings(tx *database.Tx, settings []SettingBackup) error {
	log.Printf("Importing %d settings...", len(settings))
	query := "INSERT INTO learner_settings (learner_id, setting_key, setting_value) VALUES (?, ?, ?)"
	for _, st := range settings {
		if _, err := tx.Exec(query, st.LearnerID, st.Key, st.Value); err != nil {
			return fmt.Errorf("failed to import setting %s for learner %d: %w", st.Key, st.LearnerID, err)
		}
	}
	return nil
}

func importStudyWords(tx *database.Tx, words []StudyBackup) error {
	log.Printf("Importing %d study words...", len(words))
	query := "INSERT INTO study_words (learner_id, collection, word, definition, added_at) VALUES (?, ?, ?, ?, ?)"
	for _, w := range words {
		if _, err := tx.Exec(query, w.LearnerID, w.Collection, w.Word, w.Definition, w.AddedAt); err != nil {
			return fmt.Errorf("failed to import %s word %q: %w", w.Collection, w.Word, err)
		}
	}
	return nil
}

func importProgress(tx *database.Tx, progress []ProgressBackup) error {
	log.Printf("Importing %d progress rows...", len(progress))
	query := "INSERT INTO word_progress (learner_id, word, correct_count) VALUES (?, ?, ?)"
	for _, p := range progress {
		if _, err := tx.Exec(query, p.LearnerID, p.Word, p.CorrectCount); err != nil {
			return fmt.Errorf("failed to import progress for %q: %w", p.Word, err)
		}
	}
	return nil
}

func importRounds(tx *database.Tx, rounds []RoundBackup) error {
	log.Printf("Importing %d rounds...", len(rounds))
	query := "INSERT INTO rounds (id, learner_id, start_difficulty, end_difficulty, total_words, correct_words, started_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	for _, r := range rounds {
		if _, err := tx.Exec(query, r.ID, r.LearnerID, r.StartDifficulty, r.EndDifficulty, r.TotalWords, r.CorrectWords, r.StartedAt, r.CompletedAt); err != nil {
			return fmt.Errorf("failed to import round %d: %w", r.ID, err)
		}
	}
	return nil
}

// resetSequences moves PostgreSQL serial sequences past the imported IDs.
// SQLite and MySQL track this themselves.
func resetSequences(tx *database.Tx) error {
	if tx.GetDialect().DriverName() != "postgres" {
		return nil
	}
	for _, table := range []string{"learners", "rounds"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s", table, table)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}
