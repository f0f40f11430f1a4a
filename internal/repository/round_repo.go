package repository

import (
	"fmt"

	"vocabtrainer/internal/database"
	"vocabtrainer/internal/models"
)

// RoundRepository archives completed rounds
type RoundRepository struct {
	db *database.DB
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// CreateRound stores a completed round and returns it with its ID set
func (r *RoundRepository) CreateRound(record models.RoundRecord) (*models.RoundRecord, error) {
	query := `
		INSERT INTO rounds (learner_id, start_difficulty, end_difficulty, total_words, correct_words, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		record.LearnerID,
		record.StartDifficulty,
		record.EndDifficulty,
		record.TotalWords,
		record.CorrectWords,
		record.StartedAt,
		record.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	record.ID = id
	return &record, nil
}

// GetRecentRounds returns up to limit rounds, newest first. limit <= 0 returns all.
func (r *RoundRepository) GetRecentRounds(learnerID int64, limit int) ([]models.RoundRecord, error) {
	query := `
		SELECT id, learner_id, start_difficulty, end_difficulty, total_words, correct_words, started_at, completed_at
		FROM rounds
		WHERE learner_id = ?
		ORDER BY completed_at DESC, id DESC
	`
	args := []interface{}{learnerID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	rounds := []models.RoundRecord{}
	for rows.Next() {
		var rec models.RoundRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.LearnerID,
			&rec.StartDifficulty,
			&rec.EndDifficulty,
			&rec.TotalWords,
			&rec.CorrectWords,
			&rec.StartedAt,
			&rec.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, rec)
	}
	return rounds, rows.Err()
}
