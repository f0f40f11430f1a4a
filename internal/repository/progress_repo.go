package repository

import (
	"fmt"
	"time"

	"vocabtrainer/internal/database"
)

// ProgressRepository stores how many times each word was answered correctly
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetCorrectCounts returns word -> correct count for a learner
func (r *ProgressRepository) GetCorrectCounts(learnerID int64) (map[string]int, error) {
	rows, err := r.db.Query(`SELECT word, correct_count FROM word_progress WHERE learner_id = ?`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var word string
		var count int
		if err := rows.Scan(&word, &count); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		counts[word] = count
	}
	return counts, rows.Err()
}

// SetCorrectCounts writes absolute counts for the given words
func (r *ProgressRepository) SetCorrectCounts(learnerID int64, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}

	query := r.db.Dialect.Upsert("word_progress",
		[]string{"learner_id", "word"},
		[]string{"correct_count", "updated_at"})

	return r.db.WithTx(func(tx *database.Tx) error {
		now := time.Now()
		for word, count := range counts {
			if _, err := tx.Exec(query, learnerID, word, count, now); err != nil {
				return fmt.Errorf("failed to save progress for %q: %w", word, err)
			}
		}
		return nil
	})
}

// ResetProgress forgets every correct count of a learner
func (r *ProgressRepository) ResetProgress(learnerID int64) error {
	if _, err := r.db.Exec(`DELETE FROM word_progress WHERE learner_id = ?`, learnerID); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}
