package repository

import (
	"fmt"
	"time"

	"vocabtrainer/internal/database"
	"vocabtrainer/internal/models"
)

// StudySetRepository stores the practice and starred word collections
type StudySetRepository struct {
	db *database.DB
}

// NewStudySetRepository creates a new study set repository
func NewStudySetRepository(db *database.DB) *StudySetRepository {
	return &StudySetRepository{db: db}
}

// ListWords returns a collection in the order words were added
func (r *StudySetRepository) ListWords(learnerID int64, collection models.StudyCollection) ([]models.StudyWord, error) {
	query := `
		SELECT word, definition, added_at
		FROM study_words
		WHERE learner_id = ? AND collection = ?
		ORDER BY added_at, word
	`
	rows, err := r.db.Query(query, learnerID, string(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s words: %w", collection, err)
	}
	defer rows.Close()

	words := []models.StudyWord{}
	for rows.Next() {
		var w models.StudyWord
		if err := rows.Scan(&w.Word, &w.Definition, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s word: %w", collection, err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// AddWords inserts words into a collection. A word that is already present takes
// the new definition and moves to the end.
func (r *StudySetRepository) AddWords(learnerID int64, collection models.StudyCollection, words []models.WordEntry) error {
	if len(words) == 0 {
		return nil
	}

	query := r.db.Dialect.Upsert("study_words",
		[]string{"learner_id", "collection", "word"},
		[]string{"definition", "added_at"})

	// added_at is spaced a microsecond apart so insertion order survives
	// coarse timestamp columns
	base := time.Now()
	return r.db.WithTx(func(tx *database.Tx) error {
		for i, w := range words {
			addedAt := base.Add(time.Duration(i) * time.Microsecond)
			if _, err := tx.Exec(query, learnerID, string(collection), w.Word, w.Definition, addedAt); err != nil {
				return fmt.Errorf("failed to add %s word %q: %w", collection, w.Word, err)
			}
		}
		return nil
	})
}

// AddWordAt inserts a single word with an explicit timestamp, used by restores
func (r *StudySetRepository) AddWordAt(learnerID int64, collection models.StudyCollection, word models.StudyWord) error {
	query := `
		INSERT INTO study_words (learner_id, collection, word, definition, added_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, learnerID, string(collection), word.Word, word.Definition, word.AddedAt); err != nil {
		return fmt.Errorf("failed to restore %s word %q: %w", collection, word.Word, err)
	}
	return nil
}

// RemoveWord deletes a word from a collection. It reports whether the word was present.
func (r *StudySetRepository) RemoveWord(learnerID int64, collection models.StudyCollection, word string) (bool, error) {
	query := `DELETE FROM study_words WHERE learner_id = ? AND collection = ? AND word = ?`
	result, err := r.db.Exec(query, learnerID, string(collection), word)
	if err != nil {
		return false, fmt.Errorf("failed to remove %s word: %w", collection, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read remove result: %w", err)
	}
	return n > 0, nil
}

// ClearCollection removes every word of a collection
func (r *StudySetRepository) ClearCollection(learnerID int64, collection models.StudyCollection) error {
	if _, err := r.db.Exec(`DELETE FROM study_words WHERE learner_id = ? AND collection = ?`, learnerID, string(collection)); err != nil {
		return fmt.Errorf("failed to clear %s words: %w", collection, err)
	}
	return nil
}
