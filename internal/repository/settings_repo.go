package repository

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	"vocabtrainer/internal/database"
	"vocabtrainer/internal/models"
)

// Setting keys stored per learner
const (
	settingDifficulty       = "difficulty"
	settingAutoRemoveCount  = "auto_remove_count"
	settingRoundLength      = "round_length"
	settingManualDifficulty = "manual_difficulty"
	settingDoAssessment     = "do_assessment"
	settingGrading          = "grading"
)

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a single raw setting; ok is false when it was never saved
func (r *SettingsRepository) GetSetting(learnerID int64, key string) (value string, ok bool, err error) {
	query := `SELECT setting_value FROM learner_settings WHERE learner_id = ? AND setting_key = ?`
	err = r.db.QueryRow(query, learnerID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// GetSettings overlays the learner's saved settings on defaults. Unparseable
// values are logged and skipped.
func (r *SettingsRepository) GetSettings(learnerID int64, defaults models.Settings) (models.Settings, error) {
	rows, err := r.db.Query(`SELECT setting_key, setting_value FROM learner_settings WHERE learner_id = ?`, learnerID)
	if err != nil {
		return defaults, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := defaults
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return defaults, fmt.Errorf("failed to scan setting: %w", err)
		}
		if err := applySetting(&settings, key, value); err != nil {
			log.Printf("Warning: ignoring setting %s=%q for learner %d: %v", key, value, learnerID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return defaults, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings.Normalize(), nil
}

// SaveSettings writes every setting in one transaction
func (r *SettingsRepository) SaveSettings(learnerID int64, settings models.Settings) error {
	settings = settings.Normalize()
	values := map[string]string{
		settingDifficulty:       strconv.Itoa(settings.Difficulty),
		settingAutoRemoveCount:  strconv.Itoa(settings.AutoRemoveCount),
		settingRoundLength:      strconv.Itoa(settings.RoundLength),
		settingManualDifficulty: strconv.FormatBool(settings.ManualDifficulty),
		settingDoAssessment:     strconv.FormatBool(settings.DoAssessment),
		settingGrading:          settings.Grading,
	}

	query := r.db.Dialect.Upsert("learner_settings",
		[]string{"learner_id", "setting_key"},
		[]string{"setting_value", "updated_at"})

	return r.db.WithTx(func(tx *database.Tx) error {
		now := time.Now()
		for key, value := range values {
			if _, err := tx.Exec(query, learnerID, key, value, now); err != nil {
				return fmt.Errorf("failed to save setting %s: %w", key, err)
			}
		}
		return nil
	})
}

func applySetting(s *models.Settings, key, value string) error {
	switch key {
	case settingDifficulty, settingAutoRemoveCount, settingRoundLength:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		switch key {
		case settingDifficulty:
			s.Difficulty = n
		case settingAutoRemoveCount:
			s.AutoRemoveCount = n
		default:
			s.RoundLength = n
		}
	case settingManualDifficulty, settingDoAssessment:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		if key == settingManualDifficulty {
			s.ManualDifficulty = b
		} else {
			s.DoAssessment = b
		}
	case settingGrading:
		s.Grading = value
	default:
		return fmt.Errorf("unknown setting")
	}
	return nil
}
