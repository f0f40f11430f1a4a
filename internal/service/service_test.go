package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"vocabtrainer/internal/config"
	"vocabtrainer/internal/database"
	"vocabtrainer/internal/lexicon"
	"vocabtrainer/internal/models"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/sampler"
	"vocabtrainer/internal/security"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func rankedWords(prefix string, n int) []models.WordEntry {
	words := make([]models.WordEntry, n)
	for i := range words {
		words[i] = models.WordEntry{
			Word:       fmt.Sprintf("%s%04d", prefix, i),
			Definition: fmt.Sprintf("definition of %s%04d", prefix, i),
			Rank:       i,
		}
	}
	return words
}

func testDefaults() config.TrainerDefaults {
	return config.TrainerDefaults{
		Difficulty:           50,
		AutoRemoveCount:      2,
		RoundLength:          10,
		AutoAdjust:           true,
		Grading:              models.GradingAlways,
		ResampleDebounce:     time.Hour,
		CalibrationBandBase:  0,
		CalibrationBandRange: 100,
	}
}

func repositories(db *database.DB) TrainerRepositories {
	return TrainerRepositories{
		Settings: repository.NewSettingsRepository(db),
		Study:    repository.NewStudySetRepository(db),
		Progress: repository.NewProgressRepository(db),
		Rounds:   repository.NewRoundRepository(db),
	}
}

func newTestTrainer(t *testing.T, db *database.DB, defaults config.TrainerDefaults, email *EmailService) *TrainerService {
	t.Helper()
	sources := lexicon.Sources{General: rankedWords("gen", 1000), Academic: rankedWords("aca", 200)}
	svc := NewTrainerService(sources, lexicon.DefaultAcademicOffset, defaults, repositories(db), email)
	var seed int64
	svc.SetRandSource(func() sampler.Rand {
		seed++
		return rand.New(rand.NewSource(seed))
	})
	t.Cleanup(svc.Close)
	return svc
}

func newLearner(t *testing.T, db *database.DB, email string) *models.Learner {
	t.Helper()
	learner, err := repository.NewLearnerRepository(db).CreateLearner(email, "", "Test Learner", "", "")
	if err != nil {
		t.Fatalf("CreateLearner() error = %v", err)
	}
	return learner
}

func boolPtr(b bool) *bool { return &b }

// fakeSender records SES requests
type fakeSender struct {
	mu     sync.Mutex
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSender) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{}, nil
}

func (f *fakeSender) sent() []*sesv2.SendEmailInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*sesv2.SendEmailInput(nil), f.inputs...)
}

func newTestAuth(t *testing.T, db *database.DB, email *EmailService) *AuthService {
	t.Helper()
	tokens := security.NewTokenManager("test-secret", "vocabtrainer")
	return NewAuthService(repository.NewLearnerRepository(db), tokens, email, time.Hour)
}
