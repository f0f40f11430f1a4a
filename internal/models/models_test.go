package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				LearnerID: 1,
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			if got := session.IsExpired(); got != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettingsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{
			name: "in range untouched",
			in:   Settings{Difficulty: 40, AutoRemoveCount: 2, RoundLength: 100, Grading: GradingReveal},
			want: Settings{Difficulty: 40, AutoRemoveCount: 2, RoundLength: 100, Grading: GradingReveal},
		},
		{
			name: "clamped high",
			in:   Settings{Difficulty: 140, AutoRemoveCount: 1, RoundLength: 5},
			want: Settings{Difficulty: 100, AutoRemoveCount: 1, RoundLength: 5, Grading: GradingAlways},
		},
		{
			name: "clamped low",
			in:   Settings{Difficulty: -3, AutoRemoveCount: -2, RoundLength: 0, Grading: "bogus"},
			want: Settings{Difficulty: 0, AutoRemoveCount: 0, RoundLength: 1, Grading: GradingAlways},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRoundSummaryCalculation(t *testing.T) {
	summary := RoundSummary{
		Total:   4,
		Correct: 3,
		Items: []ResultItem{
			{Word: "alpha", Correct: true, Reviewed: true},
			{Word: "beta", Correct: true, Reviewed: true},
			{Word: "gamma", Correct: true, Reviewed: true},
			{Word: "delta", Correct: false, Reviewed: false},
		},
	}

	if got := summary.Accuracy(); got != 75.0 {
		t.Errorf("Accuracy() = %.2f, want %.2f", got, 75.0)
	}

	wrong := summary.WrongWords()
	if len(wrong) != 1 || wrong[0] != "delta" {
		t.Errorf("WrongWords() = %v, want [delta]", wrong)
	}

	if got := (RoundSummary{}).Accuracy(); got != 0 {
		t.Errorf("empty Accuracy() = %.2f, want 0", got)
	}
}

func TestStudyCollectionValid(t *testing.T) {
	if !CollectionPractice.Valid() || !CollectionStarred.Valid() {
		t.Error("known collections should be valid")
	}
	if StudyCollection("archive").Valid() {
		t.Error("unknown collection should be invalid")
	}
}
