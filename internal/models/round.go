package models

import "time"

// HistoryEntry is written when the learner advances past a word
type HistoryEntry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Correct    bool   `json:"correct"`
}

// ResultItem is one row of a round report
type ResultItem struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Correct    bool   `json:"correct"`
	Reviewed   bool   `json:"reviewed"`
}

// RoundSummary reports a completed round. Words never advanced past count as incorrect.
type RoundSummary struct {
	Total           int          `json:"total"`
	Correct         int          `json:"correct"`
	StartDifficulty int          `json:"startDifficulty"`
	EndDifficulty   int          `json:"endDifficulty"`
	Items           []ResultItem `json:"items"`
}

// Accuracy returns the percentage of correct words
func (s RoundSummary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// WrongWords lists the words that were not answered correctly, in round order
func (s RoundSummary) WrongWords() []string {
	var words []string
	for _, item := range s.Items {
		if !item.Correct {
			words = append(words, item.Word)
		}
	}
	return words
}

// RoundRecord is an archived round
type RoundRecord struct {
	ID              int64
	LearnerID       int64
	StartDifficulty int
	EndDifficulty   int
	TotalWords      int
	CorrectWords    int
	StartedAt       time.Time
	CompletedAt     time.Time
}
