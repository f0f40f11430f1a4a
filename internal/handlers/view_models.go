package handlers

import (
	"strings"
	"time"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/service"
)

type LearnerView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthView struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Learner   LearnerView `json:"learner"`
}

// SessionView is what the client renders for the current phase. Exactly one of
// Calibration, Round and Results is set, except in the idle phase.
type SessionView struct {
	Phase       service.Phase    `json:"phase"`
	Calibration *CalibrationView `json:"calibration,omitempty"`
	Round       *RoundView       `json:"round,omitempty"`
	Results     *ResultsView     `json:"results,omitempty"`
}

type CalibrationView struct {
	Word  string  `json:"word"`
	Index int     `json:"index"`
	Total int     `json:"total"`
	Level float64 `json:"level"`
}

// RoundView carries the definition only once it has been revealed
type RoundView struct {
	Word              string `json:"word"`
	Definition        string `json:"definition,omitempty"`
	Revealed          bool   `json:"revealed"`
	Starred           bool   `json:"starred"`
	Index             int    `json:"index"`
	Total             int    `json:"total"`
	Difficulty        int    `json:"difficulty"`
	RevealCount       int    `json:"revealCount"`
	AtStart           bool   `json:"atStart"`
	AtLastWord        bool   `json:"atLastWord"`
	PendingDifficulty bool   `json:"pendingDifficulty"`
}

type ResultsView struct {
	Total           int                 `json:"total"`
	Correct         int                 `json:"correct"`
	Accuracy        float64             `json:"accuracy"`
	StartDifficulty int                 `json:"startDifficulty"`
	EndDifficulty   int                 `json:"endDifficulty"`
	Items           []models.ResultItem `json:"items"`
	WrongWordsText  string              `json:"wrongWordsText"`
}

type StudyWordsView struct {
	Collection models.StudyCollection `json:"collection"`
	Words      []models.StudyWord     `json:"words"`
}

type RoundRecordView struct {
	ID              int64     `json:"id"`
	StartDifficulty int       `json:"startDifficulty"`
	EndDifficulty   int       `json:"endDifficulty"`
	TotalWords      int       `json:"totalWords"`
	CorrectWords    int       `json:"correctWords"`
	StartedAt       time.Time `json:"startedAt"`
	CompletedAt     time.Time `json:"completedAt"`
}

func newLearnerView(l *models.Learner) LearnerView {
	return LearnerView{ID: l.ID, Email: l.Email, Name: l.Name}
}

func newAuthView(result *service.AuthResult) AuthView {
	return AuthView{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Learner:   newLearnerView(result.Learner),
	}
}

func newSessionView(snap *service.Snapshot) SessionView {
	view := SessionView{Phase: snap.Phase}
	switch {
	case snap.Calibration != nil:
		c := snap.Calibration
		view.Calibration = &CalibrationView{Word: c.Word.Word, Index: c.Index, Total: c.Total, Level: c.Level}
	case snap.Round != nil:
		r := snap.Round
		view.Round = &RoundView{
			Word:              r.Word.Word,
			Revealed:          r.Revealed,
			Starred:           r.Starred,
			Index:             r.Index,
			Total:             r.Total,
			Difficulty:        r.Difficulty,
			RevealCount:       r.RevealCount,
			AtStart:           r.AtStart,
			AtLastWord:        r.AtLastWord,
			PendingDifficulty: r.PendingDifficulty,
		}
		if r.Revealed {
			view.Round.Definition = r.Word.Definition
		}
	case snap.Summary != nil:
		results := newResultsView(*snap.Summary)
		view.Results = &results
	}
	return view
}

func newResultsView(s models.RoundSummary) ResultsView {
	items := s.Items
	if items == nil {
		items = []models.ResultItem{}
	}
	return ResultsView{
		Total:           s.Total,
		Correct:         s.Correct,
		Accuracy:        s.Accuracy(),
		StartDifficulty: s.StartDifficulty,
		EndDifficulty:   s.EndDifficulty,
		Items:           items,
		WrongWordsText:  strings.Join(s.WrongWords(), "\n"),
	}
}

func newRoundRecordViews(records []models.RoundRecord) []RoundRecordView {
	views := make([]RoundRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, RoundRecordView{
			ID:              r.ID,
			StartDifficulty: r.StartDifficulty,
			EndDifficulty:   r.EndDifficulty,
			TotalWords:      r.TotalWords,
			CorrectWords:    r.CorrectWords,
			StartedAt:       r.StartedAt,
			CompletedAt:     r.CompletedAt,
		})
	}
	return views
}
