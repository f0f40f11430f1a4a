package service

import (
	"vocabtrainer/internal/calibration"
	"vocabtrainer/internal/models"
)

// Phase is the screen a learner is on
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseCalibration Phase = "calibration"
	PhaseTraining    Phase = "training"
	PhaseResults     Phase = "results"
)

// Snapshot is a read-only copy of a learner's trainer state
type Snapshot struct {
	Phase       Phase                `json:"phase"`
	Calibration *CalibrationSnapshot `json:"calibration,omitempty"`
	Round       *RoundSnapshot       `json:"round,omitempty"`
	Summary     *models.RoundSummary `json:"summary,omitempty"`
}

// CalibrationSnapshot describes the word awaiting a rating
type CalibrationSnapshot struct {
	Word  models.WordEntry `json:"word"`
	Index int              `json:"index"`
	Total int              `json:"total"`
	Level float64          `json:"level"`
}

// RoundSnapshot describes the current drill word
type RoundSnapshot struct {
	Word              models.WordEntry `json:"word"`
	Index             int              `json:"index"`
	Total             int              `json:"total"`
	Difficulty        int              `json:"difficulty"`
	Revealed          bool             `json:"revealed"`
	Starred           bool             `json:"starred"`
	RevealCount       int              `json:"revealCount"`
	AtStart           bool             `json:"atStart"`
	AtLastWord        bool             `json:"atLastWord"`
	PendingDifficulty bool             `json:"pendingDifficulty"`
}

// snapshot must be called with st.mu held
func (st *learnerState) snapshot() *Snapshot {
	switch {
	case st.calib != nil:
		word, _ := st.calib.Current()
		return &Snapshot{
			Phase: PhaseCalibration,
			Calibration: &CalibrationSnapshot{
				Word:  word,
				Index: st.calib.Cursor(),
				Total: min(calibration.QuizLength, st.calib.Len()),
				Level: st.calib.Level(),
			},
		}

	case st.round != nil:
		r := st.round
		word, _ := r.Current()
		_, starred := st.starred[word.Word]
		return &Snapshot{
			Phase: PhaseTraining,
			Round: &RoundSnapshot{
				Word:              word,
				Index:             r.Cursor(),
				Total:             r.Len(),
				Difficulty:        r.Difficulty(),
				Revealed:          r.Revealed(),
				Starred:           starred,
				RevealCount:       r.RevealCount(),
				AtStart:           r.Cursor() == 0,
				AtLastWord:        r.Cursor() >= r.Len()-1,
				PendingDifficulty: st.resample.Pending(),
			},
		}

	case st.summary != nil:
		return &Snapshot{Phase: PhaseResults, Summary: st.summary}
	}
	return &Snapshot{Phase: PhaseIdle}
}
