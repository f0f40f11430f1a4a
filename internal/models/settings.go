package models

// Grading modes for recording correctness on advance
const (
	GradingAlways = "always"
	GradingReveal = "reveal"
)

// Settings is the trainer configuration consumed by a round
type Settings struct {
	Difficulty       int    `json:"difficulty"`
	AutoRemoveCount  int    `json:"autoRemoveCount"`
	RoundLength      int    `json:"roundLength"`
	ManualDifficulty bool   `json:"manualDifficulty"`
	DoAssessment     bool   `json:"doAssessment"`
	Grading          string `json:"grading"`
}

// Normalize clamps out-of-range values instead of rejecting them
func (s Settings) Normalize() Settings {
	if s.Difficulty < 0 {
		s.Difficulty = 0
	}
	if s.Difficulty > 100 {
		s.Difficulty = 100
	}
	if s.AutoRemoveCount < 0 {
		s.AutoRemoveCount = 0
	}
	if s.RoundLength < 1 {
		s.RoundLength = 1
	}
	if s.Grading != GradingReveal {
		s.Grading = GradingAlways
	}
	return s
}
