package session

import "vocabtrainer/internal/models"

// Grader decides whether a word counts as known when the learner advances past it
type Grader interface {
	Grade(entry models.WordEntry, revealed bool) bool
}

// GraderFunc adapts a function to Grader
type GraderFunc func(entry models.WordEntry, revealed bool) bool

// Grade calls f
func (f GraderFunc) Grade(entry models.WordEntry, revealed bool) bool {
	return f(entry, revealed)
}

var (
	// AlwaysCorrect records every reviewed word as correct
	AlwaysCorrect Grader = GraderFunc(func(models.WordEntry, bool) bool { return true })

	// UnrevealedCorrect treats revealing the definition as not knowing the word
	UnrevealedCorrect Grader = GraderFunc(func(_ models.WordEntry, revealed bool) bool { return !revealed })
)

// GraderFor returns the grader for a settings grading mode
func GraderFor(mode string) Grader {
	if mode == models.GradingReveal {
		return UnrevealedCorrect
	}
	return AlwaysCorrect
}
