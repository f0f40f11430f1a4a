// Package calibration runs the placement quiz that estimates a starting difficulty.
//
// The learner rates their confidence in each word from 1 to 4. After every ten ratings
// the running level moves by a step chosen from the average of those ten ratings, and ten
// words sampled at the new level are inserted ahead of the cursor. The quiz ends after
// seventy ratings or when the learner skips.
package calibration

import (
	"errors"
	"math"

	"vocabtrainer/internal/lexicon"
	"vocabtrainer/internal/models"
	"vocabtrainer/internal/sampler"
)

const (
	// QuizLength is the number of ratings after which calibration finishes
	QuizLength = 70
	// CheckpointInterval is how many ratings are averaged per level adjustment
	CheckpointInterval = 10
	// DefaultLevel is the starting level when the learner has not picked one
	DefaultLevel = 50

	MinScore = 1
	MaxScore = 4
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 4")
	ErrFinished      = errors.New("calibration already finished")
)

// State of the calibration run
type State int

const (
	Running State = iota
	Finished
)

func (s State) String() string {
	if s == Finished {
		return "finished"
	}
	return "running"
}

// Options tune sampling for a run
type Options struct {
	// Band remaps the level before sampling. The zero value means the full range.
	Band sampler.Band
	Rand sampler.Rand
}

// Engine owns the calibration word list and level estimate
type Engine struct {
	lex       *lexicon.Lexicon
	band      sampler.Band
	rng       sampler.Rand
	wordList  []models.WordEntry
	cursor    int
	responses []int
	level     float64
	state     State
}

// Result is what calibration hands to the training round
type Result struct {
	Difficulty int
	Seed       []models.WordEntry
}

// Start begins a run seeded from settings: the learner's difficulty when they chose it
// manually, otherwise DefaultLevel.
func Start(lex *lexicon.Lexicon, settings models.Settings, opts Options) *Engine {
	level := float64(DefaultLevel)
	if settings.ManualDifficulty {
		level = float64(settings.Difficulty)
	}
	return New(lex, level, opts)
}

// New begins a run at level
func New(lex *lexicon.Lexicon, level float64, opts Options) *Engine {
	band := opts.Band
	if band == (sampler.Band{}) {
		band = sampler.FullRange
	}
	e := &Engine{
		lex:   lex,
		band:  band,
		rng:   opts.Rand,
		level: clampLevel(level),
	}
	e.wordList = sampler.Sample(lex, band.Remap(e.level), QuizLength, e.rng)
	if len(e.wordList) == 0 {
		e.state = Finished
	}
	return e
}

// Rate records a confidence score for the current word and moves the cursor on
func (e *Engine) Rate(score int) (State, error) {
	if e.state == Finished {
		return e.state, ErrFinished
	}
	if score < MinScore || score > MaxScore {
		return e.state, ErrInvalidRating
	}

	e.responses = append(e.responses, score)
	e.cursor++

	if e.cursor%CheckpointInterval == 0 {
		e.adjust()
	}

	if e.cursor >= QuizLength || e.cursor >= len(e.wordList) {
		e.state = Finished
	}
	return e.state, nil
}

func (e *Engine) adjust() {
	last := e.responses[len(e.responses)-CheckpointInterval:]
	sum := 0
	for _, r := range last {
		sum += r
	}
	avg := float64(sum) / float64(len(last))

	e.level = clampLevel(e.level + Delta(avg))

	fresh := sampler.Sample(e.lex, e.band.Remap(e.level), CheckpointInterval, e.rng)
	if len(fresh) == 0 {
		return
	}
	list := make([]models.WordEntry, 0, len(e.wordList)+len(fresh))
	list = append(list, e.wordList[:e.cursor]...)
	list = append(list, fresh...)
	list = append(list, e.wordList[e.cursor:]...)
	e.wordList = list
}

// Delta maps the average of a batch of ratings to a level step.
// An average of exactly 2.5 leaves the level unchanged.
func Delta(avg float64) float64 {
	switch {
	case avg > 3.2:
		return 15
	case avg > 2.5:
		return 7
	case avg < 1.8:
		return -15
	case avg < 2.5:
		return -7
	}
	return 0
}

// Skip ends the run immediately with whatever level and answered prefix it has
func (e *Engine) Skip() {
	e.state = Finished
}

// Current returns the word awaiting a rating
func (e *Engine) Current() (models.WordEntry, bool) {
	if e.state == Finished || e.cursor >= len(e.wordList) {
		return models.WordEntry{}, false
	}
	return e.wordList[e.cursor], true
}

// Result returns the rounded level and the rated prefix of the word list
func (e *Engine) Result() Result {
	seed := make([]models.WordEntry, e.cursor)
	copy(seed, e.wordList[:e.cursor])
	return Result{
		Difficulty: int(math.Round(e.level)),
		Seed:       seed,
	}
}

func (e *Engine) State() State { return e.state }
func (e *Engine) Level() float64 { return e.level }
func (e *Engine) Cursor() int { return e.cursor }
func (e *Engine) Len() int { return len(e.wordList) }
func (e *Engine) Responses() []int { return append([]int(nil), e.responses...) }

func clampLevel(level float64) float64 {
	return math.Max(0, math.Min(100, level))
}
