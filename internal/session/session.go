// Package session drives a flashcard round: cursor movement, definition reveals,
// answer history, and the batch-by-batch difficulty adjustment.
//
// Every BatchSize words the controller looks at how many definitions were revealed
// in that batch. Many reveals lower the difficulty by AdjustDown, few raise it by
// AdjustUp, and any change resamples the words not reached yet. Words already passed
// and their history are never rewritten.
//
// A Controller is not safe for concurrent use; callers serialise access.
package session

import (
	"vocabtrainer/internal/lexicon"
	"vocabtrainer/internal/models"
	"vocabtrainer/internal/sampler"
)

const (
	BatchSize = 10

	// HighRevealCount or more reveals in a batch lowers difficulty
	HighRevealCount = 7
	// LowRevealCount or fewer reveals in a batch raises difficulty
	LowRevealCount = 2

	AdjustDown = 5
	AdjustUp   = 3
)

// State of a round
type State int

const (
	Active State = iota
	Complete
)

func (s State) String() string {
	if s == Complete {
		return "complete"
	}
	return "active"
}

// AdvanceResult tells the caller what Advance did
type AdvanceResult int

const (
	// Advanced moved the cursor to the next word
	Advanced AdvanceResult = iota
	// AtLastWord means the cursor is on the final word; the caller should complete the round
	AtLastWord
	// Inactive means the round is already complete or empty
	Inactive
)

// Options configure a round
type Options struct {
	Difficulty      int
	RoundLength     int
	AutoRemoveCount int
	// CorrectCounts are prior correct answers per word, read only
	CorrectCounts map[string]int
	// Seed words are placed at the start of the round, typically from calibration
	Seed       []models.WordEntry
	AutoAdjust bool
	Grader     Grader
	Rand       sampler.Rand
}

// Controller owns the state of one round
type Controller struct {
	lex         *lexicon.Lexicon
	rng         sampler.Rand
	grader      Grader
	roundLength int
	autoAdjust  bool
	removeAt    int
	counts      map[string]int

	startDifficulty int
	difficulty      int

	wordList           []models.WordEntry
	cursor             int
	furthest           int
	history            map[int]models.HistoryEntry
	revealedAt         map[int]bool
	revealCountInBatch int
	// adjustedThrough is the word count covered by batches already closed
	adjustedThrough int
	state           State
}

// New starts a round. The word list is the seed followed by a sample sized to fill the
// round, with words already answered correctly AutoRemoveCount times dropped. A round
// that ends up empty starts out Complete.
func New(lex *lexicon.Lexicon, opts Options) *Controller {
	grader := opts.Grader
	if grader == nil {
		grader = AlwaysCorrect
	}
	difficulty := clampDifficulty(opts.Difficulty)

	c := &Controller{
		lex:             lex,
		rng:             opts.Rand,
		grader:          grader,
		roundLength:     max(1, opts.RoundLength),
		autoAdjust:      opts.AutoAdjust,
		removeAt:        opts.AutoRemoveCount,
		counts:          opts.CorrectCounts,
		startDifficulty: difficulty,
		difficulty:      difficulty,
		history:         make(map[int]models.HistoryEntry),
		revealedAt:      make(map[int]bool),
	}

	words := make([]models.WordEntry, 0, c.roundLength)
	words = append(words, opts.Seed...)
	words = append(words, sampler.Sample(lex, float64(difficulty), c.roundLength-len(opts.Seed), c.rng)...)
	c.wordList = c.filter(words)

	if len(c.wordList) == 0 {
		c.state = Complete
	}
	return c
}

func (c *Controller) filter(words []models.WordEntry) []models.WordEntry {
	if c.removeAt <= 0 || len(c.counts) == 0 {
		return words
	}
	kept := words[:0]
	for _, w := range words {
		if c.counts[w.Word] < c.removeAt {
			kept = append(kept, w)
		}
	}
	return kept
}

// Reveal shows the definition of the current word. Only the first reveal per word
// counts towards the batch, even when the learner comes back to it; it reports
// whether anything changed.
func (c *Controller) Reveal() bool {
	if c.state != Active || c.revealedAt[c.cursor] {
		return false
	}
	c.revealedAt[c.cursor] = true
	c.revealCountInBatch++
	return true
}

// Advance records the current word and moves to the next one. On the last word it
// does nothing and returns AtLastWord.
func (c *Controller) Advance() AdvanceResult {
	if c.state != Active {
		return Inactive
	}
	if c.cursor >= len(c.wordList)-1 {
		return AtLastWord
	}

	entry := c.wordList[c.cursor]
	c.history[c.cursor] = models.HistoryEntry{
		Word:       entry.Word,
		Definition: entry.Definition,
		Correct:    c.grader.Grade(entry, c.revealedAt[c.cursor]),
	}

	// each batch is closed once, the first time the cursor leaves it
	if next := c.cursor + 1; next%BatchSize == 0 && next > c.adjustedThrough {
		c.adjustedThrough = next
		c.endBatch()
	}

	c.cursor++
	c.furthest = max(c.furthest, c.cursor)
	return Advanced
}

// Retreat moves back one word without touching history or reveals
func (c *Controller) Retreat() bool {
	if c.state != Active || c.cursor <= 0 {
		return false
	}
	c.cursor--
	return true
}

func (c *Controller) endBatch() {
	reveals := c.revealCountInBatch
	c.revealCountInBatch = 0
	if !c.autoAdjust {
		return
	}
	if next := AutoAdjust(c.difficulty, reveals); next != c.difficulty {
		c.SetDifficulty(next)
	}
}

// AutoAdjust returns the difficulty for the next batch given this batch's reveal count
func AutoAdjust(difficulty, reveals int) int {
	switch {
	case reveals >= HighRevealCount:
		return max(0, difficulty-AdjustDown)
	case reveals <= LowRevealCount:
		return min(100, difficulty+AdjustUp)
	}
	return difficulty
}

// SetDifficulty stores a new difficulty and resamples the words not yet seen so the
// round still totals RoundLength. Every word up to the furthest one reached is kept,
// so retreating first never discards answered words.
func (c *Controller) SetDifficulty(difficulty int) {
	if c.state != Active {
		return
	}
	c.difficulty = clampDifficulty(difficulty)

	keep := c.furthest + 1
	remaining := c.roundLength - keep
	if remaining <= 0 {
		return
	}

	fresh := c.filter(sampler.Sample(c.lex, float64(c.difficulty), remaining, c.rng))
	words := make([]models.WordEntry, 0, keep+len(fresh))
	words = append(words, c.wordList[:keep]...)
	words = append(words, fresh...)
	c.wordList = words
}

// Complete ends the round and builds its report. Words without a history entry are
// reported as unreviewed and incorrect. Calling it again returns the same report.
func (c *Controller) Complete() models.RoundSummary {
	c.state = Complete

	summary := models.RoundSummary{
		Total:           len(c.wordList),
		StartDifficulty: c.startDifficulty,
		EndDifficulty:   c.difficulty,
		Items:           make([]models.ResultItem, len(c.wordList)),
	}
	for i, w := range c.wordList {
		item := models.ResultItem{Word: w.Word, Definition: w.Definition}
		if h, ok := c.history[i]; ok {
			item.Reviewed = true
			item.Correct = h.Correct
		}
		if item.Correct {
			summary.Correct++
		}
		summary.Items[i] = item
	}
	return summary
}

// Current returns the word under the cursor
func (c *Controller) Current() (models.WordEntry, bool) {
	if c.cursor >= len(c.wordList) {
		return models.WordEntry{}, false
	}
	return c.wordList[c.cursor], true
}

// WordList returns a copy of the round's words
func (c *Controller) WordList() []models.WordEntry {
	return append([]models.WordEntry(nil), c.wordList...)
}

// History returns a copy of the recorded answers keyed by word index
func (c *Controller) History() map[int]models.HistoryEntry {
	out := make(map[int]models.HistoryEntry, len(c.history))
	for k, v := range c.history {
		out[k] = v
	}
	return out
}

func (c *Controller) State() State { return c.state }
func (c *Controller) Cursor() int { return c.cursor }
func (c *Controller) Len() int { return len(c.wordList) }
func (c *Controller) Difficulty() int { return c.difficulty }
func (c *Controller) Revealed() bool { return c.revealedAt[c.cursor] }
func (c *Controller) RevealCount() int { return c.revealCountInBatch }

func clampDifficulty(d int) int {
	return max(0, min(100, d))
}
