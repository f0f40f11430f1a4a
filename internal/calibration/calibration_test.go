package calibration

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabtrainer/internal/lexicon"
	"vocabtrainer/internal/models"
	"vocabtrainer/internal/sampler"
)

func rankedLexicon(n int) *lexicon.Lexicon {
	entries := make([]models.WordEntry, n)
	for i := range entries {
		entries[i] = models.WordEntry{Word: "word", Definition: "d", Rank: i}
	}
	return lexicon.New(entries)
}

func newEngine(t *testing.T, level float64) *Engine {
	t.Helper()
	e := New(rankedLexicon(1000), level, Options{Rand: rand.New(rand.NewSource(1))})
	require.Equal(t, Running, e.State())
	require.Equal(t, QuizLength, e.Len())
	return e
}

func rateN(t *testing.T, e *Engine, n, score int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := e.Rate(score)
		require.NoError(t, err)
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		avg  float64
		want float64
	}{
		{4.0, 15},
		{3.3, 15},
		{3.2, 7},
		{2.6, 7},
		{2.5, 0},
		{2.4, -7},
		{1.8, -7},
		{1.7, -15},
		{1.0, -15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Delta(tt.avg), "Delta(%v)", tt.avg)
	}
}

func TestConvergence(t *testing.T) {
	e := newEngine(t, DefaultLevel)

	rateN(t, e, 10, 4)
	assert.Equal(t, 65.0, e.Level())

	rateN(t, e, 10, 1)
	assert.Equal(t, 50.0, e.Level())
}

func TestLevelOnlyChangesAtCheckpoints(t *testing.T) {
	e := newEngine(t, DefaultLevel)
	rateN(t, e, 9, 4)
	assert.Equal(t, 50.0, e.Level())
	rateN(t, e, 1, 4)
	assert.Equal(t, 65.0, e.Level())
}

func TestLevelStaysInRange(t *testing.T) {
	high := newEngine(t, 95)
	rateN(t, high, 10, 4)
	assert.Equal(t, 100.0, high.Level())

	low := newEngine(t, 5)
	rateN(t, low, 10, 1)
	assert.Equal(t, 0.0, low.Level())

	rng := rand.New(rand.NewSource(99))
	for run := 0; run < 50; run++ {
		e := New(rankedLexicon(500), float64(rng.Intn(101)), Options{Rand: rng})
		for e.State() == Running {
			_, err := e.Rate(1 + rng.Intn(4))
			require.NoError(t, err)
			require.GreaterOrEqual(t, e.Level(), 0.0)
			require.LessOrEqual(t, e.Level(), 100.0)
		}
	}
}

func TestCheckpointInsertsAheadOfCursor(t *testing.T) {
	e := newEngine(t, DefaultLevel)
	before := append([]models.WordEntry(nil), e.wordList[:10]...)
	rest := append([]models.WordEntry(nil), e.wordList[10:]...)

	rateN(t, e, 10, 4)

	assert.Equal(t, QuizLength+CheckpointInterval, e.Len())
	assert.Equal(t, before, e.wordList[:10], "answered prefix is kept")
	assert.Equal(t, rest, e.wordList[20:], "old tail follows the inserted words")

	// inserted words come from the window at the new level
	start, end := sampler.Window(1000, 65, CheckpointInterval)
	for _, w := range e.wordList[10:20] {
		assert.GreaterOrEqual(t, w.Rank, start)
		assert.Less(t, w.Rank, end)
	}
}

func TestFinishesAfterQuizLength(t *testing.T) {
	e := newEngine(t, DefaultLevel)
	rateN(t, e, QuizLength-1, 3)
	assert.Equal(t, Running, e.State())

	state, err := e.Rate(3)
	require.NoError(t, err)
	assert.Equal(t, Finished, state)

	_, err = e.Rate(3)
	assert.ErrorIs(t, err, ErrFinished)

	_, ok := e.Current()
	assert.False(t, ok)

	res := e.Result()
	assert.Len(t, res.Seed, QuizLength)
	assert.Len(t, e.Responses(), QuizLength)
}

func TestInvalidRating(t *testing.T) {
	e := newEngine(t, DefaultLevel)
	for _, score := range []int{0, 5, -1} {
		_, err := e.Rate(score)
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
	assert.Equal(t, 0, e.Cursor())
	assert.Empty(t, e.Responses())
}

func TestSkip(t *testing.T) {
	e := newEngine(t, DefaultLevel)
	rateN(t, e, 10, 4)
	rateN(t, e, 3, 2)
	answered := append([]models.WordEntry(nil), e.wordList[:13]...)

	e.Skip()
	assert.Equal(t, Finished, e.State())

	res := e.Result()
	assert.Equal(t, 65, res.Difficulty)
	assert.Equal(t, answered, res.Seed)
}

func TestStartUsesManualDifficulty(t *testing.T) {
	lex := rankedLexicon(1000)

	manual := Start(lex, models.Settings{Difficulty: 20, ManualDifficulty: true}, Options{})
	assert.Equal(t, 20.0, manual.Level())

	auto := Start(lex, models.Settings{Difficulty: 20}, Options{})
	assert.Equal(t, float64(DefaultLevel), auto.Level())
}

func TestBandRemapsSampling(t *testing.T) {
	e := New(rankedLexicon(1000), 50, Options{
		Band: sampler.Band{Base: 90, Range: 10},
		Rand: rand.New(rand.NewSource(5)),
	})
	start, end := sampler.Window(1000, 95, QuizLength)
	require.Equal(t, end-start, e.Len())
	for _, w := range e.wordList {
		assert.GreaterOrEqual(t, w.Rank, start)
		assert.Less(t, w.Rank, end)
	}
}

func TestEmptyLexiconFinishesImmediately(t *testing.T) {
	e := New(lexicon.New(nil), 50, Options{})
	assert.Equal(t, Finished, e.State())

	res := e.Result()
	assert.Equal(t, 50, res.Difficulty)
	assert.Empty(t, res.Seed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "finished", Finished.String())
}
