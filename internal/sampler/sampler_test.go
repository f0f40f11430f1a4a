package sampler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabtrainer/internal/lexicon"
	"vocabtrainer/internal/models"
)

func rankedLexicon(n int) *lexicon.Lexicon {
	entries := make([]models.WordEntry, n)
	for i := range entries {
		entries[i] = models.WordEntry{Word: wordFor(i), Definition: "d", Rank: i}
	}
	return lexicon.New(entries)
}

func wordFor(i int) string {
	return "w" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + string(rune('a'+(i/676)%26))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		pct       float64
		count     int
		wantStart int
		wantEnd   int
	}{
		{"centred", 1000, 50, 10, 495, 505},
		{"odd count", 1000, 50, 11, 495, 506},
		{"low edge clipped to zero start", 1000, 0, 10, 0, 10},
		{"high edge clipped", 1000, 100, 10, 995, 1000},
		{"near high edge", 1000, 99.8, 10, 993, 1000},
		{"count larger than lexicon", 50, 50, 200, 0, 50},
		{"percent above range clamped", 1000, 250, 10, 995, 1000},
		{"negative percent clamped", 1000, -5, 10, 0, 10},
		{"zero count", 1000, 50, 0, 0, 0},
		{"negative count", 1000, 50, -3, 0, 0},
		{"empty lexicon", 0, 50, 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.length, tt.pct, tt.count)
			assert.Equal(t, tt.wantStart, start, "start")
			assert.Equal(t, tt.wantEnd, end, "end")
		})
	}
}

func TestSampleReturnsWindowSubset(t *testing.T) {
	lex := rankedLexicon(1000)
	rng := rand.New(rand.NewSource(7))

	for _, pct := range []float64{0, 10, 33.3, 50, 75, 99, 100} {
		for _, count := range []int{1, 5, 10, 70, 100} {
			got := Sample(lex, pct, count, rng)
			start, end := Window(lex.Len(), pct, count)
			require.Len(t, got, end-start)

			seen := make(map[int]bool)
			for _, e := range got {
				assert.GreaterOrEqual(t, e.Rank, start)
				assert.Less(t, e.Rank, end)
				assert.False(t, seen[e.Rank], "duplicate rank %d", e.Rank)
				seen[e.Rank] = true
			}
		}
	}
}

func TestSampleUnclippedLength(t *testing.T) {
	lex := rankedLexicon(1000)
	got := Sample(lex, 50, 100, rand.New(rand.NewSource(1)))
	assert.Len(t, got, 100)
}

func TestSampleClippedAtTopEdge(t *testing.T) {
	lex := rankedLexicon(1000)
	got := Sample(lex, 100, 10, rand.New(rand.NewSource(1)))
	assert.Len(t, got, 5)
}

func TestSampleEmptyCases(t *testing.T) {
	assert.Empty(t, Sample(lexicon.New(nil), 50, 10, nil))
	assert.Empty(t, Sample(rankedLexicon(100), 50, 0, nil))
	assert.Empty(t, Sample(rankedLexicon(100), 50, -1, nil))
	assert.NotNil(t, Sample(nil, 50, 10, nil))
}

func TestSampleDoesNotMutateLexicon(t *testing.T) {
	lex := rankedLexicon(100)
	before := lex.Entries()
	Sample(lex, 50, 40, rand.New(rand.NewSource(3)))
	assert.Equal(t, before, lex.Entries())
}

func TestSampleShuffles(t *testing.T) {
	lex := rankedLexicon(1000)
	got := Sample(lex, 50, 50, rand.New(rand.NewSource(42)))

	inOrder := true
	for i := 1; i < len(got); i++ {
		if got[i].Rank < got[i-1].Rank {
			inOrder = false
			break
		}
	}
	assert.False(t, inOrder, "50 shuffled words should not come back sorted")
}

type fixedRand struct{ calls []int }

func (f *fixedRand) Intn(n int) int {
	f.calls = append(f.calls, n)
	return 0
}

func TestShuffleDrawsInclusiveBounds(t *testing.T) {
	words := []models.WordEntry{{Word: "a"}, {Word: "b"}, {Word: "c"}, {Word: "d"}}
	rng := &fixedRand{}
	Shuffle(words, rng)

	assert.Equal(t, []int{4, 3, 2}, rng.calls)
	// always swapping with index 0 rotates: i=3 swaps a,d; i=2 swaps d,c; i=1 swaps c,b
	assert.Equal(t, []string{"b", "c", "d", "a"}, []string{words[0].Word, words[1].Word, words[2].Word, words[3].Word})
}

func TestBandRemap(t *testing.T) {
	top := Band{Base: 90, Range: 10}

	assert.InDelta(t, 90.0, top.Remap(0), 1e-9)
	assert.InDelta(t, 95.0, top.Remap(50), 1e-9)
	assert.InDelta(t, 100.0, top.Remap(100), 1e-9)
	assert.InDelta(t, 100.0, top.Remap(150), 1e-9)

	for _, x := range []float64{0, 12.5, 50, 100} {
		assert.InDelta(t, x, FullRange.Remap(x), 1e-9)
	}
}
