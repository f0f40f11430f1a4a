// Package sampler selects randomized runs of words around a difficulty percentile.
//
// A percentile p maps to the index floor(p/100 * len) of the rank-sorted lexicon. Sample
// takes the contiguous window of count entries centred on that index, clipped to the
// lexicon bounds, and returns it shuffled. Near either end of the range the window is
// clipped and the result can be shorter than count.
package sampler

import (
	"math"
	"math/rand"

	"vocabtrainer/internal/lexicon"
	"vocabtrainer/internal/models"
)

// Rand is the randomness Sample needs. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Window returns the [start, end) bounds of the centred window for a lexicon of the given length.
// Out of range percentiles are clamped to [0, 100].
func Window(length int, difficultyPercent float64, count int) (start, end int) {
	if length <= 0 || count <= 0 {
		return 0, 0
	}
	p := ClampPercent(difficultyPercent)
	center := int(math.Floor(p / 100 * float64(length)))
	start = max(0, center-count/2)
	end = min(length, start+count)
	return start, end
}

// Sample returns a shuffled copy of the window around difficultyPercent.
// An empty lexicon or non-positive count yields an empty result. A nil rng uses math/rand.
func Sample(lex *lexicon.Lexicon, difficultyPercent float64, count int, rng Rand) []models.WordEntry {
	start, end := Window(lex.Len(), difficultyPercent, count)
	if end <= start {
		return []models.WordEntry{}
	}
	if rng == nil {
		rng = globalRand{}
	}

	out := lex.Slice(start, end)
	Shuffle(out, rng)
	return out
}

// Shuffle applies a Fisher-Yates permutation, swapping from the last element down
func Shuffle(words []models.WordEntry, rng Rand) {
	for i := len(words) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		words[i], words[j] = words[j], words[i]
	}
}

// ClampPercent limits p to [0, 100]. NaN becomes 0.
func ClampPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Band linearly maps the user facing [0, 100] range onto [Base, Base+Range]
type Band struct {
	Base  float64
	Range float64
}

// FullRange is the identity band
var FullRange = Band{Base: 0, Range: 100}

// Remap converts a level in [0, 100] into a percentile inside the band
func (b Band) Remap(x float64) float64 {
	return ClampPercent(b.Base + (ClampPercent(x)/100)*b.Range)
}
