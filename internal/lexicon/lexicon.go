// Package lexicon holds the rank-ordered word catalog that every sampler call reads from.
package lexicon

import (
	"sort"
	"strings"

	"vocabtrainer/internal/models"
)

// DefaultAcademicOffset places academic ranks after the general list when both are combined
const DefaultAcademicOffset = 3000

// Lexicon is an immutable sequence of entries sorted ascending by rank
type Lexicon struct {
	entries []models.WordEntry
}

// New copies entries and sorts them by rank. Entries with equal rank keep their input order.
func New(entries []models.WordEntry) *Lexicon {
	sorted := make([]models.WordEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank < sorted[j].Rank
	})
	return &Lexicon{entries: sorted}
}

// Len returns the number of entries
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// At returns the entry at index i
func (l *Lexicon) At(i int) models.WordEntry {
	return l.entries[i]
}

// Slice returns a copy of entries in [start, end)
func (l *Lexicon) Slice(start, end int) []models.WordEntry {
	out := make([]models.WordEntry, end-start)
	copy(out, l.entries[start:end])
	return out
}

// Entries returns a copy of all entries
func (l *Lexicon) Entries() []models.WordEntry {
	if l == nil {
		return nil
	}
	return l.Slice(0, len(l.entries))
}

// Selection chooses which sources make up a combined lexicon
type Selection struct {
	UseGeneral     bool
	UseAcademic    bool
	AcademicOffset int
}

// Combine concatenates the selected sources and sorts the result by rank.
// Academic ranks are shifted by AcademicOffset only when the general list is also selected.
func Combine(general, academic []models.WordEntry, sel Selection) *Lexicon {
	var combined []models.WordEntry
	if sel.UseGeneral {
		combined = append(combined, general...)
	}
	if sel.UseAcademic {
		offset := 0
		if sel.UseGeneral {
			offset = sel.AcademicOffset
		}
		for _, e := range academic {
			e.Rank += offset
			combined = append(combined, e)
		}
	}
	return New(combined)
}

// ParseCustomWords splits newline separated text into a set of trimmed, lowercased words
func ParseCustomWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		w := strings.ToLower(strings.TrimSpace(line))
		if w == "" {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}

// FilterCustom keeps only entries whose lowercased word appears in the custom list.
// Blank text returns the lexicon unchanged.
func (l *Lexicon) FilterCustom(text string) *Lexicon {
	words := ParseCustomWords(text)
	if len(words) == 0 {
		return l
	}
	var kept []models.WordEntry
	for _, e := range l.entries {
		if _, ok := words[strings.ToLower(e.Word)]; ok {
			kept = append(kept, e)
		}
	}
	return &Lexicon{entries: kept}
}
