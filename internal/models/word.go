package models

// WordEntry is one ranked lexicon entry. Lower rank means more common.
type WordEntry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Rank       int    `json:"rank"`
}

// StudyCollection names a persisted word -> definition set
type StudyCollection string

const (
	// CollectionPractice holds words missed in a round
	CollectionPractice StudyCollection = "practice"
	// CollectionStarred holds words bookmarked by the learner
	CollectionStarred StudyCollection = "starred"
)

// Valid reports whether c is a known collection
func (c StudyCollection) Valid() bool {
	return c == CollectionPractice || c == CollectionStarred
}
