package domain

// VocabularyItem is one enriched word of the corpus. Word is the unique key.
type VocabularyItem struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Definition  string `json:"definition"`
	Level       Level  `json:"level"`
}

// NewVocabularyItem builds a Beginner item with a normalized key.
func NewVocabularyItem(word, translation, definition string) VocabularyItem {
	return VocabularyItem{
		Word:        NormalizeWord(word),
		Translation: translation,
		Definition:  definition,
		Level:       LevelBeginner,
	}
}
