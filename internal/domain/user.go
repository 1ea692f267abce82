package domain

import (
	"slices"
	"strings"
)

const (
	DefaultWordsPerDay = 5
	DefaultTargetLang  = "ru"
)

// UserProfile is the per-user record. Field names on the wire match the
// users.json layout the bot has always written.
type UserProfile struct {
	Username          string       `json:"username"`
	Level             Level        `json:"level"`
	WordsPerDay       int          `json:"words_per_day"`
	DeliveryTime      DeliveryTime `json:"time"`
	IsPremium         bool         `json:"is_premium"`
	PendingPremium    bool         `json:"pending_premium"`
	TargetLang        string       `json:"target_lang"`
	LearnedWords      []string     `json:"learned_words"`
	TranslationsToday int          `json:"translations_today"`
	// LastDelivery is the SlotKey of the most recent delivery.
	LastDelivery string `json:"last_delivery,omitempty"`
	// Exhausted is set once the user has been told no unseen words are
	// left, and cleared by the next full delivery.
	Exhausted bool `json:"exhausted,omitempty"`
}

// NewUserProfile returns a profile with all defaults filled in.
func NewUserProfile(username string) UserProfile {
	return UserProfile{
		Username:     strings.TrimSpace(username),
		Level:        LevelBeginner,
		WordsPerDay:  DefaultWordsPerDay,
		DeliveryTime: DefaultDeliveryTime,
		TargetLang:   DefaultTargetLang,
		LearnedWords: []string{},
	}
}

// FillDefaults replaces zero or invalid fields of a decoded record with
// defaults. Counters and flags are left as decoded.
func (p *UserProfile) FillDefaults() {
	if !p.Level.IsValid() {
		p.Level = LevelBeginner
	}
	if p.WordsPerDay <= 0 {
		p.WordsPerDay = DefaultWordsPerDay
	}
	if p.TargetLang == "" {
		p.TargetLang = DefaultTargetLang
	}
	if p.LearnedWords == nil {
		p.LearnedWords = []string{}
	}
	if p.TranslationsToday < 0 {
		p.TranslationsToday = 0
	}
}

// Validate checks the profile invariants.
func (p UserProfile) Validate() error {
	var errs []FieldError
	if !p.Level.IsValid() {
		errs = append(errs, FieldError{Field: "level", Message: "unknown level"})
	}
	if p.WordsPerDay <= 0 {
		errs = append(errs, FieldError{Field: "words_per_day", Message: "must be positive"})
	}
	if p.TargetLang == "" {
		errs = append(errs, FieldError{Field: "target_lang", Message: "required"})
	}
	if p.TranslationsToday < 0 {
		errs = append(errs, FieldError{Field: "translations_today", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Clone returns a deep copy.
func (p UserProfile) Clone() UserProfile {
	p.LearnedWords = slices.Clone(p.LearnedWords)
	if p.LearnedWords == nil {
		p.LearnedWords = []string{}
	}
	return p
}

// HasLearned reports whether word was already delivered.
func (p UserProfile) HasLearned(word string) bool {
	return slices.Contains(p.LearnedWords, word)
}

// LearnedSet returns the delivered words as a set.
func (p UserProfile) LearnedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.LearnedWords))
	for _, w := range p.LearnedWords {
		set[w] = struct{}{}
	}
	return set
}

// MarkLearned appends the words not yet present and returns how many were added.
func (p *UserProfile) MarkLearned(words ...string) int {
	seen := p.LearnedSet()
	added := 0
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		p.LearnedWords = append(p.LearnedWords, w)
		added++
	}
	return added
}

// UserEntry pairs a profile with its id.
type UserEntry struct {
	ID      int64
	Profile UserProfile
}

// UserStats holds aggregate registry counts.
type UserStats struct {
	Total   int
	Premium int
	Pending int
}
