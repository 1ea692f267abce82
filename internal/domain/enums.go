package domain

import "strings"

// Level is the learner's proficiency tier.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Levels lists all tiers in ascending order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

func (l Level) String() string { return string(l) }

func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ParseLevel matches s against the known tiers, ignoring case and
// surrounding whitespace.
func ParseLevel(s string) (Level, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Levels {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}
