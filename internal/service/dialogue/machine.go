// Package dialogue implements the three-question registration dialogue.
package dialogue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// EffectKind says what the transport should do after a transition.
type EffectKind int

const (
	// EffectPrompt asks the question for Field.
	EffectPrompt EffectKind = iota
	// EffectReprompt repeats the question for Field with a Reason.
	EffectReprompt
	// EffectCompleted means all answers were collected.
	EffectCompleted
)

func (k EffectKind) String() string {
	switch k {
	case EffectPrompt:
		return "prompt"
	case EffectReprompt:
		return "reprompt"
	case EffectCompleted:
		return "completed"
	}
	return "unknown"
}

// Field names the question being asked.
type Field string

const (
	FieldLevel        Field = "level"
	FieldWordsPerDay  Field = "words_per_day"
	FieldDeliveryTime Field = "time"
)

// Effect is the outcome of a transition.
type Effect struct {
	Kind   EffectKind
	Field  Field
	Reason string
}

// Machine holds the answer bounds. The zero value accepts any positive
// words-per-day count.
type Machine struct {
	MaxWordsPerDay int
}

// Transition is Machine{}.Transition.
func Transition(s domain.RegistrationSession, input string) (domain.RegistrationSession, Effect) {
	return Machine{}.Transition(s, input)
}

// Transition advances s by one answer. Invalid input returns s unchanged
// with a Reprompt. A completed session ignores further input.
func (m Machine) Transition(s domain.RegistrationSession, input string) (domain.RegistrationSession, Effect) {
	input = strings.TrimSpace(input)

	switch s.State {
	case domain.StateAwaitingLevel:
		level, ok := domain.ParseLevel(input)
		if !ok {
			return s, Effect{Kind: EffectReprompt, Field: FieldLevel, Reason: "unknown level"}
		}
		s.Draft.Level = level
		s.State = domain.StateAwaitingWordsPerDay
		return s, Effect{Kind: EffectPrompt, Field: FieldWordsPerDay}

	case domain.StateAwaitingWordsPerDay:
		n, err := m.parseWordsPerDay(input)
		if err != nil {
			return s, Effect{Kind: EffectReprompt, Field: FieldWordsPerDay, Reason: err.Error()}
		}
		s.Draft.WordsPerDay = n
		s.State = domain.StateAwaitingDeliveryTime
		return s, Effect{Kind: EffectPrompt, Field: FieldDeliveryTime}

	case domain.StateAwaitingDeliveryTime:
		t, err := domain.ParseDeliveryTime(input)
		if err != nil {
			reason := "expected HH:MM"
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				reason = ve.FirstMessage()
			}
			return s, Effect{Kind: EffectReprompt, Field: FieldDeliveryTime, Reason: reason}
		}
		s.Draft.DeliveryTime = t
		s.State = domain.StateComplete
		return s, Effect{Kind: EffectCompleted}
	}

	return s, Effect{Kind: EffectCompleted}
}

func (m Machine) parseWordsPerDay(input string) (int, error) {
	n, err := strconv.Atoi(input)
	if err != nil || n <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	if m.MaxWordsPerDay > 0 && n > m.MaxWordsPerDay {
		return 0, fmt.Errorf("must be at most %d", m.MaxWordsPerDay)
	}
	return n, nil
}
