package domain

// RegistrationState is the step of the registration dialogue.
type RegistrationState string

const (
	StateAwaitingLevel        RegistrationState = "awaiting_level"
	StateAwaitingWordsPerDay  RegistrationState = "awaiting_words_per_day"
	StateAwaitingDeliveryTime RegistrationState = "awaiting_delivery_time"
	StateComplete             RegistrationState = "complete"
)

func (s RegistrationState) String() string { return string(s) }

func (s RegistrationState) IsValid() bool {
	switch s {
	case StateAwaitingLevel, StateAwaitingWordsPerDay, StateAwaitingDeliveryTime, StateComplete:
		return true
	}
	return false
}

// RegistrationDraft holds the answers collected so far.
type RegistrationDraft struct {
	Level        Level        `json:"level,omitempty"`
	WordsPerDay  int          `json:"words_per_day,omitempty"`
	DeliveryTime DeliveryTime `json:"time"`
}

// RegistrationSession is the per-user dialogue state. It is not part of
// UserProfile and is discarded once the dialogue completes.
type RegistrationSession struct {
	UserID int64             `json:"user_id"`
	State  RegistrationState `json:"state"`
	Draft  RegistrationDraft `json:"draft"`
}

// NewRegistrationSession starts a dialogue at the level question.
func NewRegistrationSession(userID int64) RegistrationSession {
	return RegistrationSession{UserID: userID, State: StateAwaitingLevel}
}

// Apply copies the draft onto p.
func (d RegistrationDraft) Apply(p *UserProfile) {
	p.Level = d.Level
	p.WordsPerDay = d.WordsPerDay
	p.DeliveryTime = d.DeliveryTime
}
