package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DeliveryTime is a wall-clock time of day, minute precision, no date.
type DeliveryTime struct {
	Hour   int
	Minute int
}

// DefaultDeliveryTime is 09:00.
var DefaultDeliveryTime = DeliveryTime{Hour: 9, Minute: 0}

// ParseDeliveryTime parses "HH:MM". The hour may be one or two digits,
// the minute is always two.
func ParseDeliveryTime(s string) (DeliveryTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !isDigits(hh) || !isDigits(mm) {
		return DeliveryTime{}, NewValidationError("time", "expected HH:MM")
	}

	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h > 23 || m > 59 {
		return DeliveryTime{}, NewValidationError("time", "hour must be 0-23 and minute 0-59")
	}

	return DeliveryTime{Hour: h, Minute: m}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (t DeliveryTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Matches reports whether now falls inside the minute named by t.
func (t DeliveryTime) Matches(now time.Time) bool {
	return now.Hour() == t.Hour && now.Minute() == t.Minute
}

func (t DeliveryTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts "HH:MM". An empty value decodes to DefaultDeliveryTime
// so that records written without a time stay loadable.
func (t *DeliveryTime) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = DefaultDeliveryTime
		return nil
	}
	parsed, err := ParseDeliveryTime(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SlotKey identifies the delivery minute that contains now.
func SlotKey(now time.Time) string {
	return now.Format("2006-01-02 15:04")
}
