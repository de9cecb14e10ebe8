package routine

import (
	"strings"

	"github.com/sadopc/routinr/internal/duration"
)

// MaxSeconds caps a routine's duration at one week.
const MaxSeconds int64 = 7 * 24 * 3600

// CanEdit reports whether name and duration may still change. Any elapsed
// time locks the routine for good, even once stopped.
func CanEdit(t Timer) bool {
	return !t.IsRunning && t.RemainingSeconds == t.OriginalSeconds
}

// CanDelete reports whether the routine may be removed. Only a running
// countdown blocks deletion; elapsed routines have to stay deletable so they
// can be recreated.
func CanDelete(t Timer) bool {
	return !t.IsRunning
}

// ValidateName trims name and rejects empty labels.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "name is required")
	}
	return name, nil
}

// SecondsFromHoursMinutes combines separately entered hours and minutes.
// The result must be strictly positive.
func SecondsFromHoursMinutes(hours, minutes int) (int64, error) {
	if hours < 0 {
		return 0, invalid("hours", "hours cannot be negative")
	}
	if minutes < 0 {
		return 0, invalid("minutes", "minutes cannot be negative")
	}
	if int64(hours) > MaxSeconds/3600 || int64(minutes) > MaxSeconds/60 {
		return 0, tooLong()
	}
	secs := int64(hours)*3600 + int64(minutes)*60
	if secs <= 0 {
		return 0, invalid("duration", "duration must be greater than zero")
	}
	if secs > MaxSeconds {
		return 0, tooLong()
	}
	return secs, nil
}

// ParseDurationText parses a free-text duration and rejects zero.
func ParseDurationText(text string) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, invalid("duration", "duration is required")
	}
	secs := duration.Parse(text)
	if secs <= 0 {
		return 0, invalid("duration", "could not read a positive duration from "+`"`+text+`"`)
	}
	if secs > MaxSeconds {
		return 0, tooLong()
	}
	return secs, nil
}

// ValidateSeconds checks an explicit whole-second duration.
func ValidateSeconds(secs int64) error {
	if secs <= 0 {
		return invalid("duration", "duration must be greater than zero")
	}
	if secs > MaxSeconds {
		return tooLong()
	}
	return nil
}

func tooLong() error {
	return invalid("duration", "duration cannot be longer than a week")
}

// ValidatePasswords checks the sign-up confirmation field.
func ValidatePasswords(password, confirm string) error {
	if password == "" {
		return invalid("password", "password is required")
	}
	if password != confirm {
		return invalid("confirm", "passwords do not match")
	}
	return nil
}
