// Package duration converts between human-entered duration text and whole
// seconds.
package duration

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var unitSeconds = map[string]int64{
	"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
	"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
	"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
}

// Parse converts free text such as "1h 30m" or "90 mins" into whole seconds.
// Numbers without a unit count as minutes. When no unit appears anywhere the
// leading integer of the string is read as minutes. Anything unparseable
// yields 0, which callers must reject.
func Parse(s string) int64 {
	var total, bare int64
	tagged := false

	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		n, err := strconv.ParseInt(s[i:j], 10, 64)

		k := j
		for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
			k++
		}
		w := k
		for w < len(s) && isLetter(s[w]) {
			w++
		}
		word := strings.ToLower(s[k:w])
		if word == "" {
			i = j
		} else {
			i = w
		}
		if err != nil {
			continue
		}

		if word == "" {
			bare = addClamped(bare, n)
			continue
		}
		mult, ok := unitSeconds[word]
		if !ok {
			continue
		}
		tagged = true
		total = addClamped(total, mulClamped(n, mult))
	}

	if !tagged {
		return leadingMinutes(s)
	}
	return addClamped(total, mulClamped(bare, 60))
}

// leadingMinutes reads the integer at the start of s (after whitespace) as
// minutes. Negative or missing numbers give 0.
func leadingMinutes(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '-' {
		return 0
	}
	s = strings.TrimPrefix(s, "+")
	j := 0
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:j], 10, 64)
	if err != nil {
		return 0
	}
	return mulClamped(n, 60)
}

// Format renders seconds as hours and minutes: "1h 5m", "2h 0m", "45m", "0m".
// Seconds are dropped.
func Format(secs int64) string {
	h, m, _ := split(secs)
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatPrecise is Format with seconds, used for live countdowns.
func FormatPrecise(secs int64) string {
	h, m, s := split(secs)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Display picks the label stored with a routine: the coarse form for
// whole minutes, the precise form otherwise.
func Display(secs int64) string {
	if secs%60 == 0 {
		return Format(secs)
	}
	return FormatPrecise(secs)
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(secs int64) string {
	h, m, s := split(secs)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func split(secs int64) (h, m, s int64) {
	if secs < 0 {
		secs = 0
	}
	return secs / 3600, (secs % 3600) / 60, secs % 60
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func addClamped(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func mulClamped(a, b int64) int64 {
	if b != 0 && a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}
