package duration

import (
	"math"
	"testing"
)

// ============================================================
// Parse
// ============================================================

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1h 30m", 5400},
		{"90 mins", 5400},
		{"1h30m", 5400},
		{"30m 1h", 5400},
		{"2 hours", 7200},
		{"1 hour 15 minutes 10 seconds", 4510},
		{"45s", 45},
		{"10 sec", 10},
		{"1HR 5MIN", 3900},
		{"45", 2700},
		{"  45  ", 2700},
		{"1h 30", 5400},
		{"45 30", 2700},
		{"3m 5 apples", 180},
		{"5 days", 300},
		{"", 0},
		{"abc", 0},
		{"h m s", 0},
		{"-5", 0},
		{"0m", 0},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseNeverNegative(t *testing.T) {
	for _, in := range []string{"-1h", "-30m", "--5", "-", "+", "+5"} {
		if got := Parse(in); got < 0 {
			t.Errorf("Parse(%q) = %d, want >= 0", in, got)
		}
	}
}

func TestParseOverflowClamps(t *testing.T) {
	got := Parse("99999999999999999h")
	if got != math.MaxInt64 {
		t.Fatalf("expected clamp to MaxInt64, got %d", got)
	}
	// Too many digits to fit int64 are skipped entirely.
	if got := Parse("999999999999999999999999h 5m"); got != 300 {
		t.Fatalf("expected oversized token skipped, got %d", got)
	}
}

// ============================================================
// Format
// ============================================================

func TestFormat(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0m"},
		{59, "0m"},
		{60, "1m"},
		{2700, "45m"},
		{3600, "1h 0m"},
		{3900, "1h 5m"},
		{5400, "1h 30m"},
		{7265, "2h 1m"},
		{-30, "0m"},
	}
	for _, tt := range tests {
		if got := Format(tt.secs); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatPrecise(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0s"},
		{5, "5s"},
		{125, "2m 5s"},
		{3605, "1h 0m 5s"},
		{-1, "0s"},
	}
	for _, tt := range tests {
		if got := FormatPrecise(tt.secs); got != tt.want {
			t.Errorf("FormatPrecise(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(3723); got != "01:02:03" {
		t.Fatalf("FormatClock(3723) = %q", got)
	}
	if got := FormatClock(-5); got != "00:00:00" {
		t.Fatalf("FormatClock(-5) = %q", got)
	}
}

func TestFormatParseIsLossy(t *testing.T) {
	// Seconds are dropped by the coarse format.
	if got := Parse(Format(3725)); got != 3720 {
		t.Fatalf("Parse(Format(3725)) = %d, want 3720", got)
	}
	if got := Parse(Format(5400)); got != 5400 {
		t.Fatalf("Parse(Format(5400)) = %d, want 5400", got)
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(5400); got != "1h 30m" {
		t.Fatalf("Display(5400) = %q", got)
	}
	if got := Display(90); got != "1m 30s" {
		t.Fatalf("Display(90) = %q", got)
	}
	if got := Parse(Display(90)); got != 90 {
		t.Fatalf("Display of a seconds-precise value should parse back, got %d", got)
	}
}
