package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/routinr/internal/routine"
)

func sampleData() []routine.Timer {
	return []routine.Timer{
		{
			ID:               "a",
			RemoteID:         "r1",
			Name:             "Reading",
			Duration:         "1h 0m",
			OriginalSeconds:  3600,
			RemainingSeconds: 3600,
		},
		{
			ID:               "b",
			Name:             "Workout",
			Duration:         "30m",
			OriginalSeconds:  1800,
			RemainingSeconds: 600,
			IsRunning:        true,
		},
		{
			ID:               "c",
			RemoteID:         "r3",
			Name:             "Stretch",
			Duration:         "10m",
			OriginalSeconds:  600,
			RemainingSeconds: 0,
			IsFinished:       true,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sampleData(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	// header + 3 routines + totals
	if len(records) != 5 {
		t.Fatalf("records = %d, want 5", len(records))
	}
	if records[0][0] != "Name" || records[0][6] != "Status" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	if records[1][0] != "Reading" || records[1][2] != "3600" || records[1][6] != "idle" {
		t.Fatalf("row 1 = %v", records[1])
	}
	if records[2][4] != "1200" || records[2][5] != "00:10:00" || records[2][6] != "running" {
		t.Fatalf("row 2 = %v", records[2])
	}
	if records[3][3] != "0" || records[3][6] != "finished" {
		t.Fatalf("row 3 = %v", records[3])
	}
}

func TestToCSVTotals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "totals.csv")
	if err := ToCSV(sampleData(), path); err != nil {
		t.Fatal(err)
	}

	total := readCSV(t, path)[4]
	if total[0] != "Total" {
		t.Fatalf("last row should be totals, got %v", total)
	}
	if total[2] != "6000" || total[3] != "4200" || total[4] != "1800" {
		t.Fatalf("totals = %v, want 6000/4200/1800", total)
	}
	if total[6] != "30%" {
		t.Fatalf("percent = %q, want 30%%", total[6])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("records = %d, want header and totals", len(records))
	}
	if records[1][2] != "0" || records[1][6] != "0%" {
		t.Fatalf("empty totals = %v", records[1])
	}
}

func TestToCSVPausedStatus(t *testing.T) {
	timers := []routine.Timer{{Name: "Walk", OriginalSeconds: 600, RemainingSeconds: 300}}
	path := filepath.Join(t.TempDir(), "paused.csv")
	if err := ToCSV(timers, path); err != nil {
		t.Fatal(err)
	}
	if got := readCSV(t, path)[1][6]; got != "paused" {
		t.Fatalf("status = %q, want paused", got)
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	timers := []routine.Timer{{
		Name:             `Read "Dune", slowly`,
		Duration:         "5m",
		OriginalSeconds:  300,
		RemainingSeconds: 300,
	}}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(timers, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][0] != `Read "Dune", slowly` {
		t.Fatalf("name mangled: %q", records[1][0])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Routines) != 3 {
		t.Fatalf("count = %d, routines = %d, want 3", result.Count, len(result.Routines))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	r := result.Routines[0]
	if r.ID != "r1" || r.Name != "Reading" || r.Remaining != "1h 0m 0s" {
		t.Fatalf("routine 0 = %+v", r)
	}
	if result.Routines[1].ID != "" {
		t.Fatal("local-only routine should export without id")
	}
	if result.Routines[2].Status != "finished" {
		t.Fatalf("status = %q, want finished", result.Routines[2].Status)
	}

	s := result.Summary
	if s.TotalSec != 6000 || s.RemainingSec != 4200 || s.DoneSec != 1800 || s.Finished != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Percent != 30 {
		t.Fatalf("percent = %v, want 30", s.Percent)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if routines, ok := raw["routines"].([]any); !ok || len(routines) != 0 {
		t.Fatalf("routines should be an empty array, got %v", raw["routines"])
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}
