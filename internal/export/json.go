package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/routinr/internal/duration"
	"github.com/sadopc/routinr/internal/routine"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Summary    jsonSummary   `json:"summary"`
	Routines   []jsonRoutine `json:"routines"`
}

type jsonSummary struct {
	TotalSec     int64   `json:"total_seconds"`
	RemainingSec int64   `json:"remaining_seconds"`
	DoneSec      int64   `json:"done_seconds"`
	Percent      float64 `json:"percent"`
	Finished     int     `json:"finished"`
}

type jsonRoutine struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Duration     string `json:"duration"`
	OriginalSec  int64  `json:"original_seconds"`
	RemainingSec int64  `json:"remaining_seconds"`
	Remaining    string `json:"remaining"`
	Status       string `json:"status"`
}

// ToJSON writes the routine snapshot and its summary as indented JSON.
// Routines keep their remote id when they have one.
func ToJSON(timers []routine.Timer, path string) error {
	sum := routine.Summarize(timers)
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(timers),
		Summary: jsonSummary{
			TotalSec:     sum.TotalSeconds,
			RemainingSec: sum.RemainingSeconds,
			DoneSec:      sum.DoneSeconds,
			Percent:      sum.Percent(),
			Finished:     sum.Finished,
		},
		Routines: make([]jsonRoutine, 0, len(timers)),
	}

	for _, t := range timers {
		export.Routines = append(export.Routines, jsonRoutine{
			ID:           t.RemoteID,
			Name:         t.Name,
			Duration:     t.Duration,
			OriginalSec:  t.OriginalSeconds,
			RemainingSec: t.RemainingSeconds,
			Remaining:    duration.FormatPrecise(t.RemainingSeconds),
			Status:       status(t),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
