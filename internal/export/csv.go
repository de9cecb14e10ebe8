package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/routinr/internal/duration"
	"github.com/sadopc/routinr/internal/routine"
)

var csvHeader = []string{"Name", "Duration", "Original (s)", "Remaining (s)", "Done (s)", "Remaining", "Status"}

// ToCSV writes one row per routine followed by a totals row.
func ToCSV(timers []routine.Timer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range timers {
		row := []string{
			t.Name,
			t.Duration,
			strconv.FormatInt(t.OriginalSeconds, 10),
			strconv.FormatInt(t.RemainingSeconds, 10),
			strconv.FormatInt(t.DoneSeconds(), 10),
			duration.FormatClock(t.RemainingSeconds),
			status(t),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	sum := routine.Summarize(timers)
	total := []string{
		"Total",
		duration.Format(sum.TotalSeconds),
		strconv.FormatInt(sum.TotalSeconds, 10),
		strconv.FormatInt(sum.RemainingSeconds, 10),
		strconv.FormatInt(sum.DoneSeconds, 10),
		duration.FormatClock(sum.RemainingSeconds),
		fmt.Sprintf("%.0f%%", sum.Percent()),
	}
	if err := w.Write(total); err != nil {
		return err
	}

	return w.Error()
}

func status(t routine.Timer) string {
	switch {
	case t.IsFinished:
		return "finished"
	case t.IsRunning:
		return "running"
	case t.Elapsed():
		return "paused"
	}
	return "idle"
}
