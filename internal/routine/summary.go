package routine

// Summary aggregates a set of routines. It is derived on every read and
// never stored.
type Summary struct {
	TotalSeconds     int64
	RemainingSeconds int64
	DoneSeconds      int64
	Count            int
	Running          int
	Finished         int
}

func Summarize(timers []Timer) Summary {
	var s Summary
	for _, t := range timers {
		s.TotalSeconds += t.OriginalSeconds
		s.RemainingSeconds += t.RemainingSeconds
		s.Count++
		if t.IsRunning {
			s.Running++
		}
		if t.IsFinished {
			s.Finished++
		}
	}
	s.DoneSeconds = s.TotalSeconds - s.RemainingSeconds
	return s
}

// Percent is the share of total time already done, 0 when empty.
func (s Summary) Percent() float64 {
	if s.TotalSeconds == 0 {
		return 0
	}
	return float64(s.DoneSeconds) / float64(s.TotalSeconds) * 100
}
