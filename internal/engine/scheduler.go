package engine

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned Ticket is cancelled.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Ticket
}

// Ticket cancels a recurring callback. Cancel must be idempotent and must
// not block, because the engine may cancel from inside the callback.
type Ticket interface {
	Cancel()
}

// TickerScheduler backs each registration with its own time.Ticker and
// goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) Ticket {
	t := &tickerTicket{done: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return t
}

type tickerTicket struct {
	once sync.Once
	done chan struct{}
}

func (t *tickerTicket) Cancel() {
	t.once.Do(func() { close(t.done) })
}
