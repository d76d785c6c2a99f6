package pomodoro

import (
	"sync"
	"sync/atomic"
	"time"
)

// Ticker drives a Timer at 1-second granularity from a guarded singleton
// goroutine, the same start-once shape as the reminder scheduler: repeated
// foreground re-initialization can call StartOnce freely without stacking
// tickers that would advance elapsed time at more than 1x.
type Ticker struct {
	timer *Timer

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

func NewTicker(t *Timer) *Ticker {
	return &Ticker{timer: t, stop: make(chan struct{})}
}

// StartOnce spawns the ticking loop on the first call and reports whether
// this call started it.
func (k *Ticker) StartOnce() bool {
	if !k.started.CompareAndSwap(false, true) {
		return false
	}
	go k.loop()
	return true
}

// Stop ends the loop cooperatively. Safe to call more than once.
func (k *Ticker) Stop() {
	k.stopOnce.Do(func() { close(k.stop) })
}

func (k *Ticker) loop() {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-k.stop:
			return
		case <-tick.C:
			k.timer.Tick()
		}
	}
}
