// Package pomodoro implements the focus-timer state machine: a cyclic
// focus/break interval sequence advanced by a 1-second tick, with completed
// intervals of at least one whole minute persisted as history.
package pomodoro

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/remindr/internal/notify"
	"github.com/sadopc/remindr/internal/store"
)

type Mode string

const (
	ModeIdle       Mode = "idle"
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
)

// Config holds the per-session interval durations. AutoContinue keeps the
// timer running into the next interval after a completion; when false the
// timer pauses and waits for Resume.
type Config struct {
	FocusMinutes      int
	ShortBreakMinutes int
	LongBreakMinutes  int
	LongBreakInterval int
	AutoContinue      bool
}

func DefaultConfig() Config {
	return Config{
		FocusMinutes:      25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		LongBreakInterval: 4,
		AutoContinue:      true,
	}
}

func (c Config) validate() error {
	if c.FocusMinutes < 1 || c.ShortBreakMinutes < 1 || c.LongBreakMinutes < 1 {
		return errors.New("interval durations must be at least one minute")
	}
	if c.LongBreakInterval < 1 {
		return errors.New("long break interval must be at least 1")
	}
	return nil
}

// HistoryWriter persists completed intervals; satisfied by *store.Store.
type HistoryWriter interface {
	CreateFocusSession(taskID *int64, start, end time.Time, durationMinutes int, note string) (*store.FocusSession, error)
}

// State is a copy of the timer's observable state.
type State struct {
	Mode             Mode
	ElapsedSeconds   int
	RemainingSeconds int
	Running          bool
	CompletedCycles  int
	TaskID           *int64
}

// Timer is the state machine. All transitions happen under one mutex, so a
// threshold crossing and the elapsed reset are a single observable step.
type Timer struct {
	mu sync.Mutex

	cfg           Config
	history       HistoryWriter
	notifier      notify.Notifier
	log           *slog.Logger
	notifications bool

	mode          Mode
	elapsed       int // seconds in the current interval
	running       bool
	cycles        int // completed focus intervals
	taskID        *int64
	intervalStart time.Time
}

func NewTimer(cfg Config, history HistoryWriter, notifier notify.Notifier, logger *slog.Logger) *Timer {
	if cfg.validate() != nil {
		cfg = DefaultConfig()
	}
	return &Timer{
		cfg:           cfg,
		history:       history,
		notifier:      notifier,
		log:           logger,
		notifications: true,
		mode:          ModeIdle,
	}
}

// Start enters focus mode with a fresh interval, binding the given task if
// any. Valid from idle or any paused state.
func (t *Timer) Start(taskID *int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = ModeFocus
	t.elapsed = 0
	t.running = true
	t.intervalStart = time.Now()
	if taskID != nil {
		t.taskID = taskID
	}
}

// Pause stops the tick-driven progress without resetting elapsed or mode.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Resume continues the current interval where Pause left it.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == ModeIdle {
		return
	}
	t.running = true
}

// Reset returns to idle from any state. A partial interval of at least one
// whole minute is still logged to history; shorter ones are discarded.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logPartialLocked()
	t.mode = ModeIdle
	t.elapsed = 0
	t.running = false
}

// SwitchMode forces the timer into the given mode with a fresh, paused
// interval, logging any partial interval of at least one minute.
func (t *Timer) SwitchMode(mode Mode) error {
	if mode != ModeFocus && mode != ModeShortBreak && mode != ModeLongBreak {
		return fmt.Errorf("invalid mode %q", mode)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logPartialLocked()
	t.mode = mode
	t.elapsed = 0
	t.running = false
	t.intervalStart = time.Now()
	return nil
}

// SetConfig replaces the interval configuration. Invalid durations are
// rejected and the previous configuration is retained.
func (t *Timer) SetConfig(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg = cfg
	return nil
}

// SetNotifications toggles transition notices. Mode transitions and history
// writes proceed regardless.
func (t *Timer) SetNotifications(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notifications = enabled
}

// Snapshot returns a copy of the observable state.
func (t *Timer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		Mode:             t.mode,
		ElapsedSeconds:   t.elapsed,
		RemainingSeconds: t.durationSeconds(t.mode) - t.elapsed,
		Running:          t.running,
		CompletedCycles:  t.cycles,
		TaskID:           t.taskID,
	}
}

// Tick advances the timer by one second. When the current interval's budget
// is reached the completion, history write, mode advance, and elapsed reset
// happen atomically under the lock.
func (t *Timer) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.mode == ModeIdle {
		return
	}
	t.elapsed++
	if t.elapsed >= t.durationSeconds(t.mode) {
		t.completeLocked()
	}
}

func (t *Timer) durationSeconds(mode Mode) int {
	switch mode {
	case ModeFocus:
		return t.cfg.FocusMinutes * 60
	case ModeShortBreak:
		return t.cfg.ShortBreakMinutes * 60
	case ModeLongBreak:
		return t.cfg.LongBreakMinutes * 60
	}
	return 0
}

func (t *Timer) completeLocked() {
	end := time.Now()
	t.writeHistoryLocked(end)

	prev := t.mode
	if t.mode == ModeFocus {
		t.cycles++
		if t.cfg.LongBreakInterval > 0 && t.cycles%t.cfg.LongBreakInterval == 0 {
			t.mode = ModeLongBreak
		} else {
			t.mode = ModeShortBreak
		}
	} else {
		t.mode = ModeFocus
	}
	t.elapsed = 0
	t.intervalStart = end
	t.running = t.cfg.AutoContinue

	t.notifyTransitionLocked(prev)
}

// writeHistoryLocked persists the just-finished interval when it lasted at
// least one whole minute. A storage failure is logged, never fatal.
func (t *Timer) writeHistoryLocked(end time.Time) {
	minutes := t.elapsed / 60
	if minutes < 1 || t.history == nil {
		return
	}
	note := string(t.mode) + " completed"
	if _, err := t.history.CreateFocusSession(t.taskID, t.intervalStart, end, minutes, note); err != nil && t.log != nil {
		t.log.Error("log focus session", "error", err)
	}
}

func (t *Timer) logPartialLocked() {
	if t.mode == ModeIdle {
		return
	}
	t.writeHistoryLocked(time.Now())
	t.intervalStart = time.Time{}
}

func (t *Timer) notifyTransitionLocked(prev Mode) {
	if !t.notifications || t.notifier == nil {
		return
	}
	var title, body string
	switch t.mode {
	case ModeLongBreak:
		title, body = "Long break time!", "Great job. Take a longer rest."
	case ModeShortBreak:
		title, body = "Short break time!", "Breathe. Hydrate. Stretch."
	default:
		title, body = "Focus time", "Back to work."
	}
	if err := t.notifier.Notify(title, body); err != nil && t.log != nil {
		t.log.Warn("transition notification failed", "from", prev, "to", t.mode, "error", err)
	}
}

// FormatRemaining renders a second count as MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
