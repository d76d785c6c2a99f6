package pomodoro

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/remindr/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Test doubles ---

type fakeHistory struct {
	mu       sync.Mutex
	sessions []store.FocusSession
	err      error
}

func (f *fakeHistory) CreateFocusSession(taskID *int64, start, end time.Time, minutes int, note string) (*store.FocusSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	fs := store.FocusSession{
		ID:              int64(len(f.sessions) + 1),
		TaskID:          taskID,
		StartedAt:       start,
		EndedAt:         end,
		DurationMinutes: minutes,
		Note:            note,
	}
	f.sessions = append(f.sessions, fs)
	return &fs, nil
}

func (f *fakeHistory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeHistory) last() store.FocusSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[len(f.sessions)-1]
}

type countingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *countingNotifier) Notify(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	return nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.titles)
}

func shortConfig() Config {
	return Config{
		FocusMinutes:      1,
		ShortBreakMinutes: 1,
		LongBreakMinutes:  1,
		LongBreakInterval: 2,
		AutoContinue:      true,
	}
}

func tickN(t *Timer, n int) {
	for i := 0; i < n; i++ {
		t.Tick()
	}
}

// ============================================================
// State machine
// ============================================================

func TestInitialStateIdle(t *testing.T) {
	tm := NewTimer(DefaultConfig(), nil, nil, testLogger())
	st := tm.Snapshot()
	if st.Mode != ModeIdle || st.Running || st.ElapsedSeconds != 0 {
		t.Fatalf("unexpected initial state: %+v", st)
	}
}

func TestStartEntersFocus(t *testing.T) {
	tm := NewTimer(shortConfig(), nil, nil, testLogger())
	taskID := int64(7)
	tm.Start(&taskID)

	st := tm.Snapshot()
	if st.Mode != ModeFocus || !st.Running || st.ElapsedSeconds != 0 {
		t.Fatalf("unexpected state after start: %+v", st)
	}
	if st.TaskID == nil || *st.TaskID != 7 {
		t.Fatalf("expected bound task 7, got %v", st.TaskID)
	}
}

func TestTickIgnoredWhenIdleOrPaused(t *testing.T) {
	tm := NewTimer(shortConfig(), nil, nil, testLogger())
	tm.Tick()
	if st := tm.Snapshot(); st.ElapsedSeconds != 0 {
		t.Fatal("idle timer must not accumulate time")
	}

	tm.Start(nil)
	tickN(tm, 10)
	tm.Pause()
	tickN(tm, 10)
	if st := tm.Snapshot(); st.ElapsedSeconds != 10 {
		t.Fatalf("paused timer must not accumulate, elapsed=%d", st.ElapsedSeconds)
	}

	tm.Resume()
	tm.Tick()
	if st := tm.Snapshot(); st.ElapsedSeconds != 11 {
		t.Fatalf("expected resume to continue at 11, got %d", st.ElapsedSeconds)
	}
}

// The canonical scenario: focus=1m, short=1m, long-break interval 2.
// 60 ticks complete the focus interval, log a 1-minute session, and move to
// short_break; 60 more return to focus; the second focus completion lands
// in long_break.
func TestFullCycleWithLongBreak(t *testing.T) {
	h := &fakeHistory{}
	n := &countingNotifier{}
	tm := NewTimer(shortConfig(), h, n, testLogger())
	tm.Start(nil)

	tickN(tm, 60)
	st := tm.Snapshot()
	if st.Mode != ModeShortBreak {
		t.Fatalf("expected short_break after first focus, got %v", st.Mode)
	}
	if st.ElapsedSeconds != 0 {
		t.Fatalf("elapsed must reset on transition, got %d", st.ElapsedSeconds)
	}
	if !st.Running {
		t.Fatal("auto-continue should keep the timer running")
	}
	if st.CompletedCycles != 1 {
		t.Fatalf("expected 1 completed cycle, got %d", st.CompletedCycles)
	}
	if h.count() != 1 {
		t.Fatalf("expected 1 history record, got %d", h.count())
	}
	if fs := h.last(); fs.DurationMinutes != 1 || fs.Note != "focus completed" {
		t.Fatalf("unexpected session: %+v", fs)
	}

	tickN(tm, 60)
	if st := tm.Snapshot(); st.Mode != ModeFocus {
		t.Fatalf("expected focus after break, got %v", st.Mode)
	}

	// Second focus completion hits the long-break interval.
	tickN(tm, 60)
	st = tm.Snapshot()
	if st.Mode != ModeLongBreak {
		t.Fatalf("expected long_break after second cycle, got %v", st.Mode)
	}
	if st.CompletedCycles != 2 {
		t.Fatalf("expected 2 completed cycles, got %d", st.CompletedCycles)
	}
	if n.count() != 3 {
		t.Fatalf("expected 3 transition notifications, got %d", n.count())
	}
}

func TestCycleCounterOnlyIncrementsLeavingFocus(t *testing.T) {
	tm := NewTimer(shortConfig(), nil, nil, testLogger())
	tm.Start(nil)

	tickN(tm, 60) // focus -> short_break
	tickN(tm, 60) // short_break -> focus
	if st := tm.Snapshot(); st.CompletedCycles != 1 {
		t.Fatalf("break completion must not bump the counter, got %d", st.CompletedCycles)
	}
}

func TestManualConfirmationPausesAfterCompletion(t *testing.T) {
	cfg := shortConfig()
	cfg.AutoContinue = false
	tm := NewTimer(cfg, nil, nil, testLogger())
	tm.Start(nil)

	tickN(tm, 60)
	st := tm.Snapshot()
	if st.Mode != ModeShortBreak || st.Running {
		t.Fatalf("expected paused short_break, got %+v", st)
	}

	// Further ticks do nothing until the user resumes.
	tickN(tm, 30)
	if st := tm.Snapshot(); st.ElapsedSeconds != 0 {
		t.Fatalf("expected no progress while awaiting confirmation, got %d", st.ElapsedSeconds)
	}
	tm.Resume()
	tickN(tm, 60)
	if st := tm.Snapshot(); st.Mode != ModeFocus {
		t.Fatalf("expected focus after confirmed break, got %v", st.Mode)
	}
}

func TestSubMinuteIntervalNotPersisted(t *testing.T) {
	h := &fakeHistory{}
	cfg := shortConfig()
	tm := NewTimer(cfg, h, nil, testLogger())
	tm.Start(nil)

	tickN(tm, 30)
	tm.Reset()
	if h.count() != 0 {
		t.Fatalf("expected sub-minute interval discarded, got %d records", h.count())
	}
	if st := tm.Snapshot(); st.Mode != ModeIdle || st.Running {
		t.Fatalf("expected idle after reset, got %+v", st)
	}
}

func TestResetLogsPartialMinute(t *testing.T) {
	h := &fakeHistory{}
	tm := NewTimer(Config{
		FocusMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15,
		LongBreakInterval: 4, AutoContinue: true,
	}, h, nil, testLogger())
	tm.Start(nil)

	tickN(tm, 90) // a minute and a half into a 25-minute focus
	tm.Reset()
	if h.count() != 1 {
		t.Fatalf("expected partial interval logged, got %d", h.count())
	}
	if fs := h.last(); fs.DurationMinutes != 1 {
		t.Fatalf("expected floor to 1 minute, got %d", fs.DurationMinutes)
	}
}

func TestSwitchMode(t *testing.T) {
	tm := NewTimer(shortConfig(), nil, nil, testLogger())
	tm.Start(nil)

	if err := tm.SwitchMode(ModeLongBreak); err != nil {
		t.Fatal(err)
	}
	st := tm.Snapshot()
	if st.Mode != ModeLongBreak || st.Running || st.ElapsedSeconds != 0 {
		t.Fatalf("unexpected state after switch: %+v", st)
	}

	if err := tm.SwitchMode(Mode("nap")); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestSetConfigRejectsInvalidDurations(t *testing.T) {
	tm := NewTimer(shortConfig(), nil, nil, testLogger())

	if err := tm.SetConfig(Config{FocusMinutes: 0, ShortBreakMinutes: 5, LongBreakMinutes: 15, LongBreakInterval: 4}); err == nil {
		t.Fatal("expected error for zero focus duration")
	}
	// Previous config retained: a 1-minute focus still completes at 60 ticks.
	tm.Start(nil)
	tickN(tm, 60)
	if st := tm.Snapshot(); st.Mode != ModeShortBreak {
		t.Fatalf("expected old config retained, got %v", st.Mode)
	}
}

func TestHistoryFailureDoesNotStopTransitions(t *testing.T) {
	h := &fakeHistory{err: errors.New("disk full")}
	tm := NewTimer(shortConfig(), h, nil, testLogger())
	tm.Start(nil)

	tickN(tm, 60)
	if st := tm.Snapshot(); st.Mode != ModeShortBreak {
		t.Fatalf("history failure must not block the transition, got %v", st.Mode)
	}
}

func TestNotificationsDisabledStillTransitions(t *testing.T) {
	n := &countingNotifier{}
	tm := NewTimer(shortConfig(), nil, n, testLogger())
	tm.SetNotifications(false)
	tm.Start(nil)

	tickN(tm, 60)
	if n.count() != 0 {
		t.Fatalf("expected no notifications, got %d", n.count())
	}
	if st := tm.Snapshot(); st.Mode != ModeShortBreak {
		t.Fatalf("transition must proceed, got %v", st.Mode)
	}
}

// ============================================================
// Ticker guard
// ============================================================

func TestTickerStartOnce(t *testing.T) {
	tm := NewTimer(shortConfig(), nil, nil, testLogger())
	k := NewTicker(tm)
	defer k.Stop()

	if !k.StartOnce() {
		t.Fatal("first StartOnce should start the ticker")
	}
	if k.StartOnce() {
		t.Fatal("second StartOnce must be a no-op")
	}
}

func TestTickerStartOnceConcurrent(t *testing.T) {
	tm := NewTimer(shortConfig(), nil, nil, testLogger())
	k := NewTicker(tm)
	defer k.Stop()

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if k.StartOnce() {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if started != 1 {
		t.Fatalf("expected exactly one ticker, got %d", started)
	}
}

func TestTickerStopTwice(t *testing.T) {
	k := NewTicker(NewTimer(shortConfig(), nil, nil, testLogger()))
	k.StartOnce()
	k.Stop()
	k.Stop()
}

// ============================================================
// Session manager
// ============================================================

func TestManagerSessions(t *testing.T) {
	m := NewManager(nil, nil, testLogger())

	token, timer := m.Create(shortConfig())
	if token == "" || timer == nil {
		t.Fatal("expected token and timer")
	}

	got, ok := m.Get(token)
	if !ok || got != timer {
		t.Fatal("expected lookup to return the same timer")
	}
	if _, ok := m.Get("missing"); ok {
		t.Fatal("expected miss for unknown token")
	}

	token2, _ := m.Create(shortConfig())
	if token2 == token {
		t.Fatal("expected unique tokens")
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", m.Len())
	}

	m.Remove(token)
	if _, ok := m.Get(token); ok {
		t.Fatal("expected session removed")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatRemaining(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		59:   "00:59",
		60:   "01:00",
		1500: "25:00",
		-5:   "00:00",
	}
	for in, want := range cases {
		if got := FormatRemaining(in); got != want {
			t.Fatalf("FormatRemaining(%d) = %q, want %q", in, got, want)
		}
	}
}
