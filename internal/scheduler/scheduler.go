// Package scheduler runs the background reminder loop: a guarded singleton
// goroutine that periodically scans storage for due, unsent reminders and
// dispatches notifications for each exactly once.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sadopc/remindr/internal/notify"
	"github.com/sadopc/remindr/internal/store"
)

// MinInterval is the floor for the poll interval.
const MinInterval = 5 * time.Second

// ReminderStore is the slice of the storage collaborator the scheduler
// consumes.
type ReminderStore interface {
	GetDueUnsentReminders(now time.Time) ([]store.Reminder, error)
	MarkReminderSent(id int64) error
}

// Config is the scheduler's runtime-mutable configuration. Reads happen on
// the loop goroutine and writes from foreground callers, so access goes
// through the scheduler's mutex.
type Config struct {
	Enabled       bool
	Interval      time.Duration
	Notifications bool
}

type Scheduler struct {
	store    ReminderStore
	notifier notify.Notifier
	log      *slog.Logger

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	cfg Config
}

func New(st ReminderStore, notifier notify.Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:    st,
		notifier: notifier,
		log:      logger,
		stop:     make(chan struct{}),
		cfg: Config{
			Enabled:       true,
			Interval:      60 * time.Second,
			Notifications: true,
		},
	}
}

// StartOnce spawns the polling loop on the first call and reports whether
// this call started it. Subsequent or concurrent calls are no-ops: the
// atomic swap guarantees a single loop per process no matter how often the
// hosting shell re-runs its init path.
func (s *Scheduler) StartOnce() bool {
	if !s.started.CompareAndSwap(false, true) {
		return false
	}
	go s.loop()
	return true
}

// UpdateConfig replaces the runtime configuration. The interval is clamped
// to MinInterval and takes effect on the next sleep cycle.
func (s *Scheduler) UpdateConfig(enabled bool, interval time.Duration, notifications bool) {
	if interval < MinInterval {
		interval = MinInterval
	}
	s.mu.Lock()
	s.cfg = Config{Enabled: enabled, Interval: interval, Notifications: notifications}
	s.mu.Unlock()
	s.log.Info("scheduler config updated",
		"enabled", enabled, "interval", interval, "notifications", notifications)
}

// Config returns a snapshot of the current configuration.
func (s *Scheduler) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Stop signals the loop to exit after its current cycle. Safe to call more
// than once and before StartOnce.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Scheduler) loop() {
	s.log.Info("reminder scheduler started")
	for {
		cfg := s.Config()
		if cfg.Enabled {
			s.runCycle(time.Now(), cfg)
		}
		select {
		case <-s.stop:
			s.log.Info("reminder scheduler stopped")
			return
		case <-time.After(s.Config().Interval):
		}
	}
}

// runCycle processes every due, unsent reminder. A storage failure on one
// reminder is logged and skipped; the reminder stays unsent and is retried
// on the next cycle. Suppressed notifications never suppress the sent-state
// advance.
func (s *Scheduler) runCycle(now time.Time, cfg Config) {
	due, err := s.store.GetDueUnsentReminders(now)
	if err != nil {
		s.log.Error("scan due reminders", "error", err)
		return
	}
	if len(due) > 0 {
		s.log.Info("due reminders found", "count", len(due))
	}

	for _, r := range due {
		if cfg.Notifications {
			title := r.TaskTitle
			if title == "" {
				title = "Untitled"
			}
			body := fmt.Sprintf("Task: %s at %s", title, r.RemindAt.Local().Format("2006-01-02 15:04"))
			if err := s.notifier.Notify("Reminder due", body); err != nil {
				s.log.Warn("notification dispatch failed", "reminder", r.ID, "error", err)
			}
		}
		if err := s.store.MarkReminderSent(r.ID); err != nil {
			s.log.Error("mark reminder sent", "reminder", r.ID, "error", err)
			continue
		}
	}
}
