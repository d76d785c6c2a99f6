// Package notify delivers best-effort user notifications. Dispatch is
// two-tier: an OS-level channel is tried first and a visible log line is the
// fallback, so an absent native channel is never an error for the caller.
package notify

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Notifier is the capability consumed by the scheduler and the pomodoro
// timer.
type Notifier interface {
	Notify(title, body string) error
}

// New composes the OS-level notifier with the log fallback.
func New(logger *slog.Logger) Notifier {
	return WithFallback(&CommandNotifier{}, &LogNotifier{Logger: logger})
}

// CommandNotifier shells out to the platform notification command
// (notify-send on Linux, osascript on macOS). It reports an error when the
// command is missing or fails; callers are expected to fall back.
type CommandNotifier struct{}

func (c *CommandNotifier) Notify(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return runCommand("notify-send", title, body)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		return runCommand("osascript", "-e", script)
	}
	return fmt.Errorf("no notification channel on %s", runtime.GOOS)
}

func runCommand(name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", name, err)
	}
	if err := exec.Command(path, args...).Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// LogNotifier emits the notice as a log line. It never fails.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l *LogNotifier) Notify(title, body string) error {
	l.Logger.Info("notification", "title", title, "body", body)
	return nil
}

type fallbackNotifier struct {
	primary  Notifier
	fallback Notifier
}

// WithFallback tries primary and, on failure, delivers through fallback.
// The combined notifier only fails when both tiers fail.
func WithFallback(primary, fallback Notifier) Notifier {
	return &fallbackNotifier{primary: primary, fallback: fallback}
}

func (f *fallbackNotifier) Notify(title, body string) error {
	if err := f.primary.Notify(title, body); err != nil {
		return f.fallback.Notify(title, body)
	}
	return nil
}
