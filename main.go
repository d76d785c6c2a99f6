package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sadopc/remindr/internal/config"
	"github.com/sadopc/remindr/internal/export"
	"github.com/sadopc/remindr/internal/notify"
	"github.com/sadopc/remindr/internal/pomodoro"
	"github.com/sadopc/remindr/internal/scheduler"
	"github.com/sadopc/remindr/internal/store"
	"github.com/sadopc/remindr/internal/suggest"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	exportCSV := flag.String("export-csv", "", "export focus history to CSV and exit")
	exportJSON := flag.String("export-json", "", "export focus history to JSON and exit")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if *exportCSV != "" || *exportJSON != "" {
		if err := runExport(s, *exportCSV, *exportJSON); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	notifier := notify.New(logger)

	sched := scheduler.New(s, notifier, logger)
	sched.UpdateConfig(true,
		time.Duration(cfg.SchedulerIntervalSeconds)*time.Second,
		cfg.NotificationsEnabled)
	sched.StartOnce()

	manager := pomodoro.NewManager(s, notifier, logger)
	token, timer := manager.Create(pomodoro.Config{
		FocusMinutes:      cfg.Pomodoro.FocusMinutes,
		ShortBreakMinutes: cfg.Pomodoro.ShortBreakMinutes,
		LongBreakMinutes:  cfg.Pomodoro.LongBreakMinutes,
		LongBreakInterval: cfg.Pomodoro.LongBreakInterval,
		AutoContinue:      cfg.Pomodoro.AutoContinue,
	})
	timer.SetNotifications(cfg.NotificationsEnabled)
	ticker := pomodoro.NewTicker(timer)
	ticker.StartOnce()
	logger.Info("pomodoro session ready", "token", token)

	printSuggestions(s, cfg, logger)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ticker.Stop()
	sched.Stop()
	logger.Info("shutting down")
}

func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DataDir != "" {
		return filepath.Join(cfg.DataDir, "remindr.db"), nil
	}
	return store.DefaultDBPath()
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func runExport(s *store.Store, csvPath, jsonPath string) error {
	sessions, err := s.ListRecentFocusSessions(0)
	if err != nil {
		return err
	}
	if csvPath != "" {
		if err := export.ToCSV(sessions, csvPath); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		if err := export.ToJSON(sessions, jsonPath); err != nil {
			return err
		}
	}
	return nil
}

func printSuggestions(s *store.Store, cfg *config.Config, logger *slog.Logger) {
	tasks, err := s.ListOpenTasks()
	if err != nil {
		logger.Error("list open tasks", "error", err)
		return
	}
	w := suggest.Weights{
		Priority:              cfg.Suggestion.Priority,
		Urgency:               cfg.Suggestion.Urgency,
		OverdueBoost:          cfg.Suggestion.OverdueBoost,
		ShortTaskBias:         cfg.Suggestion.ShortTaskBias,
		ShortTaskThresholdMin: cfg.Suggestion.ShortTaskThresholdMinutes,
		UrgencyWindowHours:    cfg.Suggestion.UrgencyWindowHours,
	}
	for _, sc := range suggest.Top(suggest.Rank(tasks, time.Now(), 0, w), 3) {
		logger.Info("suggested next task",
			"id", sc.Task.ID, "title", sc.Task.Title,
			"priority", sc.Task.Priority.String(), "score", sc.Score)
	}
}
