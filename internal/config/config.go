// Package config defines the remindr process configuration, loaded once at
// startup from an optional YAML file over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration. Runtime-mutable knobs (scheduler
// interval, notification toggle, pomodoro durations) seed the components at
// startup; later changes go through the components' own thread-safe update
// calls.
type Config struct {
	DataDir                  string           `yaml:"data_dir"`
	LogLevel                 string           `yaml:"log_level"`
	NotificationsEnabled     bool             `yaml:"notifications_enabled"`
	SchedulerIntervalSeconds int              `yaml:"scheduler_interval_seconds"`
	Suggestion               SuggestionConfig `yaml:"suggestion"`
	Pomodoro                 PomodoroConfig   `yaml:"pomodoro"`
}

// SuggestionConfig tunes the suggestion engine weights.
type SuggestionConfig struct {
	Priority                  float64 `yaml:"priority"`
	Urgency                   float64 `yaml:"urgency"`
	OverdueBoost              float64 `yaml:"overdue_boost"`
	ShortTaskBias             float64 `yaml:"short_task_bias"`
	ShortTaskThresholdMinutes int     `yaml:"short_task_threshold_minutes"`
	UrgencyWindowHours        int     `yaml:"urgency_window_hours"`
}

// PomodoroConfig sets the default focus-timer intervals.
type PomodoroConfig struct {
	FocusMinutes      int  `yaml:"focus_minutes"`
	ShortBreakMinutes int  `yaml:"short_break_minutes"`
	LongBreakMinutes  int  `yaml:"long_break_minutes"`
	LongBreakInterval int  `yaml:"long_break_interval"`
	AutoContinue      bool `yaml:"auto_continue"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		LogLevel:                 "info",
		NotificationsEnabled:     true,
		SchedulerIntervalSeconds: 60,
		Suggestion: SuggestionConfig{
			Priority:                  1.0,
			Urgency:                   1.0,
			OverdueBoost:              1.0,
			ShortTaskBias:             0.5,
			ShortTaskThresholdMinutes: 30,
			UrgencyWindowHours:        72,
		},
		Pomodoro: PomodoroConfig{
			FocusMinutes:      25,
			ShortBreakMinutes: 5,
			LongBreakMinutes:  15,
			LongBreakInterval: 4,
			AutoContinue:      true,
		},
	}
}

// Load reads a YAML config file over the defaults. Out-of-range values are
// clamped rather than rejected so a bad file never prevents startup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.SchedulerIntervalSeconds < 5 {
		c.SchedulerIntervalSeconds = 5
	}
	if c.Pomodoro.FocusMinutes < 1 {
		c.Pomodoro.FocusMinutes = 1
	}
	if c.Pomodoro.ShortBreakMinutes < 1 {
		c.Pomodoro.ShortBreakMinutes = 1
	}
	if c.Pomodoro.LongBreakMinutes < 1 {
		c.Pomodoro.LongBreakMinutes = 1
	}
	if c.Pomodoro.LongBreakInterval < 1 {
		c.Pomodoro.LongBreakInterval = 1
	}
	if c.Suggestion.ShortTaskThresholdMinutes < 1 {
		c.Suggestion.ShortTaskThresholdMinutes = 1
	}
	if c.Suggestion.UrgencyWindowHours < 1 {
		c.Suggestion.UrgencyWindowHours = 1
	}
}
