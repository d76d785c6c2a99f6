// Package suggest ranks open tasks to answer "what should I do next".
// Scoring is a pure function of the task set, the current time, an optional
// available-minutes budget, and a set of tunable weights; it performs no I/O.
package suggest

import (
	"sort"
	"time"

	"github.com/sadopc/remindr/internal/store"
)

// Weights tune the heuristic scoring terms. Each call to Rank takes its own
// copy, so weights can vary per invocation.
type Weights struct {
	Priority              float64
	Urgency               float64
	OverdueBoost          float64
	ShortTaskBias         float64
	ShortTaskThresholdMin int
	UrgencyWindowHours    int
}

func DefaultWeights() Weights {
	return Weights{
		Priority:              1.0,
		Urgency:               1.0,
		OverdueBoost:          1.0,
		ShortTaskBias:         0.5,
		ShortTaskThresholdMin: 30,
		UrgencyWindowHours:    72,
	}
}

// Factors break a score down for explainability.
type Factors struct {
	PriorityNorm   float64
	Urgency        float64
	Overdue        bool
	ShortTaskBonus float64
	SlotPenalty    float64
}

type Scored struct {
	Task    store.Task
	Score   float64
	Factors Factors
}

// Rank scores every task and returns them ordered by descending score.
// Ties break by earliest due timestamp (tasks without one sort last), then
// by ascending task ID, so output is deterministic for identical input.
// availableMinutes <= 0 means no time-slot budget.
func Rank(tasks []store.Task, now time.Time, availableMinutes int, w Weights) []Scored {
	scored := make([]Scored, 0, len(tasks))
	for _, t := range tasks {
		scored = append(scored, score(t, now, availableMinutes, w))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ad, bd := a.Task.DueAt, b.Task.DueAt
		switch {
		case ad != nil && bd != nil && !ad.Equal(*bd):
			return ad.Before(*bd)
		case ad != nil && bd == nil:
			return true
		case ad == nil && bd != nil:
			return false
		}
		return a.Task.ID < b.Task.ID
	})
	return scored
}

// Top returns at most n of the highest-ranked entries.
func Top(scored []Scored, n int) []Scored {
	if n <= 0 || n >= len(scored) {
		return scored
	}
	return scored[:n]
}

func score(t store.Task, now time.Time, availableMinutes int, w Weights) Scored {
	pri := priorityNorm(t.Priority)
	urg, overdue := urgency(t.DueAt, now, w.UrgencyWindowHours)
	short := shortTaskBonus(t.EstimatedMinutes, w.ShortTaskThresholdMin)

	boost := 0.0
	if overdue {
		boost = 1.0
	}

	total := pri*w.Priority + urg*w.Urgency + boost*w.OverdueBoost + short*w.ShortTaskBias

	penalty := slotPenalty(t.EstimatedMinutes, availableMinutes)
	total -= penalty
	if total < 0 {
		total = 0
	}

	return Scored{
		Task:  t,
		Score: total,
		Factors: Factors{
			PriorityNorm:   pri,
			Urgency:        urg,
			Overdue:        overdue,
			ShortTaskBonus: short,
			SlotPenalty:    penalty,
		},
	}
}

// priorityNorm maps the 1..3 priority scale into [0,1]: high 1.0,
// medium 0.6, low 0.3.
func priorityNorm(p store.Priority) float64 {
	switch p {
	case store.PriorityHigh:
		return 1.0
	case store.PriorityMedium:
		return 0.6
	case store.PriorityLow:
		return 0.3
	}
	return 0.4
}

// urgency returns a score in [0,1] and whether the task is overdue. Tasks
// without a due timestamp, or due beyond the window, score 0. Inside the
// window the score rises linearly toward 1.0 at the due time; past due it
// stays at 1.0 with the overdue flag set.
func urgency(due *time.Time, now time.Time, windowHours int) (float64, bool) {
	if due == nil {
		return 0, false
	}
	if due.Before(now) {
		return 1.0, true
	}
	if windowHours < 1 {
		windowHours = 1
	}
	window := time.Duration(windowHours) * time.Hour
	remaining := due.Sub(now)
	if remaining >= window {
		return 0, false
	}
	return 1.0 - float64(remaining)/float64(window), false
}

// shortTaskBonus rewards quick wins: full bonus at or below the threshold,
// tapering linearly to zero by twice the threshold. An unknown (zero)
// estimate gets no bonus.
func shortTaskBonus(estimatedMinutes, thresholdMin int) float64 {
	if estimatedMinutes <= 0 || thresholdMin <= 0 {
		return 0
	}
	if estimatedMinutes <= thresholdMin {
		return 1.0
	}
	if estimatedMinutes >= thresholdMin*2 {
		return 0
	}
	return float64(thresholdMin*2-estimatedMinutes) / float64(thresholdMin)
}

// slotPenalty softly demotes tasks that do not fit the available time slot.
// The excess is capped at two hours and the penalty at 0.5, so oversized
// tasks are deprioritized but never filtered out.
func slotPenalty(estimatedMinutes, availableMinutes int) float64 {
	if availableMinutes <= 0 || estimatedMinutes <= 0 || estimatedMinutes <= availableMinutes {
		return 0
	}
	over := estimatedMinutes - availableMinutes
	if over > 120 {
		over = 120
	}
	penalty := float64(over) / 240.0
	if penalty > 0.5 {
		penalty = 0.5
	}
	return penalty
}
