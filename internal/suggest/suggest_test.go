package suggest

import (
	"testing"
	"time"

	"github.com/sadopc/remindr/internal/store"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func due(offset time.Duration) *time.Time {
	t := testNow.Add(offset)
	return &t
}

func task(id int64, p store.Priority, dueAt *time.Time, estMinutes int) store.Task {
	return store.Task{
		ID:               id,
		Title:            "task",
		Priority:         p,
		DueAt:            dueAt,
		EstimatedMinutes: estMinutes,
		Status:           store.StatusOpen,
	}
}

func TestRankIsPermutation(t *testing.T) {
	tasks := []store.Task{
		task(1, store.PriorityLow, nil, 0),
		task(2, store.PriorityHigh, due(time.Hour), 20),
		task(3, store.PriorityMedium, due(-time.Hour), 60),
	}

	ranked := Rank(tasks, testNow, 0, DefaultWeights())
	if len(ranked) != len(tasks) {
		t.Fatalf("expected %d results, got %d", len(tasks), len(ranked))
	}
	seen := map[int64]bool{}
	for _, r := range ranked {
		seen[r.Task.ID] = true
	}
	for _, in := range tasks {
		if !seen[in.ID] {
			t.Fatalf("task %d missing from output", in.ID)
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	tasks := []store.Task{
		task(1, store.PriorityMedium, due(2*time.Hour), 10),
		task(2, store.PriorityMedium, due(2*time.Hour), 10),
		task(3, store.PriorityHigh, nil, 0),
	}
	a := Rank(tasks, testNow, 30, DefaultWeights())
	b := Rank(tasks, testNow, 30, DefaultWeights())
	for i := range a {
		if a[i].Task.ID != b[i].Task.ID || a[i].Score != b[i].Score {
			t.Fatalf("non-deterministic output at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPriorityPrecedence(t *testing.T) {
	d := due(5 * time.Hour)
	tasks := []store.Task{
		task(1, store.PriorityLow, d, 20),
		task(2, store.PriorityHigh, d, 20),
		task(3, store.PriorityMedium, d, 20),
	}
	ranked := Rank(tasks, testNow, 0, DefaultWeights())
	if ranked[0].Task.ID != 2 || ranked[1].Task.ID != 3 || ranked[2].Task.ID != 1 {
		t.Fatalf("expected high > medium > low, got %v %v %v",
			ranked[0].Task.ID, ranked[1].Task.ID, ranked[2].Task.ID)
	}
	if !(ranked[0].Score > ranked[1].Score && ranked[1].Score > ranked[2].Score) {
		t.Fatalf("expected strictly decreasing scores, got %v %v %v",
			ranked[0].Score, ranked[1].Score, ranked[2].Score)
	}
}

func TestOverdueOutranksNonOverdue(t *testing.T) {
	tasks := []store.Task{
		task(1, store.PriorityHigh, due(time.Hour), 20),  // due in 1h
		task(2, store.PriorityHigh, due(-time.Hour), 20), // 1h overdue
	}
	ranked := Rank(tasks, testNow, 0, DefaultWeights())
	if ranked[0].Task.ID != 2 {
		t.Fatalf("expected overdue task first, got %d", ranked[0].Task.ID)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Fatal("expected strictly higher score for overdue task")
	}
	if !ranked[0].Factors.Overdue || ranked[1].Factors.Overdue {
		t.Fatalf("unexpected overdue factors: %+v %+v", ranked[0].Factors, ranked[1].Factors)
	}
}

// Scenario from the design: A (high, due 1h, 20min) beats B (low, due 71h,
// 20min) inside a 72h window; C (high, 1h overdue, 20min) beats A.
func TestScenarioRanking(t *testing.T) {
	a := task(1, store.PriorityHigh, due(time.Hour), 20)
	b := task(2, store.PriorityLow, due(71*time.Hour), 20)
	c := task(3, store.PriorityHigh, due(-time.Hour), 20)

	ranked := Rank([]store.Task{a, b, c}, testNow, 0, DefaultWeights())
	if ranked[0].Task.ID != 3 || ranked[1].Task.ID != 1 || ranked[2].Task.ID != 2 {
		t.Fatalf("expected C, A, B; got %d, %d, %d",
			ranked[0].Task.ID, ranked[1].Task.ID, ranked[2].Task.ID)
	}
}

func TestUrgencyWindow(t *testing.T) {
	w := DefaultWeights()

	// Beyond the window or absent: zero urgency.
	if u, over := urgency(due(100*time.Hour), testNow, w.UrgencyWindowHours); u != 0 || over {
		t.Fatalf("expected zero urgency beyond window, got %v/%v", u, over)
	}
	if u, over := urgency(nil, testNow, w.UrgencyWindowHours); u != 0 || over {
		t.Fatalf("expected zero urgency without due, got %v/%v", u, over)
	}

	// Monotonically increasing toward the due time.
	far, _ := urgency(due(48*time.Hour), testNow, w.UrgencyWindowHours)
	near, _ := urgency(due(2*time.Hour), testNow, w.UrgencyWindowHours)
	if !(near > far && far > 0) {
		t.Fatalf("expected urgency to rise approaching due: near=%v far=%v", near, far)
	}

	// Maximum at/past the due time.
	if u, over := urgency(due(-time.Second), testNow, w.UrgencyWindowHours); u != 1.0 || !over {
		t.Fatalf("expected max urgency when overdue, got %v/%v", u, over)
	}
}

func TestShortTaskBonus(t *testing.T) {
	if got := shortTaskBonus(20, 30); got != 1.0 {
		t.Fatalf("expected full bonus under threshold, got %v", got)
	}
	if got := shortTaskBonus(0, 30); got != 0 {
		t.Fatalf("unknown estimate must get no bonus, got %v", got)
	}
	if got := shortTaskBonus(60, 30); got != 0 {
		t.Fatalf("expected no bonus at 2x threshold, got %v", got)
	}
	mid := shortTaskBonus(45, 30)
	if mid <= 0 || mid >= 1 {
		t.Fatalf("expected taper between threshold and 2x, got %v", mid)
	}
}

func TestSlotPenaltySoft(t *testing.T) {
	fits := task(1, store.PriorityMedium, nil, 25)
	overflows := task(2, store.PriorityMedium, nil, 90)

	ranked := Rank([]store.Task{overflows, fits}, testNow, 30, DefaultWeights())
	if ranked[0].Task.ID != 1 {
		t.Fatalf("expected fitting task preferred, got %d", ranked[0].Task.ID)
	}
	// Soft penalty: the oversized task is still present and still scored.
	if ranked[1].Task.ID != 2 {
		t.Fatal("oversized task must not be filtered out")
	}
	if ranked[1].Factors.SlotPenalty <= 0 {
		t.Fatalf("expected a slot penalty, got %v", ranked[1].Factors.SlotPenalty)
	}

	// No budget, no penalty.
	unranked := Rank([]store.Task{overflows}, testNow, 0, DefaultWeights())
	if unranked[0].Factors.SlotPenalty != 0 {
		t.Fatalf("expected no penalty without budget, got %v", unranked[0].Factors.SlotPenalty)
	}
}

func TestSlotPenaltyCapped(t *testing.T) {
	if p := slotPenalty(600, 30); p != 0.5 {
		t.Fatalf("expected cap at 0.5, got %v", p)
	}
}

func TestTieBreakByDueThenID(t *testing.T) {
	early := due(10 * time.Hour)
	late := due(20 * time.Hour)

	// Zero weights make every score identical; ordering falls to ties.
	w := Weights{UrgencyWindowHours: 72, ShortTaskThresholdMin: 30}
	tasks := []store.Task{
		task(5, store.PriorityMedium, nil, 0),
		task(4, store.PriorityMedium, late, 0),
		task(3, store.PriorityMedium, early, 0),
		task(2, store.PriorityMedium, nil, 0),
	}
	ranked := Rank(tasks, testNow, 0, w)
	want := []int64{3, 4, 2, 5}
	for i, id := range want {
		if ranked[i].Task.ID != id {
			t.Fatalf("position %d: expected task %d, got %d", i, id, ranked[i].Task.ID)
		}
	}
}

func TestTop(t *testing.T) {
	ranked := Rank([]store.Task{
		task(1, store.PriorityLow, nil, 0),
		task(2, store.PriorityHigh, nil, 0),
		task(3, store.PriorityMedium, nil, 0),
	}, testNow, 0, DefaultWeights())

	top := Top(ranked, 2)
	if len(top) != 2 || top[0].Task.ID != 2 {
		t.Fatalf("unexpected top slice: %+v", top)
	}
	if got := Top(ranked, 10); len(got) != 3 {
		t.Fatalf("expected all results when n exceeds length, got %d", len(got))
	}
}
