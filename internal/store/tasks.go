package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const taskColumns = `t.id, t.title, t.description, t.category_id, COALESCE(c.name, ''),
	t.priority, t.estimated_minutes, t.due_at, t.status, t.recurrence, t.recurrence_until,
	t.completed, t.created_at, t.updated_at`

func (s *Store) CreateTask(d TaskDraft) (*Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, errors.New("task title is required")
	}
	if d.Priority == 0 {
		d.Priority = PriorityMedium
	}
	if d.Recurrence == "" {
		d.Recurrence = RecurrenceNone
	}

	catID, err := s.getOrCreateCategory(d.Category)
	if err != nil {
		return nil, err
	}

	now := fmtTime(time.Now())
	res, err := s.db.Exec(
		`INSERT INTO tasks (title, description, category_id, priority, estimated_minutes,
		   due_at, status, recurrence, recurrence_until, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'open', ?, ?, ?, ?)`,
		title, d.Description, catID, int(d.Priority), d.EstimatedMinutes,
		fmtTimePtr(d.DueAt), string(d.Recurrence), fmtTimePtr(d.RecurrenceUntil), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()

	// A task created with a due timestamp gets its due-alignment reminder
	// immediately.
	if d.DueAt != nil {
		if err := s.UpsertDueReminder(id, *d.DueAt); err != nil {
			return nil, err
		}
	}
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskColumns+` FROM tasks t LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.id = ?`, id,
	)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// UpdateTask rewrites the writable fields of a task and keeps the
// due-alignment reminder in sync with the (possibly changed) due timestamp.
func (s *Store) UpdateTask(id int64, d TaskDraft) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return errors.New("task title is required")
	}
	catID, err := s.getOrCreateCategory(d.Category)
	if err != nil {
		return err
	}

	now := fmtTime(time.Now())
	_, err = s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, category_id = ?, priority = ?,
		   estimated_minutes = ?, due_at = ?, recurrence = ?, recurrence_until = ?, updated_at = ?
		 WHERE id = ?`,
		title, d.Description, catID, int(d.Priority), d.EstimatedMinutes,
		fmtTimePtr(d.DueAt), string(d.Recurrence), fmtTimePtr(d.RecurrenceUntil), now, id,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return s.syncDueReminder(id, d.DueAt)
}

// SetTaskDue changes only the due timestamp and its reminder. A nil due
// clears both.
func (s *Store) SetTaskDue(id int64, due *time.Time) error {
	now := fmtTime(time.Now())
	_, err := s.db.Exec(
		`UPDATE tasks SET due_at = ?, updated_at = ? WHERE id = ?`,
		fmtTimePtr(due), now, id,
	)
	if err != nil {
		return fmt.Errorf("set task %d due: %w", id, err)
	}
	return s.syncDueReminder(id, due)
}

func (s *Store) syncDueReminder(id int64, due *time.Time) error {
	if due == nil {
		return s.DeleteUnsentReminder(id)
	}
	return s.UpsertDueReminder(id, *due)
}

// SetTaskStatus applies a free-form status transition. Moving to done sets
// the completed flag and, for recurring tasks, inserts the next occurrence.
func (s *Store) SetTaskStatus(id int64, status Status) error {
	completed := 0
	if status == StatusDone {
		completed = 1
	}
	now := fmtTime(time.Now())
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed = ?, updated_at = ? WHERE id = ?`,
		string(status), completed, now, id,
	)
	if err != nil {
		return fmt.Errorf("set task %d status: %w", id, err)
	}
	if status == StatusDone {
		return s.regenerateRecurring(id)
	}
	return nil
}

// regenerateRecurring inserts the next occurrence of a completed recurring
// task, shifting the due timestamp by the recurrence period. Nothing happens
// for one-shot tasks or when the next due would fall past recurrence_until.
func (s *Store) regenerateRecurring(id int64) error {
	t, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if t.Recurrence == RecurrenceNone || t.Recurrence == "" {
		return nil
	}

	base := time.Now()
	if t.DueAt != nil {
		base = *t.DueAt
	}
	var next time.Time
	switch t.Recurrence {
	case RecurrenceDaily:
		next = base.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		next = base.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		next = base.AddDate(0, 1, 0)
	default:
		return nil
	}
	if t.RecurrenceUntil != nil && next.After(*t.RecurrenceUntil) {
		return nil
	}

	_, err = s.CreateTask(TaskDraft{
		Title:            t.Title,
		Description:      t.Description,
		Category:         t.Category,
		Priority:         t.Priority,
		EstimatedMinutes: t.EstimatedMinutes,
		DueAt:            &next,
		Recurrence:       t.Recurrence,
		RecurrenceUntil:  t.RecurrenceUntil,
	})
	return err
}

// ListOpenTasks returns tasks with status open or in_progress, soonest due
// first (tasks without a due timestamp sort last).
func (s *Store) ListOpenTasks() ([]Task, error) {
	rows, err := s.db.Query(
		`SELECT ` + taskColumns + ` FROM tasks t LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.status IN ('open', 'in_progress')
		 ORDER BY COALESCE(t.due_at, '9999-12-31T23:59:59Z') ASC, t.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *Store) ListTasks(limit int) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t LEFT JOIN categories c ON c.id = t.category_id
		ORDER BY COALESCE(t.due_at, '9999-12-31T23:59:59Z') ASC, t.created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *Store) DeleteTask(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (s *Store) CountOpenTasks() (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE status IN ('open', 'in_progress')`,
	).Scan(&n)
	return n, err
}

func (s *Store) CountDueToday() (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks
		 WHERE status IN ('open', 'in_progress')
		   AND due_at IS NOT NULL
		   AND date(due_at) = date('now')`,
	).Scan(&n)
	return n, err
}

func (s *Store) getOrCreateCategory(name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	var id int64
	if err := s.db.QueryRow(`SELECT id FROM categories WHERE name = ?`, name).Scan(&id); err != nil {
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}
	return &id, nil
}

func (s *Store) ListCategories() ([]Category, error) {
	rows, err := s.db.Query(`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (*Task, error) {
	t := &Task{}
	var (
		catID            sql.NullInt64
		priority         int
		dueAt, until     sql.NullString
		status, recur    string
		completed        int
		created, updated string
	)
	err := r.Scan(&t.ID, &t.Title, &t.Description, &catID, &t.Category,
		&priority, &t.EstimatedMinutes, &dueAt, &status, &recur, &until,
		&completed, &created, &updated)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		t.CategoryID = &catID.Int64
	}
	t.Priority = Priority(priority)
	t.DueAt = parseTimePtr(dueAt)
	t.Status = Status(status)
	t.Recurrence = Recurrence(recur)
	t.RecurrenceUntil = parseTimePtr(until)
	t.Completed = completed == 1
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]Task, error) {
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
