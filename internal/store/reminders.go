package store

import (
	"fmt"
	"time"
)

// UpsertDueReminder keeps at most one unsent due-alignment reminder per
// task: an existing unsent reminder is moved to the new timestamp, otherwise
// one is created.
func (s *Store) UpsertDueReminder(taskID int64, remindAt time.Time) error {
	res, err := s.db.Exec(
		`UPDATE reminders SET remind_at = ? WHERE task_id = ? AND sent = 0`,
		fmtTime(remindAt), taskID,
	)
	if err != nil {
		return fmt.Errorf("update reminder for task %d: %w", taskID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	now := fmtTime(time.Now())
	_, err = s.db.Exec(
		`INSERT INTO reminders (task_id, remind_at, sent, created_at) VALUES (?, ?, 0, ?)`,
		taskID, fmtTime(remindAt), now,
	)
	if err != nil {
		return fmt.Errorf("insert reminder for task %d: %w", taskID, err)
	}
	return nil
}

// DeleteUnsentReminder drops the pending due-alignment reminder of a task,
// used when its due timestamp is cleared. Already-sent reminders stay as
// history.
func (s *Store) DeleteUnsentReminder(taskID int64) error {
	_, err := s.db.Exec(`DELETE FROM reminders WHERE task_id = ? AND sent = 0`, taskID)
	if err != nil {
		return fmt.Errorf("delete reminder for task %d: %w", taskID, err)
	}
	return nil
}

// GetDueUnsentReminders returns unsent reminders due at or before now,
// ascending by fire time.
func (s *Store) GetDueUnsentReminders(now time.Time) ([]Reminder, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.task_id, COALESCE(t.title, ''), r.remind_at, r.sent, r.created_at
		 FROM reminders r LEFT JOIN tasks t ON t.id = r.task_id
		 WHERE r.sent = 0 AND r.remind_at <= ?
		 ORDER BY r.remind_at ASC, r.id ASC`,
		fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("get due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// MarkReminderSent advances sent 0 -> 1, exactly once per reminder; the
// scheduler is the only caller.
func (s *Store) MarkReminderSent(id int64) error {
	_, err := s.db.Exec(`UPDATE reminders SET sent = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark reminder %d sent: %w", id, err)
	}
	return nil
}

func (s *Store) ListReminders(limit int) ([]Reminder, error) {
	query := `SELECT r.id, r.task_id, COALESCE(t.title, ''), r.remind_at, r.sent, r.created_at
		FROM reminders r LEFT JOIN tasks t ON t.id = r.task_id
		ORDER BY r.remind_at ASC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func scanReminder(r rowScanner) (*Reminder, error) {
	rem := &Reminder{}
	var remindAt, created string
	var sent int
	if err := r.Scan(&rem.ID, &rem.TaskID, &rem.TaskTitle, &remindAt, &sent, &created); err != nil {
		return nil, err
	}
	rem.RemindAt = parseTime(remindAt)
	rem.Sent = sent == 1
	rem.CreatedAt = parseTime(created)
	return rem, nil
}
