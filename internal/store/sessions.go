package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateFocusSession records one completed focus or break interval. Rows
// are write-once; the pomodoro timer is the only writer.
func (s *Store) CreateFocusSession(taskID *int64, start, end time.Time, durationMinutes int, note string) (*FocusSession, error) {
	now := fmtTime(time.Now())
	res, err := s.db.Exec(
		`INSERT INTO focus_sessions (task_id, started_at, ended_at, duration_minutes, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		taskID, fmtTime(start), fmtTime(end), durationMinutes, note, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert focus session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetFocusSession(id)
}

func (s *Store) GetFocusSession(id int64) (*FocusSession, error) {
	row := s.db.QueryRow(
		`SELECT fs.id, fs.task_id, COALESCE(t.title, ''), fs.started_at, fs.ended_at,
		        fs.duration_minutes, fs.note, fs.created_at
		 FROM focus_sessions fs LEFT JOIN tasks t ON t.id = fs.task_id
		 WHERE fs.id = ?`, id,
	)
	fs, err := scanFocusSession(row)
	if err != nil {
		return nil, fmt.Errorf("get focus session %d: %w", id, err)
	}
	return fs, nil
}

func (s *Store) ListRecentFocusSessions(limit int) ([]FocusSession, error) {
	query := `SELECT fs.id, fs.task_id, COALESCE(t.title, ''), fs.started_at, fs.ended_at,
			fs.duration_minutes, fs.note, fs.created_at
		FROM focus_sessions fs LEFT JOIN tasks t ON t.id = fs.task_id
		ORDER BY fs.started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list focus sessions: %w", err)
	}
	defer rows.Close()

	var sessions []FocusSession
	for rows.Next() {
		fs, err := scanFocusSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *fs)
	}
	return sessions, rows.Err()
}

func (s *Store) FocusStats(from, to time.Time) (count int, totalMinutes int64, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0)
		 FROM focus_sessions
		 WHERE started_at >= ? AND started_at < ?`,
		fmtTime(from), fmtTime(to),
	).Scan(&count, &totalMinutes)
	return
}

func (s *Store) CountSessionsToday() (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM focus_sessions WHERE date(started_at) = date('now')`,
	).Scan(&n)
	return n, err
}

func scanFocusSession(r rowScanner) (*FocusSession, error) {
	fs := &FocusSession{}
	var taskID sql.NullInt64
	var started, ended, created string
	err := r.Scan(&fs.ID, &taskID, &fs.TaskTitle, &started, &ended,
		&fs.DurationMinutes, &fs.Note, &created)
	if err != nil {
		return nil, err
	}
	if taskID.Valid {
		fs.TaskID = &taskID.Int64
	}
	fs.StartedAt = parseTime(started)
	fs.EndedAt = parseTime(ended)
	fs.CreatedAt = parseTime(created)
	return fs, nil
}
