// Package store provides SQLite-backed persistence for all per-user
// state: tasks, key-value snapshots, focus totals, session history,
// notifications, and team workspaces.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskflowhq/taskflow/internal/domain"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertTask inserts or updates a task for a user
func (s *Store) UpsertTask(userEmail string, task *domain.Task) error {
	var due sql.NullString
	if task.DueDate != nil {
		due = sql.NullString{String: task.DueDate.String(), Valid: true}
	}

	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO tasks (id, user_email, title, description, priority, status, project, due_date, time_spent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			priority = excluded.priority,
			status = excluded.status,
			project = excluded.project,
			due_date = excluded.due_date,
			time_spent = excluded.time_spent,
			updated_at = excluded.updated_at
	`,
		task.ID,
		userEmail,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.Project,
		due,
		task.TimeSpent,
		now,
		now,
	)
	return err
}

// GetTask retrieves a user's task by ID; returns nil when not found
func (s *Store) GetTask(userEmail, id string) (*domain.Task, error) {
	row := s.db.QueryRow(`
		SELECT id, title, description, priority, status, project, due_date, time_spent
		FROM tasks WHERE user_email = ? AND id = ?
	`, userEmail, id)

	task, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return task, err
}

// ListOptions specifies filters for listing tasks
type ListOptions struct {
	Status  domain.Status
	Project string
}

// ListTasks returns a user's tasks matching the given options
func (s *Store) ListTasks(userEmail string, opts ListOptions) ([]domain.Task, error) {
	query := `SELECT id, title, description, priority, status, project, due_date, time_spent FROM tasks WHERE user_email = ?`
	args := []interface{}{userEmail}

	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, string(opts.Status))
	}
	if opts.Project != "" {
		query += " AND project = ?"
		args = append(args, opts.Project)
	}

	query += " ORDER BY created_at, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// DeleteTask removes a user's task; reports whether a row was deleted
func (s *Store) DeleteTask(userEmail, id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE user_email = ? AND id = ?`, userEmail, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountTasks returns the number of tasks a user has
func (s *Store) CountTasks(userEmail string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE user_email = ?`, userEmail).Scan(&n)
	return n, err
}

// Users returns every email that owns any stored state
func (s *Store) Users() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT user_email FROM tasks
		UNION SELECT user_email FROM user_kv
		UNION SELECT user_email FROM focus_days
		ORDER BY user_email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanTask(scan func(...interface{}) error) (*domain.Task, error) {
	var task domain.Task
	var priority, status string
	var description, project, due sql.NullString

	err := scan(&task.ID, &task.Title, &description, &priority, &status, &project, &due, &task.TimeSpent)
	if err != nil {
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	task.Description = description.String
	task.Project = project.String

	if due.Valid && due.String != "" {
		d, err := domain.ParseDate(due.String)
		if err != nil {
			return nil, err
		}
		task.DueDate = &d
	}

	return &task, nil
}

// UserKV is a key-value view scoped to a single user. It satisfies the
// timer engine's persistence interface.
type UserKV struct {
	s     *Store
	email string
}

// UserKV returns the key-value view for a user
func (s *Store) UserKV(email string) *UserKV {
	return &UserKV{s: s, email: email}
}

// Get reads a value; the second return is false when the key is absent
func (kv *UserKV) Get(key string) (string, bool, error) {
	var value string
	err := kv.s.db.QueryRow(`SELECT value FROM user_kv WHERE user_email = ? AND key = ?`, kv.email, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set writes a value
func (kv *UserKV) Set(key, value string) error {
	_, err := kv.s.db.Exec(`
		INSERT INTO user_kv (user_email, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_email, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, kv.email, key, value, time.Now())
	return err
}

// Delete removes a key
func (kv *UserKV) Delete(key string) error {
	_, err := kv.s.db.Exec(`DELETE FROM user_kv WHERE user_email = ? AND key = ?`, kv.email, key)
	return err
}

const dayLayout = "2006-01-02"

// AddFocusTime adds minutes to a user's total for the given day
func (s *Store) AddFocusTime(userEmail string, day time.Time, minutes int) error {
	_, err := s.db.Exec(`
		INSERT INTO focus_days (user_email, day, minutes)
		VALUES (?, ?, ?)
		ON CONFLICT(user_email, day) DO UPDATE SET
			minutes = minutes + excluded.minutes
	`, userEmail, day.Format(dayLayout), minutes)
	return err
}

// FocusTime returns a user's focused minutes for the given day
func (s *Store) FocusTime(userEmail string, day time.Time) (int, error) {
	var minutes int
	err := s.db.QueryRow(`
		SELECT minutes FROM focus_days WHERE user_email = ? AND day = ?
	`, userEmail, day.Format(dayLayout)).Scan(&minutes)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return minutes, err
}

// AddFocusSession appends a session record to a user's history
func (s *Store) AddFocusSession(userEmail string, fs domain.FocusSession, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO focus_sessions (id, user_email, session_type, duration_min, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), userEmail, string(fs.Type), fs.Duration, fs.Completed, at)
	return err
}

// CountFocusSessions returns how many sessions a user completed on the
// given day
func (s *Store) CountFocusSessions(userEmail string, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM focus_sessions
		WHERE user_email = ? AND created_at >= ? AND created_at < ?
	`, userEmail, start, end).Scan(&n)
	return n, err
}

// ListFocusSessions returns a user's session history for the given day,
// oldest first
func (s *Store) ListFocusSessions(userEmail string, day time.Time) ([]domain.FocusSession, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	rows, err := s.db.Query(`
		SELECT session_type, duration_min, completed
		FROM focus_sessions
		WHERE user_email = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at
	`, userEmail, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FocusSession
	for rows.Next() {
		var fs domain.FocusSession
		var sessionType string
		if err := rows.Scan(&sessionType, &fs.Duration, &fs.Completed); err != nil {
			return nil, err
		}
		fs.Type = domain.SessionType(sessionType)
		out = append(out, fs)
	}
	return out, rows.Err()
}

// UserFocus adapts the store to the timer engine's focus recorder
// interface for one user
type UserFocus struct {
	s     *Store
	email string
	now   func() time.Time
}

// UserFocus returns the focus recorder view for a user
func (s *Store) UserFocus(email string, now func() time.Time) *UserFocus {
	if now == nil {
		now = time.Now
	}
	return &UserFocus{s: s, email: email, now: now}
}

// AddFocusTime credits minutes against today's total
func (f *UserFocus) AddFocusTime(minutes int) error {
	return f.s.AddFocusTime(f.email, f.now(), minutes)
}

// AddFocusSession appends a session record stamped with the current time
func (f *UserFocus) AddFocusSession(fs domain.FocusSession) error {
	return f.s.AddFocusSession(f.email, fs, f.now())
}

// Notification is a stored per-user notification
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon,omitempty"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

const maxNotifications = 50

// AddNotification stores a notification, keeping only the 50 newest
// per user
func (s *Store) AddNotification(userEmail, kind, title, message, icon string) error {
	_, err := s.db.Exec(`
		INSERT INTO notifications (id, user_email, kind, title, message, icon, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, uuid.NewString(), userEmail, kind, title, message, icon, time.Now())
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		DELETE FROM notifications
		WHERE user_email = ? AND id NOT IN (
			SELECT id FROM notifications
			WHERE user_email = ?
			ORDER BY created_at DESC, id LIMIT ?
		)
	`, userEmail, userEmail, maxNotifications)
	return err
}

// ListNotifications returns a user's notifications, newest first
func (s *Store) ListNotifications(userEmail string) ([]Notification, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, title, message, icon, read, created_at
		FROM notifications
		WHERE user_email = ?
		ORDER BY created_at DESC, id
	`, userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var icon sql.NullString
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Message, &icon, &n.Read, &n.Timestamp); err != nil {
			return nil, err
		}
		n.Icon = icon.String
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationsRead marks all of a user's notifications as read
func (s *Store) MarkNotificationsRead(userEmail string) error {
	_, err := s.db.Exec(`UPDATE notifications SET read = 1 WHERE user_email = ?`, userEmail)
	return err
}
