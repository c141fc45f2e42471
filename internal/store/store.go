// Package store persists EventCompass members, materials, schedules, tasks
// and todos in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Layouts of stored dates and timestamps.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "2006-01-02T15:04:05"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// ValidationError reports a write the store refuses, such as a reference to
// a missing member or an inverted time range.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Changes holds the fields of a partial update keyed by wire name. A nil
// value clears a nullable column.
type Changes map[string]any

// Store is a SQLite-backed store.
type Store struct {
	db *sql.DB
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates the database at path and initializes the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps the pragmas.
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. Call Init before use on a fresh database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	part TEXT NOT NULL,
	position TEXT NOT NULL,
	contact_phone TEXT,
	contact_email TEXT,
	contact_note TEXT
);

CREATE TABLE IF NOT EXISTS materials (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	part TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK(quantity >= 0)
);

CREATE TABLE IF NOT EXISTS schedules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	event_date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	schedule_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	stage TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	location TEXT,
	status TEXT NOT NULL,
	note TEXT,
	FOREIGN KEY(schedule_id) REFERENCES schedules(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_schedule ON tasks(schedule_id);

CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	due_date TEXT,
	status TEXT NOT NULL,
	assignee_id INTEGER,
	FOREIGN KEY(assignee_id) REFERENCES members(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_status ON todos(status);
CREATE INDEX IF NOT EXISTS idx_todos_due_date ON todos(due_date);
`

// Init creates missing tables and upgrades older schedule tables that lack
// the start_time and end_time columns.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	if err := s.ensureScheduleColumns(ctx); err != nil {
		return fmt.Errorf("migrate schedules: %w", err)
	}
	return nil
}

func (s *Store) ensureScheduleColumns(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info('schedules')")
	if err != nil {
		return err
	}
	var existing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		existing = append(existing, name)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	backfill := map[string]string{
		"start_time": "UPDATE schedules SET start_time = event_date || 'T00:00:00'",
		"end_time":   "UPDATE schedules SET end_time = event_date || 'T23:59:59'",
	}
	for _, col := range []string{"start_time", "end_time"} {
		if slices.Contains(existing, col) {
			continue
		}
		if _, err := s.db.ExecContext(ctx, "ALTER TABLE schedules ADD COLUMN "+col+" TEXT"); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, backfill[col]); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Reset deletes every record and restarts id sequences.
func (s *Store) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			"DELETE FROM todos",
			"DELETE FROM tasks",
			"DELETE FROM schedules",
			"DELETE FROM materials",
			"DELETE FROM members",
			"DELETE FROM sqlite_sequence WHERE name IN ('members', 'materials', 'schedules', 'tasks', 'todos')",
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// update writes changes to the row id of table. columns maps wire names to
// column names; an unknown name is an error.
func update(ctx context.Context, q querier, table string, id int64, columns map[string]string, c Changes) error {
	names := make([]string, 0, len(c))
	for name := range c {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("update %s: unknown field %q", table, name)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		sets = append(sets, columns[name]+" = ?")
		args = append(args, c[name])
	}
	args = append(args, id)

	res, err := q.ExecContext(ctx, "UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return expectRow(res)
}

func remove(ctx context.Context, q querier, table string, id int64) error {
	res, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return expectRow(res)
}

func exists(ctx context.Context, q querier, table string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return true, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// timeRange parses start and end and requires start before end.
func timeRange(start, end string) error {
	st, err := time.Parse(TimeLayout, start)
	if err != nil {
		return &ValidationError{Msg: fmt.Sprintf("invalid start_time %q", start)}
	}
	et, err := time.Parse(TimeLayout, end)
	if err != nil {
		return &ValidationError{Msg: fmt.Sprintf("invalid end_time %q", end)}
	}
	if !st.Before(et) {
		return &ValidationError{Msg: "start_time must be before end_time"}
	}
	return nil
}
