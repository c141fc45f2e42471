package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
)

// Task statuses.
const (
	TaskPlanned    = "planned"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
)

// TaskStatuses lists the valid task statuses.
var TaskStatuses = []string{TaskPlanned, TaskInProgress, TaskCompleted}

// Task is a unit of work within a schedule.
type Task struct {
	ID         int64   `json:"id"`
	ScheduleID int64   `json:"schedule_id"`
	Name       string  `json:"name"`
	Stage      string  `json:"stage"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Location   *string `json:"location"`
	Status     string  `json:"status"`
	Note       *string `json:"note"`
}

// NewTask holds the fields of a task to create. An empty Status means
// TaskPlanned.
type NewTask struct {
	Name      string
	Stage     string
	StartTime string
	EndTime   string
	Location  *string
	Status    string
	Note      *string
}

// TaskFilter narrows ListTasks. Stage matches case-insensitively.
type TaskFilter struct {
	Stage  string
	Status string
}

const taskColumns = "id, schedule_id, name, stage, start_time, end_time, location, status, note"

var taskFields = map[string]string{
	"name":       "name",
	"stage":      "stage",
	"start_time": "start_time",
	"end_time":   "end_time",
	"location":   "location",
	"status":     "status",
	"note":       "note",
}

// ListTasks returns the tasks of a schedule ordered by start time, then id.
// It returns ErrNotFound when the schedule does not exist.
func (s *Store) ListTasks(ctx context.Context, scheduleID int64, f TaskFilter) ([]Task, error) {
	ok, err := exists(ctx, s.db, "schedules", scheduleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	where := []string{"schedule_id = ?"}
	args := []any{scheduleID}
	if f.Stage != "" {
		where = append(where, "lower(stage) = lower(?)")
		args = append(args, f.Stage)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE "+strings.Join(where, " AND ")+" ORDER BY start_time, id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTask returns the task with id or ErrNotFound.
func (s *Store) GetTask(ctx context.Context, id int64) (Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err != nil {
		return Task{}, notFound(err)
	}
	return t, nil
}

// CreateTask inserts a task into a schedule. It returns ErrNotFound when the
// schedule does not exist.
func (s *Store) CreateTask(ctx context.Context, scheduleID int64, in NewTask) (Task, error) {
	if in.Status == "" {
		in.Status = TaskPlanned
	}
	if err := checkStatus(in.Status, TaskStatuses); err != nil {
		return Task{}, err
	}

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "schedules", scheduleID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO tasks (schedule_id, name, stage, start_time, end_time, location, status, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			scheduleID, in.Name, in.Stage, in.StartTime, in.EndTime,
			nullString(in.Location), in.Status, nullString(in.Note),
		)
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:         id,
		ScheduleID: scheduleID,
		Name:       in.Name,
		Stage:      in.Stage,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Location:   in.Location,
		Status:     in.Status,
		Note:       in.Note,
	}, nil
}

// UpdateTask applies changes and returns the updated task. Empty changes
// return the task unchanged.
func (s *Store) UpdateTask(ctx context.Context, id int64, c Changes) (Task, error) {
	if len(c) == 0 {
		return s.GetTask(ctx, id)
	}
	if st, ok := c["status"].(string); ok {
		if err := checkStatus(st, TaskStatuses); err != nil {
			return Task{}, err
		}
	}
	if err := update(ctx, s.db, "tasks", id, taskFields, c); err != nil {
		return Task{}, err
	}
	return s.GetTask(ctx, id)
}

// UpdateTaskStatus sets the status of a task and returns it.
func (s *Store) UpdateTaskStatus(ctx context.Context, id int64, status string) (Task, error) {
	return s.UpdateTask(ctx, id, Changes{"status": status})
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	return remove(ctx, s.db, "tasks", id)
}

func scanTask(sc scanner) (Task, error) {
	var t Task
	var location, note sql.NullString
	if err := sc.Scan(&t.ID, &t.ScheduleID, &t.Name, &t.Stage, &t.StartTime, &t.EndTime, &location, &t.Status, &note); err != nil {
		return Task{}, err
	}
	t.Location = stringPtr(location)
	t.Note = stringPtr(note)
	return t, nil
}

func checkStatus(status string, allowed []string) error {
	if !slices.Contains(allowed, status) {
		return &ValidationError{Msg: fmt.Sprintf("invalid status %q", status)}
	}
	return nil
}
