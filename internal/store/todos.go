package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Todo statuses.
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
)

// TodoStatuses lists the valid todo statuses.
var TodoStatuses = []string{TodoPending, TodoInProgress, TodoCompleted}

// Todo is a checklist item, optionally assigned to a member.
type Todo struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      string  `json:"status"`
	AssigneeID  *int64  `json:"assignee_id"`
}

// NewTodo holds the fields of a todo to create. An empty Status means
// TodoPending.
type NewTodo struct {
	Title       string
	Description *string
	DueDate     *string
	Status      string
	AssigneeID  *int64
}

const todoColumns = "id, title, description, due_date, status, assignee_id"

var todoFields = map[string]string{
	"title":       "title",
	"description": "description",
	"due_date":    "due_date",
	"status":      "status",
	"assignee_id": "assignee_id",
}

var errUnknownAssignee = &ValidationError{Msg: "assignee_id must reference an existing member"}

// ListTodos returns todos ordered by due date with undated todos last, then id.
func (s *Store) ListTodos(ctx context.Context) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+todoColumns+" FROM todos ORDER BY CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date, id")
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("list todos: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTodo returns the todo with id or ErrNotFound.
func (s *Store) GetTodo(ctx context.Context, id int64) (Todo, error) {
	return getTodo(ctx, s.db, id)
}

func getTodo(ctx context.Context, q querier, id int64) (Todo, error) {
	t, err := scanTodo(q.QueryRowContext(ctx, "SELECT "+todoColumns+" FROM todos WHERE id = ?", id))
	if err != nil {
		return Todo{}, notFound(err)
	}
	return t, nil
}

// CreateTodo inserts a todo. The assignee, when set, must exist.
func (s *Store) CreateTodo(ctx context.Context, in NewTodo) (Todo, error) {
	if in.Status == "" {
		in.Status = TodoPending
	}
	if err := checkStatus(in.Status, TodoStatuses); err != nil {
		return Todo{}, err
	}

	var out Todo
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if in.AssigneeID != nil {
			ok, err := exists(ctx, tx, "members", *in.AssigneeID)
			if err != nil {
				return err
			}
			if !ok {
				return errUnknownAssignee
			}
		}

		var assignee sql.NullInt64
		if in.AssigneeID != nil {
			assignee = sql.NullInt64{Int64: *in.AssigneeID, Valid: true}
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO todos (title, description, due_date, status, assignee_id) VALUES (?, ?, ?, ?, ?)",
			in.Title, nullString(in.Description), nullString(in.DueDate), in.Status, assignee,
		)
		if err != nil {
			return fmt.Errorf("create todo: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create todo: %w", err)
		}
		out, err = getTodo(ctx, tx, id)
		return err
	})
	return out, err
}

// UpdateTodo applies changes and returns the updated todo. A nil
// "assignee_id" unassigns the todo; a set one must reference an existing
// member. Empty changes return the todo unchanged.
func (s *Store) UpdateTodo(ctx context.Context, id int64, c Changes) (Todo, error) {
	if len(c) == 0 {
		return s.GetTodo(ctx, id)
	}
	if st, ok := c["status"].(string); ok {
		if err := checkStatus(st, TodoStatuses); err != nil {
			return Todo{}, err
		}
	}

	var out Todo
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if v, ok := c["assignee_id"]; ok && v != nil {
			member, isInt := v.(int64)
			if !isInt {
				return fmt.Errorf("update todos: assignee_id must be an int64, got %T", v)
			}
			found, err := exists(ctx, tx, "members", member)
			if err != nil {
				return err
			}
			if !found {
				return errUnknownAssignee
			}
		}
		if err := update(ctx, tx, "todos", id, todoFields, c); err != nil {
			return err
		}
		var err error
		out, err = getTodo(ctx, tx, id)
		return err
	})
	return out, err
}

// DeleteTodo removes a todo.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	return remove(ctx, s.db, "todos", id)
}

func scanTodo(sc scanner) (Todo, error) {
	var t Todo
	var description, due sql.NullString
	var assignee sql.NullInt64
	if err := sc.Scan(&t.ID, &t.Title, &description, &due, &t.Status, &assignee); err != nil {
		return Todo{}, err
	}
	t.Description = stringPtr(description)
	t.DueDate = stringPtr(due)
	if assignee.Valid {
		t.AssigneeID = &assignee.Int64
	}
	return t, nil
}
