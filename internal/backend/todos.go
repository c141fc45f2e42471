package backend

import (
	"context"
	"net/http"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/store"
)

type listTodosRequest struct {
	Store *store.Store `depends:"store"`
}

type todoRequest struct {
	Store  *store.Store `depends:"store"`
	TodoID int64        `path:"todo_id"`
}

type createTodoRequest struct {
	Store   *store.Store `depends:"store"`
	Payload TodoCreate   `body:""`
}

type updateTodoRequest struct {
	Store   *store.Store `depends:"store"`
	TodoID  int64        `path:"todo_id"`
	Payload TodoUpdate   `body:""`
}

func registerTodos(g *dispatch.Group) {
	dispatch.Get(g, "", listTodos,
		dispatch.WithSummary("List todos"),
		dispatch.WithDescription("Ordered by due date with undated todos last, then by id."))
	dispatch.Post(g, "", createTodo, dispatch.WithStatus(http.StatusCreated), dispatch.WithSummary("Create a todo"))
	dispatch.Get(g, "/{todo_id}", getTodo, dispatch.WithSummary("Get a todo"))
	dispatch.Put(g, "/{todo_id}", updateTodo, dispatch.WithSummary("Update a todo"))
	dispatch.Delete(g, "/{todo_id}", deleteTodo, dispatch.WithSummary("Delete a todo"))
}

func listTodos(ctx context.Context, req *listTodosRequest) (*[]store.Todo, error) {
	todos, err := req.Store.ListTodos(ctx)
	if err != nil {
		return nil, err
	}
	return &todos, nil
}

func getTodo(ctx context.Context, req *todoRequest) (*store.Todo, error) {
	t, err := req.Store.GetTodo(ctx, req.TodoID)
	if err != nil {
		return nil, storeError(err, TodoNotFound)
	}
	return &t, nil
}

func createTodo(ctx context.Context, req *createTodoRequest) (*store.Todo, error) {
	rec := req.Payload.Record
	t, err := req.Store.CreateTodo(ctx, store.NewTodo{
		Title:       str(rec, "title"),
		Description: optStr(rec.Get("description")),
		DueDate:     optStr(rec.Get("due_date")),
		Status:      str(rec, "status"),
		AssigneeID:  optInt(rec.Get("assignee_id")),
	})
	if err != nil {
		return nil, storeError(err, TodoNotFound)
	}
	return &t, nil
}

func updateTodo(ctx context.Context, req *updateTodoRequest) (*store.Todo, error) {
	c, err := changes(todoUpdateSchema, req.Payload.ExplicitFields(), "title", "status")
	if err != nil {
		return nil, err
	}
	t, err := req.Store.UpdateTodo(ctx, req.TodoID, c)
	if err != nil {
		return nil, storeError(err, TodoNotFound)
	}
	return &t, nil
}

func deleteTodo(ctx context.Context, req *todoRequest) (*dispatch.Void, error) {
	if err := req.Store.DeleteTodo(ctx, req.TodoID); err != nil {
		return nil, storeError(err, TodoNotFound)
	}
	return nil, nil
}
