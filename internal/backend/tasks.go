package backend

import (
	"context"
	"net/http"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/store"
)

type listTasksRequest struct {
	Store      *store.Store `depends:"store"`
	ScheduleID int64        `path:"schedule_id"`
	Stage      string       `query:"stage" doc:"Filter by stage, ignoring case"`
	Status     string       `query:"status" doc:"Filter by status"`
}

type createTaskRequest struct {
	Store      *store.Store `depends:"store"`
	ScheduleID int64        `path:"schedule_id"`
	Payload    TaskCreate   `body:""`
}

type taskRequest struct {
	Store  *store.Store `depends:"store"`
	TaskID int64        `path:"task_id"`
}

type updateTaskRequest struct {
	Store   *store.Store `depends:"store"`
	TaskID  int64        `path:"task_id"`
	Payload TaskUpdate   `body:""`
}

type updateTaskStatusRequest struct {
	Store   *store.Store     `depends:"store"`
	TaskID  int64            `path:"task_id"`
	Payload TaskStatusUpdate `body:""`
}

func registerTasks(app *dispatch.App, schedules *dispatch.Group) {
	dispatch.Get(schedules, "/{schedule_id}/tasks", listTasks, dispatch.WithTags("tasks"), dispatch.WithSummary("List the tasks of a schedule"))
	dispatch.Post(schedules, "/{schedule_id}/tasks", createTask,
		dispatch.WithTags("tasks"),
		dispatch.WithStatus(http.StatusCreated),
		dispatch.WithSummary("Add a task to a schedule"))

	g := app.Group("/tasks", dispatch.WithGroupTags("tasks"))
	dispatch.Get(g, "/{task_id}", getTask, dispatch.WithSummary("Get a task"))
	dispatch.Put(g, "/{task_id}", updateTask, dispatch.WithSummary("Update a task"))
	dispatch.Patch(g, "/{task_id}/status", updateTaskStatus, dispatch.WithSummary("Change the status of a task"))
	dispatch.Delete(g, "/{task_id}", deleteTask, dispatch.WithSummary("Delete a task"))
}

func listTasks(ctx context.Context, req *listTasksRequest) (*[]store.Task, error) {
	if err := checkStatus(req.Status, store.TaskStatuses); err != nil {
		return nil, err
	}
	tasks, err := req.Store.ListTasks(ctx, req.ScheduleID, store.TaskFilter{Stage: req.Stage, Status: req.Status})
	if err != nil {
		return nil, storeError(err, ScheduleNotFound)
	}
	return &tasks, nil
}

func createTask(ctx context.Context, req *createTaskRequest) (*store.Task, error) {
	rec := req.Payload.Record
	t, err := req.Store.CreateTask(ctx, req.ScheduleID, store.NewTask{
		Name:      str(rec, "name"),
		Stage:     str(rec, "stage"),
		StartTime: str(rec, "start_time"),
		EndTime:   str(rec, "end_time"),
		Location:  optStr(rec.Get("location")),
		Status:    str(rec, "status"),
		Note:      optStr(rec.Get("note")),
	})
	if err != nil {
		return nil, storeError(err, ScheduleNotFound)
	}
	return &t, nil
}

func getTask(ctx context.Context, req *taskRequest) (*store.Task, error) {
	t, err := req.Store.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, storeError(err, TaskNotFound)
	}
	return &t, nil
}

func updateTask(ctx context.Context, req *updateTaskRequest) (*store.Task, error) {
	c, err := changes(taskUpdateSchema, req.Payload.ExplicitFields(), "name", "stage", "start_time", "end_time", "status")
	if err != nil {
		return nil, err
	}
	t, err := req.Store.UpdateTask(ctx, req.TaskID, c)
	if err != nil {
		return nil, storeError(err, TaskNotFound)
	}
	return &t, nil
}

func updateTaskStatus(ctx context.Context, req *updateTaskStatusRequest) (*store.Task, error) {
	t, err := req.Store.UpdateTaskStatus(ctx, req.TaskID, str(req.Payload.Record, "status"))
	if err != nil {
		return nil, storeError(err, TaskNotFound)
	}
	return &t, nil
}

func deleteTask(ctx context.Context, req *taskRequest) (*dispatch.Void, error) {
	if err := req.Store.DeleteTask(ctx, req.TaskID); err != nil {
		return nil, storeError(err, TaskNotFound)
	}
	return nil, nil
}
