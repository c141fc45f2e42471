package backend

import (
	"context"
	"net/http"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/store"
)

type listSchedulesRequest struct {
	Store *store.Store `depends:"store"`
}

type scheduleRequest struct {
	Store      *store.Store `depends:"store"`
	ScheduleID int64        `path:"schedule_id"`
}

type createScheduleRequest struct {
	Store   *store.Store   `depends:"store"`
	Payload ScheduleCreate `body:""`
}

type updateScheduleRequest struct {
	Store      *store.Store   `depends:"store"`
	ScheduleID int64          `path:"schedule_id"`
	Payload    ScheduleUpdate `body:""`
}

func registerSchedules(app *dispatch.App) {
	g := app.Group("/schedules", dispatch.WithGroupTags("schedules"))
	dispatch.Get(g, "", listSchedules, dispatch.WithSummary("List schedules"))
	dispatch.Post(g, "", createSchedule, dispatch.WithStatus(http.StatusCreated), dispatch.WithSummary("Create a schedule"))
	dispatch.Get(g, "/{schedule_id}", getSchedule, dispatch.WithSummary("Get a schedule"))
	dispatch.Put(g, "/{schedule_id}", updateSchedule, dispatch.WithSummary("Update a schedule"))
	dispatch.Delete(g, "/{schedule_id}", deleteSchedule,
		dispatch.WithSummary("Delete a schedule"),
		dispatch.WithDescription("Deleting a schedule also deletes its tasks."))

	registerTasks(app, g)
}

func listSchedules(ctx context.Context, req *listSchedulesRequest) (*[]store.Schedule, error) {
	schedules, err := req.Store.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return &schedules, nil
}

func getSchedule(ctx context.Context, req *scheduleRequest) (*store.Schedule, error) {
	s, err := req.Store.GetSchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, storeError(err, ScheduleNotFound)
	}
	return &s, nil
}

func createSchedule(ctx context.Context, req *createScheduleRequest) (*store.Schedule, error) {
	rec := req.Payload.Record
	s, err := req.Store.CreateSchedule(ctx, store.NewSchedule{
		Name:      str(rec, "name"),
		EventDate: str(rec, "event_date"),
		StartTime: str(rec, "start_time"),
		EndTime:   str(rec, "end_time"),
	})
	if err != nil {
		return nil, storeError(err, ScheduleNotFound)
	}
	return &s, nil
}

func updateSchedule(ctx context.Context, req *updateScheduleRequest) (*store.Schedule, error) {
	c, err := changes(scheduleUpdateSchema, req.Payload.ExplicitFields(), "name", "event_date", "start_time", "end_time")
	if err != nil {
		return nil, err
	}
	s, err := req.Store.UpdateSchedule(ctx, req.ScheduleID, c)
	if err != nil {
		return nil, storeError(err, ScheduleNotFound)
	}
	return &s, nil
}

func deleteSchedule(ctx context.Context, req *scheduleRequest) (*dispatch.Void, error) {
	if err := req.Store.DeleteSchedule(ctx, req.ScheduleID); err != nil {
		return nil, storeError(err, ScheduleNotFound)
	}
	return nil, nil
}
