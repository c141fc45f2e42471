// Package backend serves the EventCompass data API: members, materials,
// schedules with their tasks, and todos, persisted in a store.Store.
package backend

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/store"
	"github.com/bjaus/dispatch/model"
)

// Title and Version describe the application.
const (
	Title   = "EventCompass Backend"
	Version = "1.0.0"
)

// Details of not-found responses.
const (
	MemberNotFound   = "Member not found"
	MaterialNotFound = "Material not found"
	ScheduleNotFound = "Schedule not found"
	TaskNotFound     = "Task not found"
	TodoNotFound     = "Todo not found"
)

// StoreKey is the dependency every route resolves its store from.
var StoreKey = dispatch.NewKey[*store.Store]("store")

// New builds the application on st. opts are applied after the title and
// version, so they may override them.
func New(st *store.Store, opts ...dispatch.AppOption) *dispatch.App {
	app := dispatch.New(append([]dispatch.AppOption{
		dispatch.WithTitle(Title),
		dispatch.WithVersion(Version),
	}, opts...)...)

	dispatch.ProvideValue(app, StoreKey, st)

	registerSystem(app)
	registerMembers(app.Group("/members", dispatch.WithGroupTags("members")))
	registerMaterials(app.Group("/materials", dispatch.WithGroupTags("materials")))
	registerSchedules(app)
	registerTodos(app.Group("/todos", dispatch.WithGroupTags("todos")))
	return app
}

// storeError converts store failures into domain errors. Other errors pass
// through and fail the dispatch.
func storeError(err error, notFound string) error {
	var ve *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return dispatch.NotFound(notFound)
	case errors.As(err, &ve):
		return dispatch.BadRequest(ve.Msg)
	}
	return err
}

// changes converts the explicitly set fields of an update record into store
// changes. Names the schema does not declare are ignored. Fields named in
// required may not be cleared with null.
func changes(schema *model.Schema, explicit map[string]any, required ...string) (store.Changes, error) {
	out := make(store.Changes, len(explicit))
	for name, v := range explicit {
		if _, ok := schema.Field(name); !ok {
			continue
		}
		if v == nil && slices.Contains(required, name) {
			return nil, dispatch.Error(http.StatusUnprocessableEntity, []model.FieldError{
				{Field: name, Message: "must not be null"},
			})
		}
		out[name] = v
	}
	return out, nil
}

func str(r *model.Record, name string) string {
	v, _ := model.Value[string](r, name)
	return v
}

func optStr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func optInt(v any) *int64 {
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	return &n
}

func checkStatus(status string, allowed []string) error {
	if status != "" && !slices.Contains(allowed, status) {
		return dispatch.Error(http.StatusUnprocessableEntity, []model.FieldError{
			{Field: "status", Message: fmt.Sprintf("must be one of %v", allowed)},
		})
	}
	return nil
}
