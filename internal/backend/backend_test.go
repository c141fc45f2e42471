package backend_test

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/dispatchtest"
	"github.com/bjaus/dispatch/internal/backend"
	"github.com/bjaus/dispatch/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "eventcompass.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func newClient(t *testing.T) (*dispatch.App, *dispatchtest.Client) {
	t.Helper()
	app := backend.New(openStore(t))
	return app, dispatchtest.NewClient(t, app)
}

type body = map[string]any

func seedMaterials(t *testing.T, c *dispatchtest.Client) {
	t.Helper()
	for _, m := range []body{
		{"name": "Cones", "part": "Course", "quantity": 20},
		{"name": "Cable", "part": "Stage", "quantity": 3},
	} {
		resp := dispatchtest.Post[body, store.Material](t, c, "/materials", &m)
		require.Equal(t, http.StatusCreated, resp.Status)
	}
}

func TestMaterials_put_empty_body_leaves_record(t *testing.T) {
	t.Parallel()

	_, c := newClient(t)
	seedMaterials(t, c)

	before := dispatchtest.Get[store.Material](t, c, "/materials/2")
	require.Equal(t, http.StatusOK, before.Status)

	resp := dispatchtest.Put[body, store.Material](t, c, "/materials/2", &body{})
	require.NoError(t, resp.Err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.NotNil(t, resp.Body)
	assert.Equal(t, *before.Body, *resp.Body)
}

func TestMaterials_delete_missing(t *testing.T) {
	t.Parallel()

	_, c := newClient(t)

	resp := dispatchtest.Delete[body](t, c, "/materials/999")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "Material not found", resp.Detail())
}

func TestMaterials_partial_update(t *testing.T) {
	t.Parallel()

	_, c := newClient(t)
	seedMaterials(t, c)

	resp := dispatchtest.Put[body, store.Material](t, c, "/materials/1", &body{"quantity": 4})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, store.Material{ID: 1, Name: "Cones", Part: "Course", Quantity: 4}, *resp.Body)

	tests := map[string]struct {
		payload    body
		wantStatus int
	}{
		"negative quantity": {payload: body{"quantity": -1}, wantStatus: http.StatusUnprocessableEntity},
		"null name":         {payload: body{"name": nil}, wantStatus: http.StatusUnprocessableEntity},
		"wrong type":        {payload: body{"quantity": "many"}, wantStatus: http.StatusUnprocessableEntity},
		"undeclared field":  {payload: body{"color": "orange"}, wantStatus: http.StatusOK},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			resp := dispatchtest.Put[body, store.Material](t, c, "/materials/1", &tc.payload)
			require.NoError(t, resp.Err)
			assert.Equal(t, tc.wantStatus, resp.Status)
		})
	}
}

func TestMaterials_filter_by_part(t *testing.T) {
	t.Parallel()

	_, c := newClient(t)
	seedMaterials(t, c)

	resp := dispatchtest.Get[[]store.Material](t, c, "/materials?part=STAGE")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Len(t, *resp.Body, 1)
	assert.Equal(t, "Cable", (*resp.Body)[0].Name)
}

func TestMembers(t *testing.T) {
	t.Parallel()

	_, c := newClient(t)

	created := dispatchtest.Post[body, store.Member](t, c, "/members", &body{
		"name": "Aoi", "part": "Stage", "position": "Lead",
	})
	require.Equal(t, http.StatusCreated, created.Status)
	assert.Equal(t, int64(1), created.Body.ID)
	assert.Equal(t, store.Contact{}, created.Body.Contact)

	t.Run("contact replaced on update", func(t *testing.T) {
		resp := dispatchtest.Put[body, store.Member](t, c, "/members/1", &body{
			"contact": body{"email": "aoi@example.com"},
		})
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "Aoi", resp.Body.Name)
		require.NotNil(t, resp.Body.Contact.Email)
		assert.Equal(t, "aoi@example.com", *resp.Body.Contact.Email)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := dispatchtest.Post[body, body](t, c, "/members", &body{"name": "Ren"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
		assert.NotEmpty(t, resp.Detail())
	})

	t.Run("list by part", func(t *testing.T) {
		resp := dispatchtest.Get[[]store.Member](t, c, "/members?part=stage")
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Len(t, *resp.Body, 1)
	})

	t.Run("delete then get", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, dispatchtest.Delete[body](t, c, "/members/1").Status)
		resp := dispatchtest.Get[body](t, c, "/members/1")
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, backend.MemberNotFound, resp.Detail())
	})
}

func TestSchedulesAndTasks(t *testing.T) {
	t.Parallel()

	_, c := newClient(t)

	sched := dispatchtest.Post[body, store.Schedule](t, c, "/schedules", &body{"name": "Day 1", "event_date": "2023-10-01"})
	require.Equal(t, http.StatusCreated, sched.Status)
	assert.Equal(t, "2023-10-01T00:00:00", sched.Body.StartTime)
	assert.Equal(t, "2023-10-01T23:59:59", sched.Body.EndTime)

	inverted := dispatchtest.Post[body, body](t, c, "/schedules", &body{
		"name": "Bad", "event_date": "2023-10-01",
		"start_time": "2023-10-01T10:00:00", "end_time": "2023-10-01T09:00:00",
	})
	assert.Equal(t, http.StatusBadRequest, inverted.Status)
	assert.Equal(t, "start_time must be before end_time", inverted.Detail())

	tasksPath := "/schedules/1/tasks"
	for _, tk := range []body{
		{"name": "Load-in", "stage": "Preparation", "start_time": "2023-10-01T06:00:00", "end_time": "2023-10-01T07:00:00"},
		{"name": "Course", "stage": "Course", "status": "in_progress", "start_time": "2023-10-01T07:00:00", "end_time": "2023-10-01T09:00:00"},
		{"name": "Teardown", "stage": "Preparation", "status": "completed", "start_time": "2023-10-01T09:00:00", "end_time": "2023-10-01T10:00:00"},
	} {
		resp := dispatchtest.Post[body, store.Task](t, c, tasksPath, &tk)
		require.Equal(t, http.StatusCreated, resp.Status)
	}

	tests := map[string]struct {
		query      string
		wantStatus int
		wantLen    int
	}{
		"all":              {wantStatus: http.StatusOK, wantLen: 3},
		"stage":            {query: "?stage=Preparation", wantStatus: http.StatusOK, wantLen: 2},
		"status":           {query: "?status=completed", wantStatus: http.StatusOK, wantLen: 1},
		"stage and status": {query: "?stage=preparation&status=completed", wantStatus: http.StatusOK, wantLen: 1},
		"bad status":       {query: "?status=archived", wantStatus: http.StatusUnprocessableEntity},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			resp := dispatchtest.Get[[]store.Task](t, c, tasksPath+tc.query)
			require.Equal(t, tc.wantStatus, resp.Status)
			if tc.wantStatus == http.StatusOK {
				assert.Len(t, *resp.Body, tc.wantLen)
			}
		})
	}

	t.Run("task lifecycle", func(t *testing.T) {
		first := dispatchtest.Get[store.Task](t, c, "/tasks/1")
		require.Equal(t, http.StatusOK, first.Status)
		assert.Equal(t, store.TaskPlanned, first.Body.Status)

		updated := dispatchtest.Put[body, store.Task](t, c, "/tasks/1", &body{"stage": "Logistics", "note": "check twice"})
		require.Equal(t, http.StatusOK, updated.Status)
		assert.Equal(t, "Logistics", updated.Body.Stage)
		assert.Equal(t, "check twice", *updated.Body.Note)

		patched := dispatchtest.Patch[body, store.Task](t, c, "/tasks/1/status", &body{"status": "completed"})
		require.Equal(t, http.StatusOK, patched.Status)
		assert.Equal(t, store.TaskCompleted, patched.Body.Status)

		bad := dispatchtest.Patch[body, body](t, c, "/tasks/1/status", &body{"status": "archived"})
		assert.Equal(t, http.StatusUnprocessableEntity, bad.Status)
	})

	t.Run("deleting the schedule removes its tasks", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, dispatchtest.Delete[body](t, c, "/schedules/1").Status)

		tasks := dispatchtest.Get[body](t, c, tasksPath)
		assert.Equal(t, http.StatusNotFound, tasks.Status)
		assert.Equal(t, backend.ScheduleNotFound, tasks.Detail())

		task := dispatchtest.Get[body](t, c, "/tasks/2")
		assert.Equal(t, backend.TaskNotFound, task.Detail())
	})
}

func TestTodos(t *testing.T) {
	t.Parallel()

	_, c := newClient(t)
	dispatchtest.Post[body, store.Member](t, c, "/members", &body{"name": "Aoi", "part": "Stage", "position": "Lead"})
	dispatchtest.Post[body, store.Member](t, c, "/members", &body{"name": "Ren", "part": "Stage", "position": "Staff"})

	first := dispatchtest.Post[body, store.Todo](t, c, "/todos", &body{
		"title": "Print handouts", "description": nil, "due_date": "2025-01-02", "status": "pending", "assignee_id": 2,
	})
	require.Equal(t, http.StatusCreated, first.Status)
	second := dispatchtest.Post[body, store.Todo](t, c, "/todos", &body{
		"title": "Booth setup", "due_date": "2025-01-01", "assignee_id": 1,
	})
	require.Equal(t, http.StatusCreated, second.Status)
	assert.Equal(t, store.TodoPending, second.Body.Status)

	list := dispatchtest.Get[[]store.Todo](t, c, "/todos")
	require.Equal(t, http.StatusOK, list.Status)
	require.Len(t, *list.Body, 2)
	assert.Equal(t, second.Body.ID, (*list.Body)[0].ID)
	assert.Equal(t, first.Body.ID, (*list.Body)[1].ID)

	t.Run("unknown assignee", func(t *testing.T) {
		resp := dispatchtest.Post[body, body](t, c, "/todos", &body{"title": "Signs", "assignee_id": 999})
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, "assignee_id must reference an existing member", resp.Detail())
	})

	t.Run("null assignee clears it", func(t *testing.T) {
		resp := dispatchtest.Put[body, store.Todo](t, c, "/todos/1", &body{
			"status": "completed", "due_date": "2025-01-03", "assignee_id": nil,
		})
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, store.TodoCompleted, resp.Body.Status)
		assert.Equal(t, "2025-01-03", *resp.Body.DueDate)
		assert.Nil(t, resp.Body.AssigneeID)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, dispatchtest.Delete[body](t, c, "/todos/2").Status)
		resp := dispatchtest.Get[body](t, c, "/todos/2")
		assert.Equal(t, backend.TodoNotFound, resp.Detail())
	})
}

func TestSystem(t *testing.T) {
	t.Parallel()

	app, c := newClient(t)
	seedMaterials(t, c)

	health := dispatchtest.Get[backend.Health](t, c, "/health")
	require.Equal(t, http.StatusOK, health.Status)
	assert.Equal(t, "ok", health.Body.Status)

	routes := dispatchtest.Get[dispatch.Doc](t, c, "/routes")
	require.Equal(t, http.StatusOK, routes.Status)
	assert.Equal(t, backend.Title, routes.Body.Title)
	assert.Len(t, routes.Body.Routes, len(app.Routes()))

	reset := dispatchtest.Post[body, dispatch.Void](t, c, "/reset", nil)
	assert.Equal(t, http.StatusNoContent, reset.Status)

	list := dispatchtest.Get[[]store.Material](t, c, "/materials")
	assert.Empty(t, *list.Body)
}

func TestStoreOverride(t *testing.T) {
	t.Parallel()

	app, c := newClient(t)
	seedMaterials(t, c)

	other := openStore(t)
	restore := dispatch.OverrideValue(app, backend.StoreKey, other)
	defer restore()

	list := dispatchtest.Get[[]store.Material](t, c, "/materials")
	require.Equal(t, http.StatusOK, list.Status)
	assert.Empty(t, *list.Body)

	app.ClearOverrides()

	list = dispatchtest.Get[[]store.Material](t, c, "/materials")
	assert.Len(t, *list.Body, 2)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	app, _ := newClient(t)
	require.NoError(t, app.Validate())

	for _, r := range app.Routes() {
		assert.True(t, strings.HasPrefix(r.Path, "/"), r.Path)
		assert.NotEmpty(t, r.Tags, "%s %s", r.Method, r.Path)
	}
}

func TestServeHTTP(t *testing.T) {
	t.Parallel()

	srv := dispatchtest.NewServer(t, backend.New(openStore(t)), dispatch.RequestID())

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+"/materials",
		strings.NewReader(`{"name":"Cones","part":"Course","quantity":2}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
