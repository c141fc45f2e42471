package backend

import (
	"context"
	"net/http"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/store"
)

// Health is the body of a health check.
type Health struct {
	Status string `json:"status"`
}

type systemRequest struct {
	Store *store.Store `depends:"store"`
}

func registerSystem(app *dispatch.App) {
	g := app.Group("", dispatch.WithGroupTags("system"))
	dispatch.Get(g, "/health", health, dispatch.WithSummary("Check the database connection"))
	dispatch.Post(g, "/reset", reset,
		dispatch.WithSummary("Delete all data"),
		dispatch.WithDescription("Clears every table and restarts id sequences."))
	dispatch.Get(g, "/routes", func(context.Context, *dispatch.Void) (*dispatch.Doc, error) {
		doc := app.Doc()
		return &doc, nil
	}, dispatch.WithSummary("Describe the registered routes"))
}

func health(ctx context.Context, req *systemRequest) (*Health, error) {
	if err := req.Store.Ping(ctx); err != nil {
		return nil, dispatch.Error(http.StatusServiceUnavailable, "database unavailable")
	}
	return &Health{Status: "ok"}, nil
}

func reset(ctx context.Context, req *systemRequest) (*dispatch.Void, error) {
	if err := req.Store.Reset(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}
