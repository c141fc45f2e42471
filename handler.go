package dispatch

import "context"

// Void is used as a type parameter when a request has no parameters or a
// handler has no result (results in 204 No Content).
type Void struct{}

// Handler is the typed handler signature. The engine fills *Req from the
// dispatched request and serializes *Resp; handlers never see the transport.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
