package backend

import (
	"context"
	"net/http"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/store"
	"github.com/bjaus/dispatch/model"
)

type listMembersRequest struct {
	Store *store.Store `depends:"store"`
	Part  string       `query:"part" doc:"Filter by part, ignoring case"`
}

type memberRequest struct {
	Store    *store.Store `depends:"store"`
	MemberID int64        `path:"member_id"`
}

type createMemberRequest struct {
	Store   *store.Store `depends:"store"`
	Payload MemberCreate `body:""`
}

type updateMemberRequest struct {
	Store    *store.Store `depends:"store"`
	MemberID int64        `path:"member_id"`
	Payload  MemberUpdate `body:""`
}

func registerMembers(g *dispatch.Group) {
	dispatch.Get(g, "", listMembers, dispatch.WithSummary("List members"))
	dispatch.Post(g, "", createMember, dispatch.WithStatus(http.StatusCreated), dispatch.WithSummary("Create a member"))
	dispatch.Get(g, "/{member_id}", getMember, dispatch.WithSummary("Get a member"))
	dispatch.Put(g, "/{member_id}", updateMember, dispatch.WithSummary("Update a member"))
	dispatch.Delete(g, "/{member_id}", deleteMember, dispatch.WithSummary("Delete a member"))
}

func listMembers(ctx context.Context, req *listMembersRequest) (*[]store.Member, error) {
	members, err := req.Store.ListMembers(ctx, req.Part)
	if err != nil {
		return nil, err
	}
	return &members, nil
}

func getMember(ctx context.Context, req *memberRequest) (*store.Member, error) {
	m, err := req.Store.GetMember(ctx, req.MemberID)
	if err != nil {
		return nil, storeError(err, MemberNotFound)
	}
	return &m, nil
}

func createMember(ctx context.Context, req *createMemberRequest) (*store.Member, error) {
	rec := req.Payload.Record
	m, err := req.Store.CreateMember(ctx, store.NewMember{
		Name:     str(rec, "name"),
		Part:     str(rec, "part"),
		Position: str(rec, "position"),
		Contact:  contactFrom(rec.Get("contact")),
	})
	if err != nil {
		return nil, storeError(err, MemberNotFound)
	}
	return &m, nil
}

func updateMember(ctx context.Context, req *updateMemberRequest) (*store.Member, error) {
	c, err := changes(memberUpdateSchema, req.Payload.ExplicitFields(), "name", "part", "position")
	if err != nil {
		return nil, err
	}
	// A supplied contact replaces the stored one; a null contact leaves it.
	if v, ok := c["contact"]; ok {
		if v == nil {
			delete(c, "contact")
		} else {
			c["contact"] = contactFrom(v)
		}
	}

	m, err := req.Store.UpdateMember(ctx, req.MemberID, c)
	if err != nil {
		return nil, storeError(err, MemberNotFound)
	}
	return &m, nil
}

func deleteMember(ctx context.Context, req *memberRequest) (*dispatch.Void, error) {
	if err := req.Store.DeleteMember(ctx, req.MemberID); err != nil {
		return nil, storeError(err, MemberNotFound)
	}
	return nil, nil
}

// contactFrom reads a contact from a nested record or a map of its fields.
func contactFrom(v any) store.Contact {
	var m map[string]any
	switch c := v.(type) {
	case *model.Record:
		m = c.ToMap()
	case map[string]any:
		m = c
	default:
		return store.Contact{}
	}
	return store.Contact{
		Phone: optStr(m["phone"]),
		Email: optStr(m["email"]),
		Note:  optStr(m["note"]),
	}
}
