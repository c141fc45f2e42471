package backend

import (
	"context"
	"net/http"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/store"
	"github.com/bjaus/dispatch/model"
)

type listMaterialsRequest struct {
	Store *store.Store `depends:"store"`
	Part  string       `query:"part" doc:"Filter by part, ignoring case"`
}

type materialRequest struct {
	Store      *store.Store `depends:"store"`
	MaterialID int64        `path:"material_id"`
}

type createMaterialRequest struct {
	Store   *store.Store   `depends:"store"`
	Payload MaterialCreate `body:""`
}

type updateMaterialRequest struct {
	Store      *store.Store   `depends:"store"`
	MaterialID int64          `path:"material_id"`
	Payload    MaterialUpdate `body:""`
}

func registerMaterials(g *dispatch.Group) {
	dispatch.Get(g, "", listMaterials, dispatch.WithSummary("List materials"))
	dispatch.Post(g, "", createMaterial, dispatch.WithStatus(http.StatusCreated), dispatch.WithSummary("Create a material"))
	dispatch.Get(g, "/{material_id}", getMaterial, dispatch.WithSummary("Get a material"))
	dispatch.Put(g, "/{material_id}", updateMaterial, dispatch.WithSummary("Update a material"))
	dispatch.Delete(g, "/{material_id}", deleteMaterial, dispatch.WithSummary("Delete a material"))
}

func listMaterials(ctx context.Context, req *listMaterialsRequest) (*[]store.Material, error) {
	materials, err := req.Store.ListMaterials(ctx, req.Part)
	if err != nil {
		return nil, err
	}
	return &materials, nil
}

func getMaterial(ctx context.Context, req *materialRequest) (*store.Material, error) {
	m, err := req.Store.GetMaterial(ctx, req.MaterialID)
	if err != nil {
		return nil, storeError(err, MaterialNotFound)
	}
	return &m, nil
}

func createMaterial(ctx context.Context, req *createMaterialRequest) (*store.Material, error) {
	rec := req.Payload.Record
	quantity, _ := model.Value[int64](rec, "quantity")
	m, err := req.Store.CreateMaterial(ctx, store.NewMaterial{
		Name:     str(rec, "name"),
		Part:     str(rec, "part"),
		Quantity: quantity,
	})
	if err != nil {
		return nil, storeError(err, MaterialNotFound)
	}
	return &m, nil
}

func updateMaterial(ctx context.Context, req *updateMaterialRequest) (*store.Material, error) {
	c, err := changes(materialUpdateSchema, req.Payload.ExplicitFields(), "name", "part", "quantity")
	if err != nil {
		return nil, err
	}
	m, err := req.Store.UpdateMaterial(ctx, req.MaterialID, c)
	if err != nil {
		return nil, storeError(err, MaterialNotFound)
	}
	return &m, nil
}

func deleteMaterial(ctx context.Context, req *materialRequest) (*dispatch.Void, error) {
	if err := req.Store.DeleteMaterial(ctx, req.MaterialID); err != nil {
		return nil, storeError(err, MaterialNotFound)
	}
	return nil, nil
}
