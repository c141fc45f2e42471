package store

import (
	"context"
	"fmt"
)

// Material is equipment or supplies used by a part.
type Material struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Part     string `json:"part"`
	Quantity int64  `json:"quantity"`
}

// NewMaterial holds the fields of a material to create.
type NewMaterial struct {
	Name     string
	Part     string
	Quantity int64
}

var materialFields = map[string]string{
	"name":     "name",
	"part":     "part",
	"quantity": "quantity",
}

// ListMaterials returns materials ordered by id. A non-empty part filters
// case-insensitively.
func (s *Store) ListMaterials(ctx context.Context, part string) ([]Material, error) {
	query := "SELECT id, name, part, quantity FROM materials"
	var args []any
	if part != "" {
		query += " WHERE lower(part) = lower(?)"
		args = append(args, part)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Part, &m.Quantity); err != nil {
			return nil, fmt.Errorf("list materials: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMaterial returns the material with id or ErrNotFound.
func (s *Store) GetMaterial(ctx context.Context, id int64) (Material, error) {
	var m Material
	err := s.db.QueryRowContext(ctx, "SELECT id, name, part, quantity FROM materials WHERE id = ?", id).
		Scan(&m.ID, &m.Name, &m.Part, &m.Quantity)
	if err != nil {
		return Material{}, notFound(err)
	}
	return m, nil
}

// CreateMaterial inserts a material and returns it with its id.
func (s *Store) CreateMaterial(ctx context.Context, in NewMaterial) (Material, error) {
	if in.Quantity < 0 {
		return Material{}, &ValidationError{Msg: "quantity must not be negative"}
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO materials (name, part, quantity) VALUES (?, ?, ?)",
		in.Name, in.Part, in.Quantity,
	)
	if err != nil {
		return Material{}, fmt.Errorf("create material: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Material{}, fmt.Errorf("create material: %w", err)
	}
	return Material{ID: id, Name: in.Name, Part: in.Part, Quantity: in.Quantity}, nil
}

// UpdateMaterial applies changes and returns the updated material. Empty
// changes return the material unchanged.
func (s *Store) UpdateMaterial(ctx context.Context, id int64, c Changes) (Material, error) {
	if len(c) == 0 {
		return s.GetMaterial(ctx, id)
	}
	if q, ok := c["quantity"].(int64); ok && q < 0 {
		return Material{}, &ValidationError{Msg: "quantity must not be negative"}
	}
	if err := update(ctx, s.db, "materials", id, materialFields, c); err != nil {
		return Material{}, err
	}
	return s.GetMaterial(ctx, id)
}

// DeleteMaterial removes a material.
func (s *Store) DeleteMaterial(ctx context.Context, id int64) error {
	return remove(ctx, s.db, "materials", id)
}
