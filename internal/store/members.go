package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Contact is a member's contact information.
type Contact struct {
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Note  *string `json:"note"`
}

// Member is a festival staff member.
type Member struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Part     string  `json:"part"`
	Position string  `json:"position"`
	Contact  Contact `json:"contact"`
}

// NewMember holds the fields of a member to create.
type NewMember struct {
	Name     string
	Part     string
	Position string
	Contact  Contact
}

const memberColumns = "id, name, part, position, contact_phone, contact_email, contact_note"

var memberFields = map[string]string{
	"name":     "name",
	"part":     "part",
	"position": "position",
	"phone":    "contact_phone",
	"email":    "contact_email",
	"note":     "contact_note",
}

// ListMembers returns members ordered by id. A non-empty part filters
// case-insensitively.
func (s *Store) ListMembers(ctx context.Context, part string) ([]Member, error) {
	query := "SELECT " + memberColumns + " FROM members"
	var args []any
	if part != "" {
		query += " WHERE lower(part) = lower(?)"
		args = append(args, part)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMember returns the member with id or ErrNotFound.
func (s *Store) GetMember(ctx context.Context, id int64) (Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE id = ?", id)
	m, err := scanMember(row)
	if err != nil {
		return Member{}, notFound(err)
	}
	return m, nil
}

// CreateMember inserts a member and returns it with its id.
func (s *Store) CreateMember(ctx context.Context, in NewMember) (Member, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO members (name, part, position, contact_phone, contact_email, contact_note) VALUES (?, ?, ?, ?, ?, ?)",
		in.Name, in.Part, in.Position,
		nullString(in.Contact.Phone), nullString(in.Contact.Email), nullString(in.Contact.Note),
	)
	if err != nil {
		return Member{}, fmt.Errorf("create member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Member{}, fmt.Errorf("create member: %w", err)
	}
	return Member{ID: id, Name: in.Name, Part: in.Part, Position: in.Position, Contact: in.Contact}, nil
}

// UpdateMember applies changes and returns the updated member. Changes may
// carry "contact" as a Contact, which replaces all contact columns. Empty
// changes return the member unchanged.
func (s *Store) UpdateMember(ctx context.Context, id int64, c Changes) (Member, error) {
	if len(c) == 0 {
		return s.GetMember(ctx, id)
	}

	flat := make(Changes, len(c)+2)
	for k, v := range c {
		if k != "contact" {
			flat[k] = v
			continue
		}
		contact, ok := v.(Contact)
		if !ok {
			return Member{}, fmt.Errorf("update members: contact must be a Contact, got %T", v)
		}
		flat["phone"] = nullString(contact.Phone)
		flat["email"] = nullString(contact.Email)
		flat["note"] = nullString(contact.Note)
	}

	if err := update(ctx, s.db, "members", id, memberFields, flat); err != nil {
		return Member{}, err
	}
	return s.GetMember(ctx, id)
}

// DeleteMember removes a member. Todos assigned to it become unassigned.
func (s *Store) DeleteMember(ctx context.Context, id int64) error {
	return remove(ctx, s.db, "members", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(sc scanner) (Member, error) {
	var m Member
	var phone, email, note sql.NullString
	if err := sc.Scan(&m.ID, &m.Name, &m.Part, &m.Position, &phone, &email, &note); err != nil {
		return Member{}, err
	}
	m.Contact = Contact{Phone: stringPtr(phone), Email: stringPtr(email), Note: stringPtr(note)}
	return m, nil
}
