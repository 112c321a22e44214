package design

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGStore implements Store using Postgres.
type PGStore struct {
	DB *sql.DB
}

// LoadAssignment implements Store.
func (s *PGStore) LoadAssignment(ctx context.Context, userID string) (Assignment, error) {
	const query = `
SELECT user_id, template_id, customization_id, previous_customization_id, revision, updated_at
FROM design_assignments
WHERE user_id = $1`
	var a Assignment
	var current, previous sql.NullString
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&a.UserID,
		&a.TemplateID,
		&current,
		&previous,
		&a.Revision,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewAssignment(userID), nil
		}
		return Assignment{}, err
	}
	if current.Valid {
		a.CustomizationID = &current.String
	}
	if previous.Valid {
		a.PreviousCustomizationID = &previous.String
	}
	return a, nil
}

// SaveAssignment implements Store. Revision 0 inserts; anything else is a
// compare-and-swap update.
func (s *PGStore) SaveAssignment(ctx context.Context, a Assignment, expectedRevision int64) error {
	const insert = `
INSERT INTO design_assignments (user_id, template_id, customization_id, previous_customization_id, revision, updated_at)
VALUES ($1, $2, $3, $4, 1, $5)
ON CONFLICT (user_id) DO NOTHING`
	const update = `
UPDATE design_assignments
SET template_id = $2, customization_id = $3, previous_customization_id = $4, revision = revision + 1, updated_at = $5
WHERE user_id = $1 AND revision = $6`

	var (
		res sql.Result
		err error
	)
	if expectedRevision == 0 {
		res, err = s.DB.ExecContext(ctx, insert, a.UserID, a.TemplateID, nullString(a.CustomizationID), nullString(a.PreviousCustomizationID), a.UpdatedAt)
	} else {
		res, err = s.DB.ExecContext(ctx, update, a.UserID, a.TemplateID, nullString(a.CustomizationID), nullString(a.PreviousCustomizationID), a.UpdatedAt, expectedRevision)
	}
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConflict
	}
	return nil
}

// CreateCustomization implements Store.
func (s *PGStore) CreateCustomization(ctx context.Context, c Customization) error {
	const query = `
INSERT INTO design_customizations (id, user_id, template_id, colors, created_at)
VALUES ($1, $2, $3, $4, $5)`
	colors, err := json.Marshal(c.Colors)
	if err != nil {
		return fmt.Errorf("encode colors: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, query, c.ID, c.UserID, c.TemplateID, colors, c.CreatedAt)
	return err
}

// GetCustomization implements Store.
func (s *PGStore) GetCustomization(ctx context.Context, id string) (Customization, error) {
	const query = `
SELECT id, user_id, template_id, colors, created_at
FROM design_customizations
WHERE id = $1`
	var c Customization
	var colors []byte
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.TemplateID, &colors, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Customization{}, ErrNotFound
		}
		return Customization{}, err
	}
	if err := json.Unmarshal(colors, &c.Colors); err != nil {
		return Customization{}, fmt.Errorf("decode colors: %w", err)
	}
	return c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
