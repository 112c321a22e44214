package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGStore implements Store using Postgres. Commit runs in one transaction.
type PGStore struct {
	DB *sql.DB
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppendVersion implements VersionStore.
func (s *PGStore) AppendVersion(ctx context.Context, v Version) error {
	return insertVersion(ctx, s.DB, v)
}

func insertVersion(ctx context.Context, db execer, v Version) error {
	const query = `
INSERT INTO resume_versions (id, user_id, previous_version_id, document, change_summary, scoring_version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	doc, err := json.Marshal(v.Document)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	var previous sql.NullString
	if v.PreviousVersionID != nil {
		previous = sql.NullString{String: *v.PreviousVersionID, Valid: true}
	}
	_, err = db.ExecContext(ctx, query, v.ID, v.UserID, previous, doc, v.ChangeSummary, v.ScoringVersion, v.CreatedAt)
	return err
}

func insertEntry(ctx context.Context, db execer, userID string, e Entry) error {
	const query = `
INSERT INTO history_entries (id, user_id, version_id, ats_score, artifacts, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	artifacts, err := json.Marshal(nonNilArtifacts(e.Artifacts))
	if err != nil {
		return fmt.Errorf("encode artifacts: %w", err)
	}
	_, err = db.ExecContext(ctx, query, e.ID, userID, e.VersionID, e.ATSScore, artifacts, e.CreatedAt)
	return err
}

// GetVersion implements VersionStore.
func (s *PGStore) GetVersion(ctx context.Context, id string) (Version, error) {
	const query = `
SELECT id, user_id, previous_version_id, document, change_summary, scoring_version, created_at
FROM resume_versions
WHERE id = $1`
	v, err := scanVersion(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, err
	}
	return v, nil
}

// ListVersions implements VersionStore, oldest first.
func (s *PGStore) ListVersions(ctx context.Context, userID string) ([]Version, error) {
	const query = `
SELECT id, user_id, previous_version_id, document, change_summary, scoring_version, created_at
FROM resume_versions
WHERE user_id = $1
ORDER BY created_at ASC, id ASC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(row scanner) (Version, error) {
	var v Version
	var previous sql.NullString
	var doc []byte
	if err := row.Scan(&v.ID, &v.UserID, &previous, &doc, &v.ChangeSummary, &v.ScoringVersion, &v.CreatedAt); err != nil {
		return Version{}, err
	}
	if previous.Valid {
		v.PreviousVersionID = &previous.String
	}
	if err := json.Unmarshal(doc, &v.Document); err != nil {
		return Version{}, fmt.Errorf("decode document: %w", err)
	}
	return v, nil
}

// LoadStack implements StackStore.
func (s *PGStore) LoadStack(ctx context.Context, userID string) (Stack, error) {
	const query = `
SELECT state, revision
FROM history_stacks
WHERE user_id = $1`
	var state []byte
	var revision int64
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&state, &revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stack{UserID: userID}, nil
		}
		return Stack{}, err
	}
	var st Stack
	if err := json.Unmarshal(state, &st); err != nil {
		return Stack{}, fmt.Errorf("decode stack: %w", err)
	}
	st.UserID = userID
	st.Revision = revision
	return st, nil
}

// SaveStack implements StackStore.
func (s *PGStore) SaveStack(ctx context.Context, st Stack, expectedRevision int64) error {
	return saveStack(ctx, s.DB, st, expectedRevision)
}

func saveStack(ctx context.Context, db execer, st Stack, expectedRevision int64) error {
	const insert = `
INSERT INTO history_stacks (user_id, state, revision, updated_at)
VALUES ($1, $2, 1, $3)
ON CONFLICT (user_id) DO NOTHING`
	const update = `
UPDATE history_stacks
SET state = $2, revision = revision + 1, updated_at = $3
WHERE user_id = $1 AND revision = $4`

	state, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode stack: %w", err)
	}
	now := time.Now().UTC()
	var res sql.Result
	if expectedRevision == 0 {
		res, err = db.ExecContext(ctx, insert, st.UserID, state, now)
	} else {
		res, err = db.ExecContext(ctx, update, st.UserID, state, now, expectedRevision)
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

// Commit implements Committer. The stack CAS runs last so a lost race rolls
// back the version and entry inserts.
func (s *PGStore) Commit(ctx context.Context, v Version, e Entry, st Stack, expectedRevision int64) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertVersion(ctx, tx, v); err != nil {
		return err
	}
	if err = insertEntry(ctx, tx, v.UserID, e); err != nil {
		return err
	}
	if err = saveStack(ctx, tx, st, expectedRevision); err != nil {
		return err
	}
	return tx.Commit()
}

// ListEntries implements Committer, oldest first.
func (s *PGStore) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	const query = `
SELECT id, version_id, ats_score, artifacts, created_at
FROM history_entries
WHERE user_id = $1
ORDER BY created_at ASC, id ASC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var artifacts []byte
		if err := rows.Scan(&e.ID, &e.VersionID, &e.ATSScore, &artifacts, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(artifacts) > 0 {
			if err := json.Unmarshal(artifacts, &e.Artifacts); err != nil {
				return nil, fmt.Errorf("decode artifacts: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nonNilArtifacts(a map[string]any) map[string]any {
	if a == nil {
		return map[string]any{}
	}
	return a
}
