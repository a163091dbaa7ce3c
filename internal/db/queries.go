package db

import (
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/session"
)

// Insert stores a new session row.
func Insert(db *sql.DB, s *session.Session) error {
	record, err := json.Marshal(&s.Record)
	if err != nil {
		return errors.NewInternal(err)
	}

	title := toNullString(s.Title)

	query := `
		INSERT INTO sessions (id, title, record, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := db.Exec(query, s.ID, title, string(record), s.CreatedAt, s.UpdatedAt); err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// Get retrieves a session by ID. The record is materialized before
// return, so rows written by an older schema are safe to mutate.
func Get(db *sql.DB, id string) (*session.Session, error) {
	row := db.QueryRow(`SELECT id, title, record, created_at, updated_at FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// GetForUpdate retrieves a session inside a transaction for a
// read-modify-write cycle.
func GetForUpdate(tx *sql.Tx, id string) (*session.Session, error) {
	row := tx.QueryRow(`SELECT id, title, record, created_at, updated_at FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// SaveRecord writes a session record inside a transaction. The write is
// all-or-nothing: either the commit makes the whole mutation visible or
// nothing changes.
func SaveRecord(tx *sql.Tx, id string, r *session.Record, now int64) error {
	record, err := json.Marshal(r)
	if err != nil {
		return errors.NewInternal(err)
	}

	res, err := tx.Exec(`UPDATE sessions SET record = ?, updated_at = ? WHERE id = ?`, string(record), now, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// List returns sessions ordered by most recently updated.
func List(db *sql.DB, limit, offset int) ([]*session.Session, error) {
	rows, err := db.Query(`
		SELECT id, title, record, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return sessions, nil
}

// Count returns the total number of sessions.
func Count(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// Delete removes a session row.
func Delete(db *sql.DB, id string) error {
	res, err := db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanSession.
type scanner interface {
	Scan(dest ...any) error
}

// scanSession scans one session row and unmarshals its record column.
func scanSession(row scanner) (*session.Session, error) {
	var (
		s      session.Session
		title  sql.NullString
		record string
	)

	if err := row.Scan(&s.ID, &title, &record, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}

	if title.Valid {
		s.Title = &title.String
	}

	if err := json.Unmarshal([]byte(record), &s.Record); err != nil {
		return nil, err
	}
	s.Record.Materialize()

	return &s, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
