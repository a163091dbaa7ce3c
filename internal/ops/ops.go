// Package ops implements the session operations the coordinator drives
// as tools: the stage gate and the approval/field mutators.
//
// Every mutator runs its read-modify-write inside a single database
// transaction, so each mutation is atomic and mutations for one session
// are serialized by the database. Turn-level ordering across concurrent
// callers for the same session is the caller's responsibility.
//
// Gate-unmet and unknown-name conditions are outcomes, not errors: the
// operation succeeds, reports why nothing changed, and leaves the
// record untouched. Errors are reserved for storage failures and
// invalid requests (e.g. a missing session ID).
package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/studio/internal/db"
	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/session"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Outcome is the result of a gate or mutator call: whether the record
// changed and a short human-readable message either way.
type Outcome struct {
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

// mutate loads the session record in a transaction, applies fn, and
// commits the new record if fn reports a change. On a rejection outcome
// the transaction is rolled back and the record is untouched.
func mutate(database *sql.DB, sessionID string, fn func(r *session.Record) Outcome) (Outcome, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Outcome{}, errors.NewInvalidRequest("session_id is required")
	}

	tx, err := database.Begin()
	if err != nil {
		return Outcome{}, errors.NewInternal(err)
	}
	defer tx.Rollback()

	s, err := db.GetForUpdate(tx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	s.Record.Materialize()
	out := fn(&s.Record)
	if !out.Changed {
		return out, nil
	}

	if err := db.SaveRecord(tx, sessionID, &s.Record, time.Now().Unix()); err != nil {
		return Outcome{}, err
	}
	if err := tx.Commit(); err != nil {
		return Outcome{}, errors.NewInternal(err)
	}

	return out, nil
}
