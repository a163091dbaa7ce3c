package ops

import (
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/studio/internal/db"
	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/session"
)

// CreateSessionInput contains parameters for the CreateSession operation.
type CreateSessionInput struct {
	Title *string // optional
}

// CreateSessionOutput contains the result of the CreateSession operation.
type CreateSessionOutput struct {
	ID    string        `json:"id"`
	Stage session.Stage `json:"stage"`
}

// CreateSession mints a new session with the default record.
func CreateSession(database *sql.DB, input CreateSessionInput) (*CreateSessionOutput, error) {
	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var title *string
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed != "" {
			title = &trimmed
		}
	}

	now := time.Now().Unix()
	s := &session.Session{
		ID:        id,
		Title:     title,
		Record:    *session.NewRecord(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Insert(database, s); err != nil {
		return nil, err
	}

	return &CreateSessionOutput{ID: id, Stage: s.Record.Stage}, nil
}

// SnapshotInput contains parameters for the Snapshot operation.
type SnapshotInput struct {
	SessionID string
}

// SnapshotOutput is the full session record the coordinator reads at
// the start of a turn.
type SnapshotOutput struct {
	session.Session // embedded (copy, not pointer)
}

// Snapshot retrieves the full session record.
func Snapshot(database *sql.DB, input SnapshotInput) (*SnapshotOutput, error) {
	id := strings.TrimSpace(input.SessionID)
	if id == "" {
		return nil, errors.NewInvalidRequest("session_id is required")
	}

	s, err := db.Get(database, id)
	if err != nil {
		return nil, err
	}

	return &SnapshotOutput{Session: *s}, nil
}

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int
	Offset int
}

// ListItem is one row in a session listing.
type ListItem struct {
	ID        string        `json:"id"`
	Title     *string       `json:"title,omitempty"`
	Stage     session.Stage `json:"stage"`
	Awaiting  bool          `json:"awaiting_approval"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []ListItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// List returns recent sessions, most recently updated first.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	sessions, err := db.List(database, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := db.Count(database)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, len(sessions))
	for i, s := range sessions {
		items[i] = ListItem{
			ID:        s.ID,
			Title:     s.Title,
			Stage:     s.Record.Stage,
			Awaiting:  s.Record.AwaitingApproval,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
	}, nil
}

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	SessionID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Delete removes a session record.
func Delete(database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.SessionID)
	if id == "" {
		return nil, errors.NewInvalidRequest("session_id is required")
	}

	if err := db.Delete(database, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{ID: id, Deleted: true}, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
