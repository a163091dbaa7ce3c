package ops

import (
	"database/sql"
	"testing"

	"github.com/hpungsan/studio/internal/db"
	"github.com/hpungsan/studio/internal/session"
)

// newTestDB creates a temporary database for testing.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database
}

// newTestSession creates a fresh session and returns its ID.
func newTestSession(t *testing.T, database *sql.DB) string {
	t.Helper()

	out, err := CreateSession(database, CreateSessionInput{})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return out.ID
}

// getRecord fetches the current record for assertions.
func getRecord(t *testing.T, database *sql.DB, id string) *session.Record {
	t.Helper()

	snap, err := Snapshot(database, SnapshotInput{SessionID: id})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	return &snap.Record
}

func stringPtr(s string) *string {
	return &s
}
