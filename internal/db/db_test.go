package db

import (
	"testing"
	"time"

	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/session"
)

func TestInit_CreatesSchema(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInit_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	database.Close()

	database, err = Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	database.Close()
}

func TestInsertGet_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	title := "lavender soap"
	now := time.Now().Unix()
	s := &session.Session{
		ID:        "01TESTSESSION0000000000000",
		Title:     &title,
		Record:    *session.NewRecord(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Record.Brief["format"] = "bar soap"

	if err := Insert(database, s); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := Get(database, s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title == nil || *got.Title != title {
		t.Errorf("Title = %v, want %q", got.Title, title)
	}
	if got.Record.Stage != session.StageIntake {
		t.Errorf("Stage = %q, want intake", got.Record.Stage)
	}
	if got.Record.Brief["format"] != "bar soap" {
		t.Errorf("Brief[format] = %q, want %q", got.Record.Brief["format"], "bar soap")
	}
}

func TestGet_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	_, err = Get(database, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want NOT_FOUND", err)
	}
}

// A row whose record column predates the current schema must still load
// and materialize.
func TestGet_LegacyRecord(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	_, err = database.Exec(
		`INSERT INTO sessions (id, title, record, created_at, updated_at) VALUES (?, NULL, ?, 1, 1)`,
		"legacy", `{"stage":"viability"}`,
	)
	if err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	got, err := Get(database, "legacy")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Record.Stage != session.StageViability {
		t.Errorf("Stage = %q, want viability", got.Record.Stage)
	}
	if got.Record.Brief == nil {
		t.Error("Brief not materialized on legacy record")
	}
}

func TestSaveRecord_Transactional(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	now := time.Now().Unix()
	s := &session.Session{ID: "s1", Record: *session.NewRecord(), CreatedAt: now, UpdatedAt: now}
	if err := Insert(database, s); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Rolled-back mutation must not be visible.
	tx, err := database.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	loaded, err := GetForUpdate(tx, "s1")
	if err != nil {
		t.Fatalf("GetForUpdate failed: %v", err)
	}
	loaded.Record.Stage = session.StageViability
	if err := SaveRecord(tx, "s1", &loaded.Record, now+1); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	got, err := Get(database, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Record.Stage != session.StageIntake {
		t.Errorf("Stage after rollback = %q, want intake", got.Record.Stage)
	}

	// Committed mutation is visible in full.
	tx, err = database.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	loaded, err = GetForUpdate(tx, "s1")
	if err != nil {
		t.Fatalf("GetForUpdate failed: %v", err)
	}
	loaded.Record.Stage = session.StageViability
	loaded.Record.Approvals.Viability = true
	if err := SaveRecord(tx, "s1", &loaded.Record, now+2); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	got, err = Get(database, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Record.Stage != session.StageViability || !got.Record.Approvals.Viability {
		t.Error("committed mutation not fully visible")
	}
}

func TestListCountDelete(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	for i, id := range []string{"a", "b", "c"} {
		s := &session.Session{ID: id, Record: *session.NewRecord(), CreatedAt: int64(i), UpdatedAt: int64(i)}
		if err := Insert(database, s); err != nil {
			t.Fatalf("Insert(%s) failed: %v", id, err)
		}
	}

	sessions, err := List(database, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("List returned %d sessions, want 3", len(sessions))
	}
	// Most recently updated first
	if sessions[0].ID != "c" {
		t.Errorf("List[0].ID = %q, want c", sessions[0].ID)
	}

	n, err := Count(database)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}

	if err := Delete(database, "b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := Delete(database, "b"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second Delete error = %v, want NOT_FOUND", err)
	}
}
