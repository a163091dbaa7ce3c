package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hpungsan/studio/internal/config"
	"github.com/hpungsan/studio/internal/db"
	"github.com/hpungsan/studio/internal/ops"
)

func stringPtr(s string) *string { return &s }

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		db:       database,
		cfg:      config.DefaultConfig(),
		renderer: renderer,
	}
}

// seedSession creates a session and returns its ID.
func seedSession(t *testing.T, h *Handlers, title string) string {
	t.Helper()
	out, err := ops.CreateSession(h.db, ops.CreateSessionInput{Title: stringPtr(title)})
	if err != nil {
		t.Fatalf("seed session %q: %v", title, err)
	}
	return out.ID
}

// detailRequest runs HandleDetail with the path value wired up.
func detailRequest(h *Handlers, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/sessions/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)
	return rec
}

func TestHandleList_Default(t *testing.T) {
	h := setupTest(t)
	seedSession(t, h, "Trail Soap")

	req := httptest.NewRequest("GET", "/sessions", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Trail Soap") {
		t.Error("expected session title in response")
	}
	if !strings.Contains(body, "intake") {
		t.Error("expected stage badge in response")
	}
}

func TestHandleList_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/sessions", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No sessions yet.") {
		t.Error("expected empty-state message")
	}
}

func TestHandleDetail_ShowsRecord(t *testing.T) {
	h := setupTest(t)
	id := seedSession(t, h, "Trail Soap")

	if _, err := ops.RecordBrief(h.db, ops.RecordBriefInput{SessionID: id, Key: "format", Value: "bar"}); err != nil {
		t.Fatalf("RecordBrief: %v", err)
	}
	if _, err := ops.RecordSpec(h.db, ops.RecordSpecInput{
		SessionID: id,
		Summary:   "## Summary\nA calming lavender bar.",
		BOM:       "lavender oil\nshea butter",
	}); err != nil {
		t.Fatalf("RecordSpec: %v", err)
	}
	if _, err := ops.RecordImage(h.db, ops.RecordImageInput{
		SessionID: id,
		Prompt:    "lavender bar on granite",
		URL:       "https://example/img1",
	}); err != nil {
		t.Fatalf("RecordImage: %v", err)
	}

	rec := detailRequest(h, id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()

	if !strings.Contains(body, "Trail Soap") {
		t.Error("expected title")
	}
	if !strings.Contains(body, "format") || !strings.Contains(body, "bar") {
		t.Error("expected brief entries")
	}
	// Spec markdown is rendered to HTML.
	if !strings.Contains(body, "A calming lavender bar.") {
		t.Error("expected rendered spec text")
	}
	if !strings.Contains(body, "<h2>Summary</h2>") {
		t.Error("expected markdown heading rendered as HTML")
	}
	if !strings.Contains(body, `src="https://example/img1"`) {
		t.Error("expected image embed")
	}
	if !strings.Contains(body, "lavender oil") {
		t.Error("expected BOM entries")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	rec := detailRequest(h, "missing-session")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error 404") {
		t.Error("expected error page")
	}
}

func TestHandleDetail_NotFoundJSON(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/sessions/missing", nil)
	req.SetPathValue("id", "missing")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "NOT_FOUND") {
		t.Error("expected error code in JSON body")
	}
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest("GET", "/sessions", nil)
	rec := httptest.NewRecorder()
	securityHeaders(inner).ServeHTTP(rec, req)

	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}
