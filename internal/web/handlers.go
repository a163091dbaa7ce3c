package web

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/hpungsan/studio/internal/config"
	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/ops"
)

// Handlers contains HTTP route handlers for the web viewer.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /sessions, listing sessions newest first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}

	result, err := ops.List(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Sessions",
			Version: h.renderer.version,
		},
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleDetail handles GET /sessions/{id}, the single-session view.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("session ID is required"))
		return
	}

	snap, err := ops.Snapshot(h.db, ops.SnapshotInput{SessionID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var rendered = renderMarkdown("")
	if snap.Record.Outputs.Spec != nil {
		rendered = renderMarkdown(*snap.Record.Outputs.Spec)
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   displayName(snap.Title, snap.ID),
			Version: h.renderer.version,
		},
		Session:      snap,
		RenderedSpec: rendered,
		DisplayName:  displayName(snap.Title, snap.ID),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// displayName returns the session title if present, or a truncated ID.
func displayName(title *string, id string) string {
	if title != nil && *title != "" {
		return *title
	}
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
