package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/studio/internal/config"
	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/hooks"
	"github.com/hpungsan/studio/internal/media"
	"github.com/hpungsan/studio/internal/ops"
	"github.com/hpungsan/studio/internal/search"
	"github.com/hpungsan/studio/internal/team"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db   *sql.DB
	cfg  *config.Config
	team *team.Team
}

// NewHandlers creates a new Handlers instance. The capability clients
// behind apply_role_hooks are built here from config; missing
// credentials surface as failure notes at call time, never at startup.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	searchClient := search.NewClient(cfg.SearchAPIKey, search.Options{
		BaseURL:          cfg.SearchBaseURL,
		TimeoutMS:        cfg.CapabilityTimeoutMS,
		MaxResults:       cfg.SearchMaxResults,
		MaxTokensPerPage: cfg.SearchMaxTokensPerPage,
	})
	mediaClient := media.NewClient(cfg.MediaAPIKey, media.Options{
		BaseURL:   cfg.MediaBaseURL,
		TimeoutMS: cfg.CapabilityTimeoutMS,
		Size:      cfg.MediaSize,
	})
	enforcer := hooks.NewEnforcer(searchClient, cfg.SearchMaxResults)

	return &Handlers{
		db:   db,
		cfg:  cfg,
		team: team.New(nil, enforcer, mediaClient, db),
	}
}

// Request types for each tool

// SessionCreateRequest represents the arguments for session_create.
type SessionCreateRequest struct {
	Title *string `json:"title,omitempty"`
}

// SessionSnapshotRequest represents the arguments for session_snapshot.
type SessionSnapshotRequest struct {
	SessionID string `json:"session_id"`
}

// SessionListRequest represents the arguments for session_list.
type SessionListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// SessionDeleteRequest represents the arguments for session_delete.
type SessionDeleteRequest struct {
	SessionID string `json:"session_id"`
}

// SetStageRequest represents the arguments for set_stage.
type SetStageRequest struct {
	SessionID string `json:"session_id"`
	Stage     string `json:"stage"`
}

// SetAwaitingRequest represents the arguments for set_awaiting.
type SetAwaitingRequest struct {
	SessionID string `json:"session_id"`
	Awaiting  bool   `json:"awaiting"`
}

// MarkApprovalRequest represents the arguments for mark_approval.
type MarkApprovalRequest struct {
	SessionID string `json:"session_id"`
	Gate      string `json:"gate"`
	Value     *bool  `json:"value,omitempty"` // nil means true
}

// RecordVisualChoiceRequest represents the arguments for record_visual_choice.
type RecordVisualChoiceRequest struct {
	SessionID string `json:"session_id"`
	OptionID  string `json:"option_id"`
	Notes     string `json:"notes,omitempty"`
}

// RecordBriefRequest represents the arguments for record_brief.
type RecordBriefRequest struct {
	SessionID string `json:"session_id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// RecordSpecRequest represents the arguments for record_spec.
type RecordSpecRequest struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
	BOM       string `json:"bom,omitempty"`
	OpenItems string `json:"open_items,omitempty"`
}

// RecordDecisionRequest represents the arguments for record_decision.
type RecordDecisionRequest struct {
	SessionID   string   `json:"session_id"`
	Status      string   `json:"status,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Reasons     string   `json:"reasons,omitempty"`
	Assumptions string   `json:"assumptions,omitempty"`
}

// RecordIngredientsRequest represents the arguments for record_ingredients.
type RecordIngredientsRequest struct {
	SessionID   string `json:"session_id"`
	Ingredients string `json:"ingredients"`
}

// RecordManufacturersRequest represents the arguments for record_manufacturers.
type RecordManufacturersRequest struct {
	SessionID     string `json:"session_id"`
	Manufacturers string `json:"manufacturers"`
}

// ApplyRoleHooksRequest represents the arguments for apply_role_hooks.
type ApplyRoleHooksRequest struct {
	SessionID string   `json:"session_id"`
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	ToolsUsed []string `json:"tools_used,omitempty"`
	Task      string   `json:"task,omitempty"`
}

// ApplyRoleHooksResult is the rewritten specialist reply.
type ApplyRoleHooksResult struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HandleSessionCreate handles the session_create tool call.
func (h *Handlers) HandleSessionCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateSession(h.db, ops.CreateSessionInput{Title: input.Title})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSessionSnapshot handles the session_snapshot tool call.
func (h *Handlers) HandleSessionSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionSnapshotRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Snapshot(h.db, ops.SnapshotInput{SessionID: input.SessionID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSessionList handles the session_list tool call.
func (h *Handlers) HandleSessionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(h.db, ops.ListInput{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSessionDelete handles the session_delete tool call.
func (h *Handlers) HandleSessionDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(h.db, ops.DeleteInput{SessionID: input.SessionID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSetStage handles the set_stage tool call.
func (h *Handlers) HandleSetStage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetStageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetStage(h.db, ops.SetStageInput{
		SessionID: input.SessionID,
		Stage:     input.Stage,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSetAwaiting handles the set_awaiting tool call.
func (h *Handlers) HandleSetAwaiting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetAwaitingRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetAwaiting(h.db, ops.SetAwaitingInput{
		SessionID: input.SessionID,
		Awaiting:  input.Awaiting,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMarkApproval handles the mark_approval tool call.
func (h *Handlers) HandleMarkApproval(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkApprovalRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	// Omitted value means approve.
	value := true
	if input.Value != nil {
		value = *input.Value
	}

	result, err := ops.MarkApproval(h.db, ops.MarkApprovalInput{
		SessionID: input.SessionID,
		Gate:      input.Gate,
		Value:     value,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecordVisualChoice handles the record_visual_choice tool call.
func (h *Handlers) HandleRecordVisualChoice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordVisualChoiceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RecordVisualChoice(h.db, ops.RecordVisualChoiceInput{
		SessionID: input.SessionID,
		OptionID:  input.OptionID,
		Notes:     input.Notes,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecordBrief handles the record_brief tool call.
func (h *Handlers) HandleRecordBrief(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordBriefRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RecordBrief(h.db, ops.RecordBriefInput{
		SessionID: input.SessionID,
		Key:       input.Key,
		Value:     input.Value,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecordSpec handles the record_spec tool call.
func (h *Handlers) HandleRecordSpec(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordSpecRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RecordSpec(h.db, ops.RecordSpecInput{
		SessionID: input.SessionID,
		Summary:   input.Summary,
		BOM:       input.BOM,
		OpenItems: input.OpenItems,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecordDecision handles the record_decision tool call.
func (h *Handlers) HandleRecordDecision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordDecisionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RecordDecision(h.db, ops.RecordDecisionInput{
		SessionID:   input.SessionID,
		Status:      input.Status,
		Confidence:  input.Confidence,
		Reasons:     input.Reasons,
		Assumptions: input.Assumptions,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecordIngredients handles the record_ingredients tool call.
func (h *Handlers) HandleRecordIngredients(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordIngredientsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RecordIngredients(h.db, ops.RecordIngredientsInput{
		SessionID:   input.SessionID,
		Ingredients: input.Ingredients,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecordManufacturers handles the record_manufacturers tool call.
func (h *Handlers) HandleRecordManufacturers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordManufacturersRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RecordManufacturers(h.db, ops.RecordManufacturersInput{
		SessionID:     input.SessionID,
		Manufacturers: input.Manufacturers,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleApplyRoleHooks handles the apply_role_hooks tool call.
func (h *Handlers) HandleApplyRoleHooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ApplyRoleHooksRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	resp := hooks.Response{
		Content:   input.Content,
		ToolsUsed: input.ToolsUsed,
	}
	out, err := h.team.ApplyHooks(ctx, input.SessionID, team.Role(input.Role), resp, input.Task)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ApplyRoleHooksResult{Role: out.Role, Content: out.Content})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := err.(*errors.StudioError); ok {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
