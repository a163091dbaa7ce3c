package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/studio/internal/config"
	"github.com/hpungsan/studio/internal/session"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"session_create": {
		def:     sessionCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionCreate },
	},
	"session_snapshot": {
		def:     sessionSnapshotToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionSnapshot },
	},
	"session_list": {
		def:     sessionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionList },
	},
	"session_delete": {
		def:     sessionDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionDelete },
	},
	"set_stage": {
		def:     setStageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetStage },
	},
	"set_awaiting": {
		def:     setAwaitingToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetAwaiting },
	},
	"mark_approval": {
		def:     markApprovalToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkApproval },
	},
	"record_visual_choice": {
		def:     recordVisualChoiceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecordVisualChoice },
	},
	"record_brief": {
		def:     recordBriefToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecordBrief },
	},
	"record_spec": {
		def:     recordSpecToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecordSpec },
	},
	"record_decision": {
		def:     recordDecisionToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecordDecision },
	},
	"record_ingredients": {
		def:     recordIngredientsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecordIngredients },
	},
	"record_manufacturers": {
		def:     recordManufacturersToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecordManufacturers },
	},
	"apply_role_hooks": {
		def:     applyRoleHooksToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleApplyRoleHooks },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// serverInstructions summarizes the pipeline for the coordinator model.
func serverInstructions() string {
	return "Stage-gated product ideation session store. Stage order: " +
		strings.Join(session.StageNames(), " -> ") + ". " +
		"Read session_snapshot at the start of each turn. Forward stage moves " +
		"past visuals, spec, sourcing, and final require the matching approvals; " +
		"set_stage reports unmet requirements instead of failing. Record artifacts " +
		"with the record_* tools as specialists produce them. Run every specialist " +
		"reply through apply_role_hooks before presenting it: evidence roles gain a " +
		"lookup digest, the visual role gains a bound generated image."
}

// NewServer creates a new MCP server with Studio tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"studio",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions()),
	)

	h := NewHandlers(db, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
