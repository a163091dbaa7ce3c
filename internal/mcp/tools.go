package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/studio/internal/session"
	"github.com/hpungsan/studio/internal/team"
)

// roleNames renders the specialist registry for tool descriptions.
func roleNames() string {
	roles := team.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

var sessionCreateToolDef = mcp.NewTool("session_create",
	mcp.WithDescription("Create a new ideation session starting at the intake stage."),
	mcp.WithString("title", mcp.Description("Optional human-readable session title.")),
)

var sessionSnapshotToolDef = mcp.NewTool("session_snapshot",
	mcp.WithDescription("Read the full session record: stage, approvals, brief, decision, selected visual, and accumulated outputs. Call this at the start of each turn."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
)

var sessionListToolDef = mcp.NewTool("session_list",
	mcp.WithDescription("List sessions, most recently updated first."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return (default 20, max 100).")),
	mcp.WithNumber("offset", mcp.Description("Number of sessions to skip.")),
)

var sessionDeleteToolDef = mcp.NewTool("session_delete",
	mcp.WithDescription("Delete a session and its record permanently."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
)

var setStageToolDef = mcp.NewTool("set_stage",
	mcp.WithDescription("Move the session to a pipeline stage. Forward moves are gated on approvals; an unmet gate leaves the stage unchanged and the result explains why. Backward moves always succeed."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithString("stage", mcp.Required(), mcp.Description("Target stage: "+strings.Join(session.StageNames(), ", ")+".")),
)

var setAwaitingToolDef = mcp.NewTool("set_awaiting",
	mcp.WithDescription("Flag whether the pipeline is blocked on user approval."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithBoolean("awaiting", mcp.Required(), mcp.Description("True when waiting on the user.")),
)

var markApprovalToolDef = mcp.NewTool("mark_approval",
	mcp.WithDescription("Set or revoke one stage-gate approval."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithString("gate", mcp.Required(), mcp.Description("One of: "+strings.Join(session.GateNames(), ", ")+".")),
	mcp.WithBoolean("value", mcp.Description("Approval value; defaults to true.")),
)

var recordVisualChoiceToolDef = mcp.NewTool("record_visual_choice",
	mcp.WithDescription("Record which visual direction the user picked. Overwrites any earlier pick."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithString("option_id", mcp.Required(), mcp.Description("Identifier or nickname of the chosen option.")),
	mcp.WithString("notes", mcp.Description("Optional notes about the pick.")),
)

var recordBriefToolDef = mcp.NewTool("record_brief",
	mcp.WithDescription("Store one intake fact as a key/value pair. Keys are case-folded; an existing key is overwritten."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithString("key", mcp.Required(), mcp.Description("Fact name, e.g. product, audience, format.")),
	mcp.WithString("value", mcp.Required(), mcp.Description("Fact value.")),
)

var recordSpecToolDef = mcp.NewTool("record_spec",
	mcp.WithDescription("Store the current product spec snapshot, optionally with a bill-of-materials block and an open-items block (one entry per line)."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithString("summary", mcp.Required(), mcp.Description("Spec summary text; markdown allowed.")),
	mcp.WithString("bom", mcp.Description("Bill of materials, one entry per line. Overwrites the stored list when supplied.")),
	mcp.WithString("open_items", mcp.Description("Open questions, one per line. Replaces decision.open_questions when supplied.")),
)

var recordDecisionToolDef = mcp.NewTool("record_decision",
	mcp.WithDescription("Update the evolving viability judgment. Only supplied fields are overwritten."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithString("status", mcp.Description("Verdict, e.g. viable, not_viable, uncertain.")),
	mcp.WithNumber("confidence", mcp.Description("Confidence score.")),
	mcp.WithString("reasons", mcp.Description("Supporting or blocking signals, one per line.")),
	mcp.WithString("assumptions", mcp.Description("Working assumptions, one per line.")),
)

var recordIngredientsToolDef = mcp.NewTool("record_ingredients",
	mcp.WithDescription("Store the ingredient list, one ingredient per line. Overwrites the stored list."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithString("ingredients", mcp.Required(), mcp.Description("Ingredients, one per line.")),
)

var applyRoleHooksToolDef = mcp.NewTool("apply_role_hooks",
	mcp.WithDescription("Run a specialist reply through its role's post-response guarantees before presenting it: research and sourcing replies get backing evidence (a lookup digest or an explicit failure note), visual replies get a real generated image bound in and recorded on the session. Call this after every specialist turn."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier; generated images are recorded here.")),
	mcp.WithString("role", mcp.Required(), mcp.Description("Specialist role: "+roleNames()+".")),
	mcp.WithString("content", mcp.Required(), mcp.Description("The specialist's reply text.")),
	mcp.WithArray("tools_used", mcp.Description("Names of tools the specialist actually invoked while producing the reply."),
		mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("task", mcp.Description("The delegated task or latest user text; seeds the evidence fallback query.")),
)

var recordManufacturersToolDef = mcp.NewTool("record_manufacturers",
	mcp.WithDescription("Store the manufacturer lead list, one lead per line. Overwrites the stored list."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier.")),
	mcp.WithString("manufacturers", mcp.Required(), mcp.Description("Manufacturer leads, one per line.")),
)
