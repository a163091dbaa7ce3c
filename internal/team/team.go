// Package team holds the specialist registry and the delegation path
// the coordinator uses to hand work to a specialist. Delegation is a
// blocking call: the responder runs, then the role's bound hooks run,
// and only then does control return.
package team

import (
	"context"
	"database/sql"

	"github.com/hpungsan/studio/internal/errors"
	"github.com/hpungsan/studio/internal/hooks"
	"github.com/hpungsan/studio/internal/ops"
)

// Role identifies a specialist.
type Role string

const (
	RoleResearch Role = "research"
	RoleVisual   Role = "visual"
	RoleProduct  Role = "product"
	RoleSourcing Role = "sourcing"
)

// Agent describes one specialist: what it does and the instruction text
// a responder feeds to the model runtime.
type Agent struct {
	Role         Role
	Name         string
	Goal         string
	Instructions string
}

var agents = map[Role]Agent{
	RoleResearch: {
		Role: RoleResearch,
		Name: "ResearchAgent",
		Goal: "Evaluate market viability with grounded citations.",
		Instructions: `Investigate the concept using the evidence search tool only. Produce:
- viability verdict (viable / not_viable / uncertain) with a short summary.
- confidence score out of 100.
- three strongest supporting or blocking signals with citations.
- any blockers that require user input before moving forward.
Keep the tone plain language. If the tool fails, report the failure instead of guessing.`,
	},
	RoleVisual: {
		Role: RoleVisual,
		Name: "VisualAgent",
		Goal: "Craft lightweight mockups and brand direction options.",
		Instructions: `Generate three distinct visual directions. For each option:
- give a friendly nickname.
- describe palette, typography vibe, and packaging cues in two bullet points.
- suggest a future image prompt we could run.
Keep the language informal.`,
	},
	RoleProduct: {
		Role: RoleProduct,
		Name: "ProductAgent",
		Goal: "Draft a buildable product spec and lightweight plan.",
		Instructions: `Turn the approved concept into a concise spec:
- core value prop, target user notes, success criteria.
- BOM table with draft cost targets.
- compliance or testing watch-outs.
- tiny action list of what still needs answering.
Leave sourcing details to the sourcing specialist.`,
	},
	RoleSourcing: {
		Role: RoleSourcing,
		Name: "SourcingAgent",
		Goal: "Find ingredients and manufacturing partners.",
		Instructions: `Use the evidence search tool to compile:
- full ingredient/inputs list with a quick justification per item.
- 5-10 manufacturer leads (company, region, MOQ, strengths, contact link).
- a short outreach template.
Flag gaps or lead quality issues plainly. If the tool fails, report the failure instead of guessing.`,
	},
}

// Lookup returns the agent for a role.
func Lookup(role Role) (Agent, bool) {
	a, ok := agents[role]
	return a, ok
}

// Roles returns every registered role in pipeline order.
func Roles() []Role {
	return []Role{RoleResearch, RoleVisual, RoleProduct, RoleSourcing}
}

// Responder stands in for the model runtime. It receives the agent
// definition and the delegated task and returns the specialist's raw
// reply, including the names of any tools the model invoked.
type Responder interface {
	Respond(ctx context.Context, agent Agent, task string) (hooks.Response, error)
}

// Team wires specialists to their post-response hooks. Evidence roles
// get the enforcer; the visual role gets the media binder with image
// recording bound to the owning session.
type Team struct {
	responder Responder
	enforcer  *hooks.Enforcer
	generator hooks.Generator
	database  *sql.DB
}

// New builds a team. searcher and generator may be nil when the
// corresponding capability is not configured; affected hooks then
// degrade to failure notes via their capability errors.
func New(responder Responder, enforcer *hooks.Enforcer, generator hooks.Generator, database *sql.DB) *Team {
	return &Team{
		responder: responder,
		enforcer:  enforcer,
		generator: generator,
		database:  database,
	}
}

// Delegate hands a task to the named specialist and applies the role's
// hooks before returning. The responder error is the only fatal path;
// hook-level capability failures surface as notes inside the response.
func (t *Team) Delegate(ctx context.Context, sessionID string, role Role, task string) (hooks.Response, error) {
	agent, ok := Lookup(role)
	if !ok {
		return hooks.Response{}, errors.NewInvalidRequest("unknown specialist role: " + string(role))
	}
	if t.responder == nil {
		return hooks.Response{}, errors.NewInvalidRequest("no responder is bound to this team")
	}

	resp, err := t.responder.Respond(ctx, agent, task)
	if err != nil {
		return hooks.Response{}, err
	}

	return t.ApplyHooks(ctx, sessionID, role, resp, task)
}

// ApplyHooks runs the role's post-response guarantees over an
// already-produced specialist reply. userText seeds the enforcer's
// fallback query and may be empty. Coordinators that drive the model
// runtime themselves call this directly instead of Delegate.
func (t *Team) ApplyHooks(ctx context.Context, sessionID string, role Role, resp hooks.Response, userText string) (hooks.Response, error) {
	if _, ok := Lookup(role); !ok {
		return hooks.Response{}, errors.NewInvalidRequest("unknown specialist role: " + string(role))
	}
	resp.Role = string(role)

	switch role {
	case RoleResearch, RoleSourcing:
		if t.enforcer != nil {
			resp = t.enforcer.Enforce(ctx, resp, userText)
		}
	case RoleVisual:
		binder := hooks.NewBinder(t.generator, func(prompt, url string) error {
			_, err := ops.RecordImage(t.database, ops.RecordImageInput{
				SessionID: sessionID,
				Prompt:    prompt,
				URL:       url,
			})
			return err
		})
		resp = binder.Bind(ctx, resp)
	}

	return resp, nil
}
