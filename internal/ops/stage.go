package ops

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/studio/internal/session"
)

// SetStageInput contains parameters for the SetStage operation.
type SetStageInput struct {
	SessionID string
	Stage     string // free text; normalized before comparison
}

// SetStageOutput contains the result of the SetStage operation.
type SetStageOutput struct {
	Outcome
	Stage session.Stage `json:"stage"`
}

// SetStage advances or rewinds the session's pipeline stage.
//
// Backward and same-stage transitions always succeed; forward
// transitions are gated on the approval flags and artifacts required by
// the target stage. Gating is check-then-set: a rejected transition
// leaves the record untouched, and repeating an already-current target
// is a no-op success.
func SetStage(database *sql.DB, input SetStageInput) (*SetStageOutput, error) {
	target, ok := session.ParseStage(input.Stage)
	if !ok {
		// Unknown target never reaches the record.
		return &SetStageOutput{
			Outcome: Outcome{
				Message: "Stage unchanged. Pick one of: " + strings.Join(session.StageNames(), ", "),
			},
		}, nil
	}

	var result SetStageOutput
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		currentIdx := session.StageIndex(r.Stage)
		if currentIdx < 0 {
			// Stored stage is outside the enumerated set; reset
			// defensively rather than crash the gate.
			currentIdx = 0
			r.Stage = session.StageIntake
		}

		targetIdx := session.StageIndex(target)

		// Gates apply only when moving forward.
		if targetIdx > currentIdx {
			if unmet := unmetRequirements(r, target); len(unmet) > 0 {
				result.Stage = r.Stage
				return Outcome{Message: "Stage unchanged: " + strings.Join(unmet, " ")}
			}
		}

		r.Stage = target
		result.Stage = target
		return Outcome{Changed: true, Message: fmt.Sprintf("Stage set to %s.", target)}
	})
	if err != nil {
		return nil, err
	}

	result.Outcome = out
	return &result, nil
}

// unmetRequirements evaluates the gate rules for the target stage and
// collects every missing requirement as a human-readable reason.
func unmetRequirements(r *session.Record, target session.Stage) []string {
	var unmet []string

	switch target {
	case session.StageVisuals:
		if !r.Approvals.Viability {
			unmet = append(unmet, "viability needs approval first.")
		}
	case session.StageSpec:
		if !r.Approvals.Viability {
			unmet = append(unmet, "viability isn't approved.")
		}
		if !r.Approvals.Visuals {
			unmet = append(unmet, "visuals need approval before spec.")
		}
		if r.SelectedVisual.OptionID == nil || *r.SelectedVisual.OptionID == "" {
			unmet = append(unmet, "capture the chosen visual (use record_visual_choice).")
		}
	case session.StageSourcing:
		if !r.Approvals.Spec {
			unmet = append(unmet, "spec must be approved before sourcing.")
		}
	case session.StageFinal:
		if !r.Approvals.Viability {
			unmet = append(unmet, "viability approval is still pending.")
		}
		if !r.Approvals.Visuals {
			unmet = append(unmet, "visuals approval is still pending.")
		}
		if !r.Approvals.Spec {
			unmet = append(unmet, "spec approval is still pending.")
		}
	}

	return unmet
}
