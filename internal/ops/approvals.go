package ops

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/studio/internal/session"
)

// SetAwaitingInput contains parameters for the SetAwaiting operation.
type SetAwaitingInput struct {
	SessionID string
	Awaiting  bool
}

// SetAwaiting flags whether the controller is blocked on the user.
func SetAwaiting(database *sql.DB, input SetAwaitingInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		r.AwaitingApproval = input.Awaiting
		return Outcome{Changed: true, Message: fmt.Sprintf("awaiting_approval set to %t.", input.Awaiting)}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkApprovalInput contains parameters for the MarkApproval operation.
type MarkApprovalInput struct {
	SessionID string
	Gate      string // free text; normalized before comparison
	Value     bool
}

// MarkApproval overwrites one of the three approval gates. The gate key
// set is closed; unknown gates are rejected without mutation.
func MarkApproval(database *sql.DB, input MarkApprovalInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		gate := session.Normalize(input.Gate)

		switch gate {
		case "viability":
			r.Approvals.Viability = input.Value
		case "visuals":
			r.Approvals.Visuals = input.Value
		case "spec":
			r.Approvals.Spec = input.Value
		default:
			names := session.GateNames()
			return Outcome{Message: fmt.Sprintf("Approval untouched. Use %s.",
				strings.Join(names[:len(names)-1], ", ")+", or "+names[len(names)-1])}
		}

		return Outcome{Changed: true, Message: fmt.Sprintf("Marked %s approval as %t.", gate, input.Value)}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
