package ops

import (
	"database/sql"
	"strings"

	"github.com/hpungsan/studio/internal/extract"
	"github.com/hpungsan/studio/internal/session"
)

// RecordVisualChoiceInput contains parameters for RecordVisualChoice.
type RecordVisualChoiceInput struct {
	SessionID string
	OptionID  string
	Notes     string
}

// RecordVisualChoice overwrites the selected visual wholesale. Empty
// notes are allowed.
func RecordVisualChoice(database *sql.DB, input RecordVisualChoiceInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		optionID := strings.TrimSpace(input.OptionID)
		r.SelectedVisual = session.SelectedVisual{
			OptionID: &optionID,
			Notes:    strings.TrimSpace(input.Notes),
		}
		return Outcome{Changed: true, Message: "Saved visual pick."}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordBriefInput contains parameters for RecordBrief.
type RecordBriefInput struct {
	SessionID string
	Key       string
	Value     string
}

// RecordBrief inserts or overwrites one intake fact. Keys are
// case-folded. Empty keys or values are written as given rather than
// rejected; the overwrite is the observable behavior.
func RecordBrief(database *sql.DB, input RecordBriefInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		r.Brief[session.Normalize(input.Key)] = strings.TrimSpace(input.Value)
		return Outcome{Changed: true, Message: "Brief updated."}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordSpecInput contains parameters for RecordSpec.
type RecordSpecInput struct {
	SessionID string
	Summary   string
	BOM       string // optional bill-of-materials block, one entry per line
	OpenItems string // optional open-questions block, one entry per line
}

// RecordSpec stores the current product spec snapshot. A supplied BOM
// block overwrites outputs.bom; a supplied open-items block replaces
// decision.open_questions wholesale, leaving the rest of the decision
// untouched.
func RecordSpec(database *sql.DB, input RecordSpecInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		summary := strings.TrimSpace(input.Summary)
		r.Outputs.Spec = &summary
		if input.BOM != "" {
			r.Outputs.BOM = extract.SplitLines(input.BOM)
		}
		if input.OpenItems != "" {
			r.Decision.OpenQuestions = extract.SplitLines(input.OpenItems)
		}
		return Outcome{Changed: true, Message: "Spec saved."}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordDecisionInput contains parameters for RecordDecision.
type RecordDecisionInput struct {
	SessionID   string
	Status      string
	Confidence  *float64
	Reasons     string // optional block, one reason per line
	Assumptions string // optional block, one assumption per line
}

// RecordDecision updates the evolving viability judgment. Only supplied
// fields are overwritten; open questions are owned by RecordSpec.
func RecordDecision(database *sql.DB, input RecordDecisionInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		if status := session.Normalize(input.Status); status != "" {
			r.Decision.Status = status
		}
		if input.Confidence != nil {
			r.Decision.Confidence = *input.Confidence
		}
		if input.Reasons != "" {
			r.Decision.Reasons = extract.SplitLines(input.Reasons)
		}
		if input.Assumptions != "" {
			r.Decision.Assumptions = extract.SplitLines(input.Assumptions)
		}
		return Outcome{Changed: true, Message: "Decision updated."}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordIngredientsInput contains parameters for RecordIngredients.
type RecordIngredientsInput struct {
	SessionID   string
	Ingredients string // block, one ingredient per line
}

// RecordIngredients overwrites the ingredient list from a line block.
func RecordIngredients(database *sql.DB, input RecordIngredientsInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		r.Outputs.Ingredients = extract.SplitLines(input.Ingredients)
		return Outcome{Changed: true, Message: "Ingredients saved."}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordManufacturersInput contains parameters for RecordManufacturers.
type RecordManufacturersInput struct {
	SessionID     string
	Manufacturers string // block, one lead per line
}

// RecordManufacturers overwrites the manufacturer lead list.
func RecordManufacturers(database *sql.DB, input RecordManufacturersInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		r.Outputs.Manufacturers = extract.SplitLines(input.Manufacturers)
		return Outcome{Changed: true, Message: "Manufacturers saved."}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordImageInput contains parameters for RecordImage.
type RecordImageInput struct {
	SessionID string
	Prompt    string
	URL       string
}

// RecordImage appends one generated image artifact. The images list is
// append-only; entries are never rewritten.
func RecordImage(database *sql.DB, input RecordImageInput) (*Outcome, error) {
	out, err := mutate(database, input.SessionID, func(r *session.Record) Outcome {
		r.Outputs.Images = append(r.Outputs.Images, session.Image{
			Prompt: strings.TrimSpace(input.Prompt),
			URL:    strings.TrimSpace(input.URL),
		})
		return Outcome{Changed: true, Message: "Image recorded."}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
