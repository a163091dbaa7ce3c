// Package session defines the per-conversation record the controller
// mutates across turns: the pipeline stage, approval gates, intake brief,
// and accumulated artifacts.
package session

// Stage is a pipeline position. Stages are totally ordered; see Sequence.
type Stage string

const (
	StageIntake    Stage = "intake"
	StageViability Stage = "viability"
	StageVisuals   Stage = "visuals"
	StageSpec      Stage = "spec"
	StageSourcing  Stage = "sourcing"
	StageFinal     Stage = "final"
)

// Sequence lists all stages in pipeline order.
var Sequence = []Stage{
	StageIntake,
	StageViability,
	StageVisuals,
	StageSpec,
	StageSourcing,
	StageFinal,
}

// ParseStage normalizes free text and resolves it to a known stage.
// Returns false for anything outside the enumerated set.
func ParseStage(s string) (Stage, bool) {
	norm := Stage(Normalize(s))
	for _, st := range Sequence {
		if st == norm {
			return st, true
		}
	}
	return "", false
}

// StageIndex returns the pipeline position of a stage, or -1 if the
// value is not in the enumerated set (e.g. a corrupted stored record).
func StageIndex(st Stage) int {
	for i, s := range Sequence {
		if s == st {
			return i
		}
	}
	return -1
}

// StageNames returns the canonical lower-case stage vocabulary.
func StageNames() []string {
	names := make([]string, len(Sequence))
	for i, st := range Sequence {
		names[i] = string(st)
	}
	return names
}

// Approvals holds the per-gate sign-off flags. The key set is closed:
// viability, visuals, spec.
type Approvals struct {
	Viability bool `json:"viability"`
	Visuals   bool `json:"visuals"`
	Spec      bool `json:"spec"`
}

// GateNames returns the valid approval gate vocabulary.
func GateNames() []string {
	return []string{"viability", "visuals", "spec"}
}

// Decision is the evolving viability/spec judgment.
type Decision struct {
	Status        string   `json:"status"`
	Confidence    float64  `json:"confidence"`
	Reasons       []string `json:"reasons"`
	Assumptions   []string `json:"assumptions"`
	OpenQuestions []string `json:"open_questions"`
}

// SelectedVisual records the user's visual pick for the current
// approval cycle. Overwritten wholesale, never merged.
type SelectedVisual struct {
	OptionID *string `json:"option_id"`
	Notes    string  `json:"notes"`
}

// Image is one generated visual artifact.
type Image struct {
	Prompt string `json:"prompt"`
	URL    string `json:"url"`
}

// Outputs accumulates specialist artifacts. Images is append-only; the
// remaining fields are last-write-wins.
type Outputs struct {
	Images        []Image  `json:"images"`
	Spec          *string  `json:"spec"`
	BOM           []string `json:"bom"`
	Ingredients   []string `json:"ingredients"`
	Manufacturers []string `json:"manufacturers"`
}

// Record is the session state proper: everything the coordinator reads
// at the start of a turn and the mutators write during it.
type Record struct {
	Stage            Stage             `json:"stage"`
	AwaitingApproval bool              `json:"awaiting_approval"`
	Approvals        Approvals         `json:"approvals"`
	Brief            map[string]string `json:"brief"`
	Decision         Decision          `json:"decision"`
	SelectedVisual   SelectedVisual    `json:"selected_visual"`
	Outputs          Outputs           `json:"outputs"`
}

// NewRecord returns the documented default record: all gates false, no
// artifacts, stage = intake.
func NewRecord() *Record {
	return &Record{
		Stage:    StageIntake,
		Brief:    map[string]string{},
		Decision: Decision{Status: "pending"},
	}
}

// Materialize lazily fills in sub-structures that may be missing from a
// record persisted by an older schema, so mutators can write without
// nil checks. Idempotent.
func (r *Record) Materialize() {
	if r.Stage == "" {
		r.Stage = StageIntake
	}
	if r.Brief == nil {
		r.Brief = map[string]string{}
	}
	if r.Decision.Status == "" {
		r.Decision.Status = "pending"
	}
}

// Session wraps a Record with its identity and timestamps for
// persistence and listing surfaces.
type Session struct {
	ID        string  `json:"id"`
	Title     *string `json:"title,omitempty"`
	Record    Record  `json:"record"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}
