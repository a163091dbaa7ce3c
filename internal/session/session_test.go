package session

import (
	"encoding/json"
	"testing"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		input string
		want  Stage
		ok    bool
	}{
		{"intake", StageIntake, true},
		{"  Viability ", StageViability, true},
		{"VISUALS", StageVisuals, true},
		{"spec", StageSpec, true},
		{"sourcing", StageSourcing, true},
		{"final", StageFinal, true},
		{"launch", "", false},
		{"", "", false},
		{"spec ", StageSpec, true},
	}

	for _, tt := range tests {
		got, ok := ParseStage(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseStage(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStageIndex_Ordering(t *testing.T) {
	prev := -1
	for _, st := range Sequence {
		idx := StageIndex(st)
		if idx != prev+1 {
			t.Errorf("StageIndex(%q) = %d, want %d", st, idx, prev+1)
		}
		prev = idx
	}

	if idx := StageIndex("bogus"); idx != -1 {
		t.Errorf("StageIndex(bogus) = %d, want -1", idx)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Bar Soap  ", "bar soap"},
		{"FORMAT", "format"},
		{"multi   space\tkey", "multi space key"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewRecord_Defaults(t *testing.T) {
	r := NewRecord()

	if r.Stage != StageIntake {
		t.Errorf("Stage = %q, want intake", r.Stage)
	}
	if r.AwaitingApproval {
		t.Error("AwaitingApproval should default to false")
	}
	if r.Approvals.Viability || r.Approvals.Visuals || r.Approvals.Spec {
		t.Error("approvals should default to false")
	}
	if r.Decision.Status != "pending" {
		t.Errorf("Decision.Status = %q, want pending", r.Decision.Status)
	}
	if r.SelectedVisual.OptionID != nil {
		t.Error("SelectedVisual.OptionID should default to nil")
	}
	if len(r.Outputs.Images) != 0 || r.Outputs.Spec != nil {
		t.Error("outputs should default to empty")
	}
}

// A record written by an older schema version may be missing whole
// sub-structures; Materialize must make it writable without crashing.
func TestMaterialize_LegacyRecord(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"stage":"viability"}`), &r); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	r.Materialize()

	if r.Stage != StageViability {
		t.Errorf("Stage = %q, want viability", r.Stage)
	}
	if r.Brief == nil {
		t.Fatal("Brief map not materialized")
	}
	r.Brief["format"] = "bar soap" // must not panic
	if r.Decision.Status != "pending" {
		t.Errorf("Decision.Status = %q, want pending", r.Decision.Status)
	}
}

func TestMaterialize_EmptyStage(t *testing.T) {
	r := Record{}
	r.Materialize()
	if r.Stage != StageIntake {
		t.Errorf("Stage = %q, want intake", r.Stage)
	}
}
