package ops

import (
	"reflect"
	"strings"
	"testing"
)

func TestRecordBrief_NormalizesKey(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	out, err := RecordBrief(database, RecordBriefInput{SessionID: id, Key: "  FORMAT ", Value: " bar soap "})
	if err != nil {
		t.Fatalf("RecordBrief failed: %v", err)
	}
	if out.Message != "Brief updated." {
		t.Errorf("message = %q", out.Message)
	}

	r := getRecord(t, database, id)
	if r.Brief["format"] != "bar soap" {
		t.Errorf("Brief[format] = %q, want %q", r.Brief["format"], "bar soap")
	}
}

func TestRecordBrief_OverwriteAndPermissiveEmpty(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	if _, err := RecordBrief(database, RecordBriefInput{SessionID: id, Key: "goal", Value: "relaxation"}); err != nil {
		t.Fatalf("RecordBrief failed: %v", err)
	}
	if _, err := RecordBrief(database, RecordBriefInput{SessionID: id, Key: "GOAL", Value: "recovery"}); err != nil {
		t.Fatalf("RecordBrief overwrite failed: %v", err)
	}

	// Empty key/value are written as given, not rejected.
	if _, err := RecordBrief(database, RecordBriefInput{SessionID: id, Key: "", Value: ""}); err != nil {
		t.Fatalf("RecordBrief empty failed: %v", err)
	}

	r := getRecord(t, database, id)
	if r.Brief["goal"] != "recovery" {
		t.Errorf("Brief[goal] = %q, want %q", r.Brief["goal"], "recovery")
	}
	if v, ok := r.Brief[""]; !ok || v != "" {
		t.Errorf("Brief[\"\"] = (%q, %v), want empty entry present", v, ok)
	}
}

func TestRecordVisualChoice_OverwritesWholesale(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	if _, err := RecordVisualChoice(database, RecordVisualChoiceInput{SessionID: id, OptionID: " option 2 ", Notes: "likes the sage palette"}); err != nil {
		t.Fatalf("RecordVisualChoice failed: %v", err)
	}

	r := getRecord(t, database, id)
	if r.SelectedVisual.OptionID == nil || *r.SelectedVisual.OptionID != "option 2" {
		t.Errorf("OptionID = %v, want option 2", r.SelectedVisual.OptionID)
	}
	if r.SelectedVisual.Notes != "likes the sage palette" {
		t.Errorf("Notes = %q", r.SelectedVisual.Notes)
	}

	// Second choice replaces, never merges; empty notes allowed.
	if _, err := RecordVisualChoice(database, RecordVisualChoiceInput{SessionID: id, OptionID: "option 3"}); err != nil {
		t.Fatalf("RecordVisualChoice failed: %v", err)
	}
	r = getRecord(t, database, id)
	if *r.SelectedVisual.OptionID != "option 3" || r.SelectedVisual.Notes != "" {
		t.Errorf("SelectedVisual = %+v, want option 3 with empty notes", r.SelectedVisual)
	}
}

func TestRecordSpec_OpenItemsReplaceQuestionsOnly(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	conf := 0.7
	if _, err := RecordDecision(database, RecordDecisionInput{SessionID: id, Status: "viable", Confidence: &conf}); err != nil {
		t.Fatalf("RecordDecision failed: %v", err)
	}

	out, err := RecordSpec(database, RecordSpecInput{
		SessionID: id,
		Summary:   "A calming lavender trail soap.",
		BOM:       "lavender oil — 4%\n\nshea butter — 20%\n  ",
		OpenItems: "Q1\nQ2",
	})
	if err != nil {
		t.Fatalf("RecordSpec failed: %v", err)
	}
	if out.Message != "Spec saved." {
		t.Errorf("message = %q", out.Message)
	}

	r := getRecord(t, database, id)
	if r.Outputs.Spec == nil || *r.Outputs.Spec != "A calming lavender trail soap." {
		t.Errorf("Spec = %v", r.Outputs.Spec)
	}
	if !reflect.DeepEqual(r.Outputs.BOM, []string{"lavender oil — 4%", "shea butter — 20%"}) {
		t.Errorf("BOM = %v", r.Outputs.BOM)
	}
	if !reflect.DeepEqual(r.Decision.OpenQuestions, []string{"Q1", "Q2"}) {
		t.Errorf("OpenQuestions = %v", r.Decision.OpenQuestions)
	}
	// Other decision fields untouched
	if r.Decision.Status != "viable" || r.Decision.Confidence != 0.7 {
		t.Errorf("Decision = %+v, want status/confidence preserved", r.Decision)
	}
}

func TestRecordSpec_OmittedBlocksLeaveFields(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	if _, err := RecordSpec(database, RecordSpecInput{SessionID: id, Summary: "v1", BOM: "x", OpenItems: "Q1"}); err != nil {
		t.Fatalf("RecordSpec failed: %v", err)
	}
	if _, err := RecordSpec(database, RecordSpecInput{SessionID: id, Summary: "v2"}); err != nil {
		t.Fatalf("RecordSpec failed: %v", err)
	}

	r := getRecord(t, database, id)
	if *r.Outputs.Spec != "v2" {
		t.Errorf("Spec = %q, want v2", *r.Outputs.Spec)
	}
	if !reflect.DeepEqual(r.Outputs.BOM, []string{"x"}) {
		t.Errorf("BOM = %v, want preserved", r.Outputs.BOM)
	}
	if !reflect.DeepEqual(r.Decision.OpenQuestions, []string{"Q1"}) {
		t.Errorf("OpenQuestions = %v, want preserved", r.Decision.OpenQuestions)
	}
}

func TestRecordIngredients_SplitsAndTrims(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	if _, err := RecordIngredients(database, RecordIngredientsInput{
		SessionID:   id,
		Ingredients: "Lavender oil\n\nShea butter\n  ",
	}); err != nil {
		t.Fatalf("RecordIngredients failed: %v", err)
	}

	r := getRecord(t, database, id)
	if !reflect.DeepEqual(r.Outputs.Ingredients, []string{"Lavender oil", "Shea butter"}) {
		t.Errorf("Ingredients = %v", r.Outputs.Ingredients)
	}
}

func TestRecordManufacturers_Overwrites(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	if _, err := RecordManufacturers(database, RecordManufacturersInput{SessionID: id, Manufacturers: "Acme Soapworks — OR, USA"}); err != nil {
		t.Fatalf("RecordManufacturers failed: %v", err)
	}
	if _, err := RecordManufacturers(database, RecordManufacturersInput{SessionID: id, Manufacturers: "Cascadia Botanicals\nPacific Soap Co"}); err != nil {
		t.Fatalf("RecordManufacturers failed: %v", err)
	}

	r := getRecord(t, database, id)
	if !reflect.DeepEqual(r.Outputs.Manufacturers, []string{"Cascadia Botanicals", "Pacific Soap Co"}) {
		t.Errorf("Manufacturers = %v", r.Outputs.Manufacturers)
	}
}

func TestRecordImage_AppendOnly(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	for _, url := range []string{"https://example/img1", "https://example/img2"} {
		if _, err := RecordImage(database, RecordImageInput{SessionID: id, Prompt: "lavender bar", URL: url}); err != nil {
			t.Fatalf("RecordImage failed: %v", err)
		}
	}

	r := getRecord(t, database, id)
	if len(r.Outputs.Images) != 2 {
		t.Fatalf("Images = %v, want 2 entries", r.Outputs.Images)
	}
	if r.Outputs.Images[0].URL != "https://example/img1" || r.Outputs.Images[1].URL != "https://example/img2" {
		t.Errorf("Images out of order: %v", r.Outputs.Images)
	}
}

func TestMutators_MissingSession(t *testing.T) {
	database := newTestDB(t)

	if _, err := RecordBrief(database, RecordBriefInput{SessionID: "nope", Key: "k", Value: "v"}); err == nil {
		t.Error("RecordBrief on missing session should error")
	}
	if _, err := RecordBrief(database, RecordBriefInput{SessionID: "", Key: "k", Value: "v"}); err == nil {
		t.Error("RecordBrief with empty session_id should error")
	} else if !strings.Contains(err.Error(), "session_id") {
		t.Errorf("error = %v, want session_id mention", err)
	}
}
