package ops

import (
	"strings"
	"testing"
)

func TestSetAwaiting_Toggles(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	out, err := SetAwaiting(database, SetAwaitingInput{SessionID: id, Awaiting: true})
	if err != nil {
		t.Fatalf("SetAwaiting failed: %v", err)
	}
	if !out.Changed || out.Message != "awaiting_approval set to true." {
		t.Errorf("outcome = %+v", out)
	}
	if r := getRecord(t, database, id); !r.AwaitingApproval {
		t.Error("awaiting_approval should be true")
	}

	out, err = SetAwaiting(database, SetAwaitingInput{SessionID: id, Awaiting: false})
	if err != nil {
		t.Fatalf("SetAwaiting failed: %v", err)
	}
	if out.Message != "awaiting_approval set to false." {
		t.Errorf("message = %q", out.Message)
	}
	if r := getRecord(t, database, id); r.AwaitingApproval {
		t.Error("awaiting_approval should be false")
	}
}

func TestMarkApproval_KnownGates(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	for _, gate := range []string{"viability", "visuals", "spec"} {
		out, err := MarkApproval(database, MarkApprovalInput{SessionID: id, Gate: gate, Value: true})
		if err != nil {
			t.Fatalf("MarkApproval(%s) failed: %v", gate, err)
		}
		if !out.Changed {
			t.Errorf("MarkApproval(%s) should report a change", gate)
		}
		if want := "Marked " + gate + " approval as true."; out.Message != want {
			t.Errorf("message = %q, want %q", out.Message, want)
		}
	}

	r := getRecord(t, database, id)
	if !r.Approvals.Viability || !r.Approvals.Visuals || !r.Approvals.Spec {
		t.Errorf("approvals = %+v, want all true", r.Approvals)
	}
}

func TestMarkApproval_Revoke(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	if _, err := MarkApproval(database, MarkApprovalInput{SessionID: id, Gate: "viability", Value: true}); err != nil {
		t.Fatalf("MarkApproval failed: %v", err)
	}
	out, err := MarkApproval(database, MarkApprovalInput{SessionID: id, Gate: "viability", Value: false})
	if err != nil {
		t.Fatalf("MarkApproval failed: %v", err)
	}
	if out.Message != "Marked viability approval as false." {
		t.Errorf("message = %q", out.Message)
	}
	if r := getRecord(t, database, id); r.Approvals.Viability {
		t.Error("viability approval should be revoked")
	}
}

func TestMarkApproval_UnknownGateRejected(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	for _, gate := range []string{"vibes", "", "  ", "final"} {
		out, err := MarkApproval(database, MarkApprovalInput{SessionID: id, Gate: gate, Value: true})
		if err != nil {
			t.Fatalf("MarkApproval(%q) returned error: %v", gate, err)
		}
		if out.Changed {
			t.Errorf("MarkApproval(%q) should not change the record", gate)
		}
		if out.Message != "Approval untouched. Use viability, visuals, or spec." {
			t.Errorf("message = %q", out.Message)
		}
	}

	r := getRecord(t, database, id)
	if r.Approvals.Viability || r.Approvals.Visuals || r.Approvals.Spec {
		t.Errorf("approvals mutated by rejected call: %+v", r.Approvals)
	}
}

func TestMarkApproval_NormalizesGate(t *testing.T) {
	database := newTestDB(t)
	id := newTestSession(t, database)

	out, err := MarkApproval(database, MarkApprovalInput{SessionID: id, Gate: "  VIABILITY ", Value: true})
	if err != nil {
		t.Fatalf("MarkApproval failed: %v", err)
	}
	if !out.Changed || !strings.Contains(out.Message, "viability") {
		t.Errorf("outcome = %+v", out)
	}
	if r := getRecord(t, database, id); !r.Approvals.Viability {
		t.Error("viability approval should be set")
	}
}
