package types

import "testing"

// TestValidTransition covers every allowed edge and a few forbidden ones.
func TestValidTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusProcessing, StatusDraftReady},
		{StatusProcessing, StatusError},
		{StatusDraftReady, StatusSent},
		{StatusDraftReady, StatusProcessing},
		{StatusError, StatusProcessing},
		{StatusSent, StatusDraftReady},
		{StatusSent, StatusProcessing},
	}
	for _, tr := range allowed {
		if !ValidTransition(tr.from, tr.to) {
			t.Errorf("ValidTransition(%s, %s) = false, want true", tr.from, tr.to)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusProcessing, StatusSent},
		{StatusError, StatusDraftReady},
		{StatusError, StatusSent},
		{StatusDraftReady, StatusError},
		{StatusSent, StatusError},
		{Status("bogus"), StatusProcessing},
	}
	for _, tr := range forbidden {
		if ValidTransition(tr.from, tr.to) {
			t.Errorf("ValidTransition(%s, %s) = true, want false", tr.from, tr.to)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusProcessing, StatusDraftReady, StatusSent, StatusError} {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	if Status("done").Valid() {
		t.Error(`Status("done").Valid() = true, want false`)
	}
}
