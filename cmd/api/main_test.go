package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"meeting-minutes-go/internal/pipeline"
)

type fakeStarter struct {
	fileIDs []string
}

func (f *fakeStarter) StartProcessing(ctx context.Context, sourceFileID string) (pipeline.StartResult, error) {
	f.fileIDs = append(f.fileIDs, sourceFileID)
	return pipeline.StartResult{MeetingID: "m-" + sourceFileID, Started: true}, nil
}

type fakeChecker struct {
	recording bool
}

func (f fakeChecker) IsRecording(ctx context.Context, sourceFileID string) (bool, error) {
	return f.recording, nil
}

func webhookRequest(state, changed string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/webhook/drive", nil)
	r.Header.Set("X-Goog-Resource-State", state)
	r.Header.Set("X-Goog-Resource-ID", "channel-resource-1")
	if changed != "" {
		r.Header.Set("X-Goog-Changed", changed)
	}
	return r
}

func TestWebhookUsesChangedFileID(t *testing.T) {
	orch := &fakeStarter{}
	h := webhookHandler(orch, nil)

	w := httptest.NewRecorder()
	h(w, webhookRequest("update", "drive-file-abc"))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusAccepted)
	}

	w = httptest.NewRecorder()
	h(w, webhookRequest("update", "drive-file-def"))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusAccepted)
	}

	// Each notification must be keyed by its own changed file, not by the
	// channel's constant resource ID.
	if len(orch.fileIDs) != 2 || orch.fileIDs[0] != "drive-file-abc" || orch.fileIDs[1] != "drive-file-def" {
		t.Errorf("triggered file IDs = %v, want [drive-file-abc drive-file-def]", orch.fileIDs)
	}
}

func TestWebhookAcksSyncWithoutTrigger(t *testing.T) {
	orch := &fakeStarter{}
	h := webhookHandler(orch, nil)

	w := httptest.NewRecorder()
	h(w, webhookRequest("sync", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(orch.fileIDs) != 0 {
		t.Errorf("sync notification triggered processing of %v", orch.fileIDs)
	}
}

func TestWebhookIgnoresOtherStates(t *testing.T) {
	orch := &fakeStarter{}
	h := webhookHandler(orch, nil)

	w := httptest.NewRecorder()
	h(w, webhookRequest("trash", "drive-file-abc"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(orch.fileIDs) != 0 {
		t.Errorf("trash notification triggered processing of %v", orch.fileIDs)
	}
}

func TestWebhookSkipsNonRecordings(t *testing.T) {
	orch := &fakeStarter{}
	h := webhookHandler(orch, fakeChecker{recording: false})

	w := httptest.NewRecorder()
	h(w, webhookRequest("update", "slides-file"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(orch.fileIDs) != 0 {
		t.Errorf("non-video file triggered processing of %v", orch.fileIDs)
	}

	h = webhookHandler(orch, fakeChecker{recording: true})
	w = httptest.NewRecorder()
	h(w, webhookRequest("update", "meet-recording"))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusAccepted)
	}
	if len(orch.fileIDs) != 1 || orch.fileIDs[0] != "meet-recording" {
		t.Errorf("triggered file IDs = %v, want [meet-recording]", orch.fileIDs)
	}
}

func TestWebhookRejectsBadToken(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "s3cret")

	orch := &fakeStarter{}
	h := webhookHandler(orch, nil)

	r := webhookRequest("update", "drive-file-abc")
	r.Header.Set("X-Goog-Channel-Token", "wrong")
	w := httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if len(orch.fileIDs) != 0 {
		t.Errorf("unauthenticated notification triggered processing of %v", orch.fileIDs)
	}

	r = webhookRequest("update", "drive-file-abc")
	r.Header.Set("X-Goog-Channel-Token", "s3cret")
	w = httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status with valid token = %d, want %d", w.Code, http.StatusAccepted)
	}
}
