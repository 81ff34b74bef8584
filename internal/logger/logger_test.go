package logger

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"info":    logrus.InfoLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithRequestGeneratesRequestID(t *testing.T) {
	l := New()
	r := httptest.NewRequest("GET", "/healthz", nil)

	entry := l.WithRequest(r)
	if entry.Data["req_id"] == "" {
		t.Error("expected generated req_id when header absent")
	}
	if entry.Data["path"] != "/healthz" {
		t.Errorf("path = %v, want /healthz", entry.Data["path"])
	}

	r.Header.Set("User-Agent", "APIs-Google")
	entry = l.WithRequest(r)
	if entry.Data["user_agent"] != "APIs-Google" {
		t.Errorf("user_agent = %v, want APIs-Google", entry.Data["user_agent"])
	}

	r.Header.Set("X-Request-ID", "req-123")
	entry = l.WithRequest(r)
	if entry.Data["req_id"] != "req-123" {
		t.Errorf("req_id = %v, want req-123", entry.Data["req_id"])
	}
}

func TestWithError(t *testing.T) {
	l := New()
	if entry := l.WithError(nil); len(entry.Data) != 0 {
		t.Errorf("WithError(nil) added fields: %v", entry.Data)
	}
	entry := l.WithError(errors.New("boom"))
	if entry.Data["error"] != "boom" {
		t.Errorf("error field = %v, want boom", entry.Data["error"])
	}
}
