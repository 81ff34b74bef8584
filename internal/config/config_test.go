package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("storage backend = %s, want memory", cfg.Storage.Backend)
	}
	if cfg.Storage.Collection != "meetings" {
		t.Errorf("collection = %s, want meetings", cfg.Storage.Collection)
	}
	if cfg.Media.Source != "local" {
		t.Errorf("media source = %s, want local", cfg.Media.Source)
	}
	if cfg.Transcribe.Model != "whisper-1" {
		t.Errorf("transcribe model = %s, want whisper-1", cfg.Transcribe.Model)
	}
	if cfg.Insights.Backend != "openai" {
		t.Errorf("insights backend = %s, want openai", cfg.Insights.Backend)
	}
	if cfg.Insights.Model != "gpt-4-turbo-preview" {
		t.Errorf("insights model = %s, want gpt-4-turbo-preview", cfg.Insights.Model)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %s, want info", cfg.Logging.Level)
	}
}

func TestGeminiDefaultModel(t *testing.T) {
	path := writeConfig(t, "insights:\n  backend: gemini\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Insights.Model != "gemini-2.5-flash" {
		t.Errorf("insights model = %s, want gemini-2.5-flash", cfg.Insights.Model)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown storage backend", "storage:\n  backend: dynamo\n"},
		{"firestore without project", "storage:\n  backend: firestore\n"},
		{"gcs without bucket", "media:\n  source: gcs\n"},
		{"unknown insights backend", "insights:\n  backend: llama\n"},
		{"watcher without inbox", "watcher:\n  enabled: true\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Errorf("expected validation error for %q", tc.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
