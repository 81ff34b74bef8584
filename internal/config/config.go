package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Media      MediaConfig      `yaml:"media"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Diarize    DiarizeConfig    `yaml:"diarize"`
	Insights   InsightsConfig   `yaml:"insights"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port            string `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend"` // memory | firestore
	ProjectID  string `yaml:"project_id"`
	Collection string `yaml:"collection"`
}

type MediaConfig struct {
	Source  string `yaml:"source"` // drive | gcs | local
	Bucket  string `yaml:"bucket"`
	TempDir string `yaml:"temp_dir"`
}

type TranscribeConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type DiarizeConfig struct {
	// URL of the diarization service; empty disables diarization and every
	// segment falls back to a single speaker label.
	URL string `yaml:"url"`
}

type InsightsConfig struct {
	Backend string `yaml:"backend"` // openai | gemini
	Model   string `yaml:"model"`
}

type WatcherConfig struct {
	Enabled  bool   `yaml:"enabled"`
	InboxDir string `yaml:"inbox_dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads and validates a YAML config file. API keys are intentionally not
// part of the file; they come from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "memory":
		c.Storage.Backend = "memory"
	case "firestore":
		if c.Storage.ProjectID == "" {
			return fmt.Errorf("storage.project_id is required for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend: %s", c.Storage.Backend)
	}

	switch c.Media.Source {
	case "", "local":
		c.Media.Source = "local"
	case "drive":
	case "gcs":
		if c.Media.Bucket == "" {
			return fmt.Errorf("media.bucket is required for the gcs source")
		}
	default:
		return fmt.Errorf("unknown media.source: %s", c.Media.Source)
	}

	switch c.Insights.Backend {
	case "", "openai":
		c.Insights.Backend = "openai"
	case "gemini":
	default:
		return fmt.Errorf("unknown insights.backend: %s", c.Insights.Backend)
	}

	if c.Watcher.Enabled && c.Watcher.InboxDir == "" {
		return fmt.Errorf("watcher.inbox_dir is required when the watcher is enabled")
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = 15
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = 120
	}
	if c.Storage.Collection == "" {
		c.Storage.Collection = "meetings"
	}
	if c.Media.TempDir == "" {
		c.Media.TempDir = os.TempDir()
	}
	if c.Transcribe.Model == "" {
		c.Transcribe.Model = "whisper-1"
	}
	if c.Transcribe.BaseURL == "" {
		c.Transcribe.BaseURL = "https://api.openai.com/v1"
	}
	if c.Insights.Model == "" {
		if c.Insights.Backend == "gemini" {
			c.Insights.Model = "gemini-2.5-flash"
		} else {
			c.Insights.Model = "gpt-4-turbo-preview"
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
