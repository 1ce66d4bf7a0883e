package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 8080

logging:
  dir: "/var/log/talkengine"
  retention_days: 14

engine:
  clarify_threshold: 0.8
  feedback_prompts: true

strategies:
  classification: "api"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Logging.RetentionDays != 14 {
		t.Errorf("Logging.RetentionDays = %d, want %d", cfg.Logging.RetentionDays, 14)
	}
	if cfg.Engine.ClarifyThreshold != 0.8 {
		t.Errorf("Engine.ClarifyThreshold = %v, want 0.8", cfg.Engine.ClarifyThreshold)
	}
	if !cfg.Engine.FeedbackPrompts {
		t.Error("Engine.FeedbackPrompts = false, want true")
	}
	if cfg.Strategies.Classification != "api" {
		t.Errorf("Strategies.Classification = %q, want %q", cfg.Strategies.Classification, "api")
	}

	// Defaults fill everything the file leaves out.
	if cfg.Strategies.Generation != "template" {
		t.Errorf("Strategies.Generation = %q, want default template", cfg.Strategies.Generation)
	}
	if cfg.Sessions.IdleTimeoutMinutes != 30 {
		t.Errorf("Sessions.IdleTimeoutMinutes = %d, want default 30", cfg.Sessions.IdleTimeoutMinutes)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_TALKENGINE_TOKEN", "secret-token")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
catalog:
  github_token: "${TEST_TALKENGINE_TOKEN}"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Catalog.GitHubToken != "secret-token" {
		t.Errorf("Catalog.GitHubToken = %q, want substituted value", cfg.Catalog.GitHubToken)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("TALKENGINE_PORT", "9100")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want environment override 9100", cfg.Server.Port)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TALKENGINE_HOST", "10.0.0.5")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Server.Host != "10.0.0.5" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "10.0.0.5")
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want default 7000", cfg.Server.Port)
	}
}
