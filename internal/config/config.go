package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Engine     EngineConfig     `yaml:"engine"`
	Strategies StrategiesConfig `yaml:"strategies"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	Catalog    CatalogConfig    `yaml:"catalog"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string  `yaml:"host" env:"TALKENGINE_HOST"`
	Port      int     `yaml:"port" env:"TALKENGINE_PORT"`
	RateLimit float64 `yaml:"rate_limit" env:"TALKENGINE_RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"TALKENGINE_RATE_BURST"`
}

// LoggingConfig holds logging and transcript settings.
type LoggingConfig struct {
	Level         string `yaml:"level" env:"TALKENGINE_LOG_LEVEL"`
	Dir           string `yaml:"dir" env:"TALKENGINE_LOG_DIR"`
	RetentionDays int    `yaml:"retention_days" env:"TALKENGINE_LOG_RETENTION_DAYS"`
}

// EngineConfig holds pipeline behavior settings.
type EngineConfig struct {
	ClarifyThreshold float64 `yaml:"clarify_threshold" env:"TALKENGINE_CLARIFY_THRESHOLD"`
	FeedbackPrompts  bool    `yaml:"feedback_prompts" env:"TALKENGINE_FEEDBACK_PROMPTS"`
}

// StrategiesConfig selects the strategy implementation per pipeline role
// and carries credentials for network-backed strategies.
type StrategiesConfig struct {
	Classification string `yaml:"classification" env:"TALKENGINE_CLASSIFICATION"`
	Extraction     string `yaml:"extraction" env:"TALKENGINE_EXTRACTION"`
	Generation     string `yaml:"generation" env:"TALKENGINE_GENERATION"`
	APIKey         string `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	Model          string `yaml:"model" env:"TALKENGINE_MODEL"`
	BaseURL        string `yaml:"base_url" env:"TALKENGINE_API_BASE_URL"`
}

// SessionsConfig holds session lifecycle settings.
type SessionsConfig struct {
	MaxSessions        int `yaml:"max_sessions" env:"TALKENGINE_MAX_SESSIONS"`
	IdleTimeoutMinutes int `yaml:"idle_timeout_minutes" env:"TALKENGINE_SESSION_IDLE_MINUTES"`
	SweepSeconds       int `yaml:"sweep_seconds" env:"TALKENGINE_SESSION_SWEEP_SECONDS"`
}

// CatalogConfig points at the command catalog and carries credentials for
// builtin executables.
type CatalogConfig struct {
	Path        string   `yaml:"path" env:"TALKENGINE_CATALOG"`
	Builtins    []string `yaml:"builtins"`
	GitHubToken string   `yaml:"github_token" env:"GITHUB_TOKEN"`
	GitLabToken string   `yaml:"gitlab_token" env:"GITLAB_TOKEN"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      7000,
			RateLimit: 5,
			RateBurst: 10,
		},
		Logging: LoggingConfig{
			Level:         "info",
			Dir:           "/var/log/talkengine",
			RetentionDays: 30,
		},
		Engine: EngineConfig{
			ClarifyThreshold: 0.7,
		},
		Strategies: StrategiesConfig{
			Classification: "keyword",
			Extraction:     "noop",
			Generation:     "template",
			Model:          "claude-sonnet-4-20250514",
		},
		Sessions: SessionsConfig{
			MaxSessions:        100,
			IdleTimeoutMinutes: 30,
			SweepSeconds:       60,
		},
	}
}

// Load reads and parses the config file at the given path. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a config from defaults and environment variables alone,
// used when no config file is given.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	return cfg, nil
}
