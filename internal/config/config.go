// Package config resolves the runtime configuration for the CRF capture
// tools from environment variables (CRF_ prefix) and an optional YAML file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the CLI needs to open a capture session.
type Config struct {
	// APIBaseURL points at the study backend, e.g. http://localhost:8080/api.
	APIBaseURL string `mapstructure:"api_base_url"`
	// APIToken, when set, is sent as a bearer token on every request.
	APIToken string `mapstructure:"api_token"`
	// SchemaSource locates the form definition: a file path, or empty to
	// load the variable catalog from the backend.
	SchemaSource string `mapstructure:"schema_source"`
	// DraftDB is the SQLite database path for local drafts. ":memory:"
	// keeps drafts for the process lifetime only.
	DraftDB string `mapstructure:"draft_db"`
	// AutosaveInterval is how often dirty sessions snapshot to the draft
	// store. Zero falls back to the built-in default.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
	// EditorID identifies the user recorded on answer submissions.
	EditorID int64 `mapstructure:"editor_id"`
	// RecruiterID identifies the user recorded on participant creation.
	RecruiterID int64 `mapstructure:"recruiter_id"`
	// Policy selects the completeness audit: "strict" or "lenient".
	Policy string `mapstructure:"policy"`
	// LogLevel is a zerolog level name; empty means "info".
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration with this precedence: explicit file (when path
// is non-empty), then CRF_-prefixed environment variables, then defaults.
// A missing config file is only an error when it was named explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRF")
	v.AutomaticEnv()

	v.SetDefault("api_base_url", "http://localhost:8080/api")
	v.SetDefault("draft_db", "crf-drafts.db")
	v.SetDefault("autosave_interval", 15*time.Second)
	v.SetDefault("editor_id", 1)
	v.SetDefault("recruiter_id", 1)
	v.SetDefault("policy", "strict")
	v.SetDefault("log_level", "info")

	for _, key := range []string{
		"api_base_url", "api_token", "schema_source", "draft_db",
		"autosave_interval", "editor_id", "recruiter_id", "policy", "log_level",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the tools cannot run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" && c.SchemaSource == "" {
		return fmt.Errorf("config: either api_base_url or schema_source must be set")
	}
	if c.Policy != "strict" && c.Policy != "lenient" {
		return fmt.Errorf("config: policy must be \"strict\" or \"lenient\", got %q", c.Policy)
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("config: autosave_interval must not be negative")
	}
	return nil
}
