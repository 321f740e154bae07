package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/finvault/chief/pkg/assistant"
)

// ChiefConfig defines the structure of chief.yml. The file is looked up in
// the working directory first, then in ~/.config/chief/.
type ChiefConfig struct {
	Model                      string              `yaml:"model"`
	FallbackModel              string              `yaml:"fallback_model"`
	EnableAutonomousActions    bool                `yaml:"enable_autonomous_actions"`
	RequireApprovalForHighRisk *bool               `yaml:"require_approval_for_high_risk"` // nil = true
	AttemptTimeout             time.Duration       `yaml:"attempt_timeout"`
	TranscriptDirectory        string              `yaml:"transcript_directory"`
	ActionService              ActionServiceConfig `yaml:"action_service"`
}

// ActionServiceConfig points at the backend that performs approved actions.
// When URL is empty, approved actions are only logged.
type ActionServiceConfig struct {
	URL       string `yaml:"url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

const configFileName = "chief.yml"

// loadChiefConfig loads .env (if present) and the first chief.yml found.
// A missing config file is not an error; flags and defaults cover everything.
func loadChiefConfig() (*ChiefConfig, error) {
	_ = godotenv.Load()

	cfg := &ChiefConfig{}

	path := configFileName
	if _, err := os.Stat(path); err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "chief", configFileName)
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// assistantConfig converts the file config into session options.
func (c *ChiefConfig) assistantConfig() assistant.Config {
	return assistant.Config{
		PrimaryProvider:            c.Model,
		FallbackProvider:           c.FallbackModel,
		EnableAutonomousActions:    c.EnableAutonomousActions,
		RequireApprovalForHighRisk: c.RequireApprovalForHighRisk,
		AttemptTimeout:             c.AttemptTimeout,
	}
}

// executors builds the registry for this config: a service-backed executor
// when a backend URL is configured, otherwise log-only.
func (c *ChiefConfig) executors(serviceURL string) *assistant.ExecutorRegistry {
	url := serviceURL
	if url == "" {
		url = c.ActionService.URL
	}
	if url == "" {
		return assistant.NewExecutorRegistry(assistant.NewLogExecutor(nil))
	}

	apiKey := ""
	if c.ActionService.APIKeyEnv != "" {
		apiKey = os.Getenv(c.ActionService.APIKeyEnv)
	}
	return assistant.NewExecutorRegistry(assistant.NewServiceExecutor(url, apiKey))
}

// transcriptPath resolves where a session transcript should live. An explicit
// path wins; otherwise the configured transcript directory plus the title.
func (c *ChiefConfig) transcriptPath(explicit, title string) string {
	if explicit != "" {
		return explicit
	}
	if c.TranscriptDirectory == "" || title == "" {
		return ""
	}
	return filepath.Join(c.TranscriptDirectory, title+".md")
}
