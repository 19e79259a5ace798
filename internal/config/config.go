// Package config loads and persists the gateway configuration.
//
// Configuration lives in a single YAML file under the data directory.
// Environment variables referenced as ${VAR} are expanded at load time,
// and a .env file next to the config is honored when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultShellTimeoutMs is the shell action timeout applied when a
// request carries none.
const DefaultShellTimeoutMs = 60000

// Config holds the gateway configuration
type Config struct {
	// DataDir is where the database, workspace documents and skills live
	DataDir string `yaml:"data_dir"`

	// Assistant identity, updated when the user renames the assistant
	Assistant AssistantConfig `yaml:"assistant"`

	// Models is the fallback list, tried in order. Entries are
	// "provider/model" strings, e.g. "anthropic/claude-sonnet-4-5".
	Models []string `yaml:"models"`

	Providers ProvidersConfig `yaml:"providers"`
	Channels  ChannelsConfig  `yaml:"channels"`
	Browser   BrowserConfig   `yaml:"browser"`
	Shell     ShellConfig     `yaml:"shell"`

	// path the config was loaded from, for Save
	path string
}

// AssistantConfig holds the persona fields persisted in configuration
type AssistantConfig struct {
	Name     string `yaml:"name"`
	UserName string `yaml:"user_name"`
	Language string `yaml:"language"`
}

// ProvidersConfig holds API credentials per provider
type ProvidersConfig struct {
	Anthropic ProviderCredentials `yaml:"anthropic"`
	OpenAI    ProviderCredentials `yaml:"openai"`
}

// ProviderCredentials holds one provider's connection settings.
// BaseURL is optional and supports OpenAI-compatible local daemons.
type ProviderCredentials struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// ChannelsConfig enables and configures channel adapters
type ChannelsConfig struct {
	Console ConsoleChannelConfig `yaml:"console"`
	Webhook WebhookChannelConfig `yaml:"webhook"`
}

// ConsoleChannelConfig configures the local stdin/stdout channel
type ConsoleChannelConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WebhookChannelConfig configures the HTTP inbound/outbound channel
type WebhookChannelConfig struct {
	Enabled bool `yaml:"enabled"`
	// Listen is the HTTP listen address, e.g. ":8787"
	Listen string `yaml:"listen"`
	// CallbackURL receives outbound replies as JSON POSTs
	CallbackURL string `yaml:"callback_url"`
}

// BrowserConfig configures the remote-debugging endpoint used by the
// browser integration
type BrowserConfig struct {
	// ControlURL is the debugger HTTP endpoint, e.g. "http://127.0.0.1:9222"
	ControlURL string `yaml:"control_url"`
}

// ShellConfig configures the shell action executor
type ShellConfig struct {
	TimeoutMs int `yaml:"timeout_ms"`
}

// DefaultDataDir returns ~/.gnami, falling back to the working directory
// when the home directory cannot be resolved
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gnami"
	}
	return filepath.Join(home, ".gnami")
}

// Load reads the config file at path, expanding ${ENV} references.
// A missing file yields a default config bound to that path.
func Load(path string) (*Config, error) {
	// Best effort: pick up a .env sitting next to the config
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	cfg := &Config{path: path}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.path = path
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.Shell.TimeoutMs <= 0 {
		c.Shell.TimeoutMs = DefaultShellTimeoutMs
	}
	if c.Channels.Webhook.Listen == "" {
		c.Channels.Webhook.Listen = ":8787"
	}
	if c.Browser.ControlURL == "" {
		c.Browser.ControlURL = "http://127.0.0.1:9222"
	}
}

// Path returns the file the config was loaded from
func (c *Config) Path() string {
	return c.path
}

// Save writes the config back to the file it was loaded from
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no backing file")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
