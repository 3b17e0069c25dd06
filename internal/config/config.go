/*
PURPOSE:
  Defines the configuration structure and loading logic for Prompt Tuner.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - OPENAI_API_KEY and ANTHROPIC_API_KEY are read at process start and
    injected into provider constructors.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support environment variable overrides (PROMPT_TUNER_...).
  - Base URLs are configurable so the tool can point at proxies or test servers.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Dependencies: gopkg.in/yaml.v3

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing default config file is not an error (falls back to defaults).

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Environment wins over the file; flags win over the environment.

USAGE:
  cfg, err := config.Load("prompt_tuner.yaml")
  cfg.ApplyEnv()

RELATED FILES:
  - internal/config/registry.go
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvListenAddr   = "PROMPT_TUNER_ADDR"
	EnvOutputDir    = "PROMPT_TUNER_OUTPUT_DIR"
)

// DefaultFiles are searched in order when no config path is given.
var DefaultFiles = []string{"prompt_tuner.yaml", "prompt-tuner.yaml", ".prompt-tuner.yaml"}

// ProviderConfig configures one vendor provider.
type ProviderConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
}

// Config represents the full configuration for Prompt Tuner.
type Config struct {
	ListenAddr string         `yaml:"listen_addr"`
	OutputDir  string         `yaml:"output_dir"`
	OutputFile string         `yaml:"output_file"` // CSV file name; the JSON-lines file shares its base name.
	OpenAI     ProviderConfig `yaml:"openai"`
	Anthropic  ProviderConfig `yaml:"anthropic"`

	// Source is the file the config was loaded from, if any.
	Source string `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: ":8000",
		OutputDir:  ".",
		OutputFile: "results.csv",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.Source = path

	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Empty variables are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvAnthropicKey); v != "" {
		c.Anthropic.APIKey = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
}
