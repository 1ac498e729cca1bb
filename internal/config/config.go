package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Paths   Paths   `yaml:"paths"`
	Fetch   Fetch   `yaml:"fetch"`
	Enrich  Enrich  `yaml:"enrich"`
	Logging Logging `yaml:"logging"`
}

// Paths locates the pipeline's data files. Empty fields fall back to
// well-known names under the data directory.
type Paths struct {
	DataDir    string `yaml:"data_dir"`
	Decisions  string `yaml:"decisions"`
	CaseTable  string `yaml:"case_table"`
	Checkpoint string `yaml:"checkpoint"`
	CourtMap   string `yaml:"court_map"`
}

type Fetch struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

type Enrich struct {
	ChunkSize int `yaml:"chunk_size"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for infosoud.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "infosoud")
}

// DataDir returns the XDG data directory for infosoud.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "infosoud")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/infosoud/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'infosoud init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Fetch: Fetch{
			BaseURL:        "https://infosoud.justice.cz/InfoSoud/public/search.do",
			TimeoutSeconds: 15,
			UserAgent:      "infosoud-enricher/1.0",
		},
		Enrich:  Enrich{ChunkSize: 50},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Paths.DataDir != "" {
		return c.Paths.DataDir
	}
	return DataDir()
}

// DecisionsPath returns the raw decisions export path.
func (c *Config) DecisionsPath() string {
	if c.Paths.Decisions != "" {
		return c.Paths.Decisions
	}
	return filepath.Join(c.GetDataDir(), "decisions.csv")
}

// CaseTablePath returns the prepared case table path.
func (c *Config) CaseTablePath() string {
	if c.Paths.CaseTable != "" {
		return c.Paths.CaseTable
	}
	return filepath.Join(c.GetDataDir(), "preprocessed_decisions.csv")
}

// CheckpointPath returns the enrichment checkpoint path.
func (c *Config) CheckpointPath() string {
	if c.Paths.Checkpoint != "" {
		return c.Paths.Checkpoint
	}
	return filepath.Join(c.GetDataDir(), "infosoud_checkpoint.csv")
}

// DatabasePath returns the run-history database path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.GetDataDir(), "infosoud.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
