package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"glimpse/internal/shared/constants"
)

// Config holds the host configuration
type Config struct {
	// Network
	Port     int    `yaml:"port"`      // Video channel port; command channel uses port+1
	BindHost string `yaml:"bind_host"` // Interface to listen on; empty means all interfaces

	// Streaming
	Quality  int `yaml:"quality"`   // JPEG quality 0-100
	FPSLimit int `yaml:"fps_limit"` // Frame rate ceiling
	Display  int `yaml:"display"`   // Display index to capture

	// Tunneling
	Tunnel   bool   `yaml:"tunnel"`              // Open public tunnels on start
	AgentURL string `yaml:"agent_url,omitempty"` // Tunnel agent API address

	// Observability
	MetricsPort int  `yaml:"metrics_port,omitempty"` // Prometheus endpoint port, 0 disables
	Debug       bool `yaml:"debug"`
}

// Default returns a config with the stock settings.
func Default() *Config {
	return &Config{
		Port:     constants.DefaultVideoPort,
		Quality:  constants.DefaultQuality,
		FPSLimit: constants.DefaultFPSLimit,
		AgentURL: constants.DefaultAgentURL,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65534 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65534 (the command channel needs port+1)", c.Port)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("invalid quality %d: must be between 0 and 100", c.Quality)
	}
	if c.FPSLimit < constants.MinFPSLimit {
		return fmt.Errorf("invalid fps limit %d: must be at least %d", c.FPSLimit, constants.MinFPSLimit)
	}
	if c.Display < 0 {
		return fmt.Errorf("invalid display index %d", c.Display)
	}
	if c.MetricsPort != 0 && (c.MetricsPort < 1 || c.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port %d", c.MetricsPort)
	}
	return nil
}

// DefaultConfigPath returns the default configuration path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".glimpse", "config.yaml")
	}
	return filepath.Join(home, ".glimpse", "config.yaml")
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves configuration to file
func Save(config *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists
func Exists(path string) bool {
	if path == "" {
		path = DefaultConfigPath()
	}
	_, err := os.Stat(path)
	return err == nil
}
