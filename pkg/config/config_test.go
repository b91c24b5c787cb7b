package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	tests := []struct {
		name         string
		yaml         string
		wantPort     int
		wantQuality  int
		wantFPSLimit int
		wantTunnel   bool
	}{
		{
			name: "full config",
			yaml: `
port: 6000
quality: 80
fps_limit: 15
tunnel: true
`,
			wantPort:     6000,
			wantQuality:  80,
			wantFPSLimit: 15,
			wantTunnel:   true,
		},
		{
			name:         "sparse config keeps defaults",
			yaml:         `port: 7000`,
			wantPort:     7000,
			wantQuality:  50,
			wantFPSLimit: 30,
			wantTunnel:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.yaml), 0600); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if cfg.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", cfg.Port, tt.wantPort)
			}
			if cfg.Quality != tt.wantQuality {
				t.Errorf("Quality = %d, want %d", cfg.Quality, tt.wantQuality)
			}
			if cfg.FPSLimit != tt.wantFPSLimit {
				t.Errorf("FPSLimit = %d, want %d", cfg.FPSLimit, tt.wantFPSLimit)
			}
			if cfg.Tunnel != tt.wantTunnel {
				t.Errorf("Tunnel = %v, want %v", cfg.Tunnel, tt.wantTunnel)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load succeeded for a missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Port = 9000
	cfg.Debug = true
	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !Exists(configPath) {
		t.Error("Exists = false after Save")
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Port != 9000 || !loaded.Debug {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port 65535 leaves no room for command channel", mutate: func(c *Config) { c.Port = 65535 }, wantErr: true},
		{name: "quality over 100", mutate: func(c *Config) { c.Quality = 101 }, wantErr: true},
		{name: "fps zero", mutate: func(c *Config) { c.FPSLimit = 0 }, wantErr: true},
		{name: "negative display", mutate: func(c *Config) { c.Display = -1 }, wantErr: true},
		{name: "bad metrics port", mutate: func(c *Config) { c.MetricsPort = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
