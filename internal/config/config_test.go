package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Backend)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("SyncInterval = %v", cfg.SyncInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "firestore")
	t.Setenv("GOOGLE_PROJECT_ID", "my-project")
	t.Setenv("SYNC_INTERVAL", "30s")
	t.Setenv("SYNC_DRY_RUN", "true")

	cfg := Load()
	if cfg.Backend != "firestore" || cfg.GoogleProjectID != "my-project" {
		t.Errorf("backend config not read: %+v", cfg)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("SyncInterval = %v", cfg.SyncInterval)
	}
	if !cfg.SyncDryRun {
		t.Error("SyncDryRun not read")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Backend = "postgres" },
			wantErr: "invalid backend",
		},
		{
			name:    "firestore without project",
			mutate:  func(c *Config) { c.Backend = "firestore" },
			wantErr: "GOOGLE_PROJECT_ID",
		},
		{
			name:    "notion token without database",
			mutate:  func(c *Config) { c.NotionToken = "secret" },
			wantErr: "NOTION_DATABASE_ID",
		},
		{
			name:    "sync interval too small",
			mutate:  func(c *Config) { c.SyncInterval = 100 * time.Millisecond },
			wantErr: "sync interval",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
