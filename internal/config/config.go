package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Store backend
	Backend               string // "memory" or "firestore"
	GoogleProjectID       string
	GoogleCredentialsFile string

	// Identity Toolkit
	IdentityAPIKey string

	// BigQuery export
	BigQueryDataset string
	BigQueryTable   string

	// GCS backup
	BackupBucket string

	// Notion mirror
	NotionToken      string
	NotionDatabaseID string

	// Gemini category suggestions
	GeminiModel string

	// Notion sync loop
	SyncInterval time.Duration
	SyncDryRun   bool
}

// Load reads configuration from the environment, after loading a .env
// file when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Backend:               getEnv("LEDGER_BACKEND", "memory"),
		GoogleProjectID:       getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		IdentityAPIKey: getEnv("IDENTITY_API_KEY", ""),

		BigQueryDataset: getEnv("BIGQUERY_DATASET", "ledger"),
		BigQueryTable:   getEnv("BIGQUERY_TABLE", "transactions"),

		BackupBucket: getEnv("BACKUP_BUCKET", ""),

		NotionToken:      getEnv("NOTION_TOKEN", ""),
		NotionDatabaseID: getEnv("NOTION_DATABASE_ID", ""),

		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 5*time.Minute),
		SyncDryRun:   getEnvBool("SYNC_DRY_RUN", false),
	}
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Backend {
	case "memory":
	case "firestore":
		if c.GoogleProjectID == "" {
			problems = append(problems, "GOOGLE_PROJECT_ID is required for the firestore backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid backend '%s': must be 'memory' or 'firestore'", c.Backend))
	}

	if c.NotionToken != "" && c.NotionDatabaseID == "" {
		problems = append(problems, "NOTION_DATABASE_ID is required when NOTION_TOKEN is set")
	}

	if c.SyncInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
