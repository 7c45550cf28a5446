// Package config loads the engine configuration from the environment,
// layered on top of the device profile written by `caja init`.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Storage backend. Exactly one backend is bound at startup.
	Backend     string // CAJA_BACKEND ("sqlite" or "postgres", default "sqlite")
	SQLitePath  string // CAJA_SQLITE_PATH (default "caja.db")
	DatabaseURL string // CAJA_DATABASE_URL (required when backend is postgres)

	// Device identity. Defaults come from the profile; env wins.
	StoreID  string // CAJA_STORE_ID
	DeviceID string // CAJA_DEVICE_ID

	// Sync transport and cadence.
	BackendURL    string        // CAJA_BACKEND_URL (push endpoint; empty = drain disabled)
	AuthToken     string        // CAJA_AUTH_TOKEN (optional bearer token for pushes)
	DrainInterval time.Duration // CAJA_DRAIN_INTERVAL (default 30s; 0 = manual drain only)
	DrainBatch    int           // CAJA_DRAIN_BATCH (default 50)

	// Retry policy.
	MaxAttempts  int           // CAJA_MAX_ATTEMPTS (default 5)
	RetryInitial time.Duration // CAJA_RETRY_INITIAL (default 5s)
	RetryMax     time.Duration // CAJA_RETRY_MAX (default 5m)

	// Retention for synced events.
	Retention time.Duration // CAJA_RETENTION (default 168h)

	// Local event bus (optional, empty = no notifications).
	NATSURL string // CAJA_NATS_URL

	// Backup settings.
	BackupInterval time.Duration // CAJA_BACKUP_INTERVAL (default 0 = disabled)
	BackupPath     string        // CAJA_BACKUP_PATH (default "caja-backup.jsonl")
	BackupS3Bucket string        // CAJA_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Region string        // CAJA_BACKUP_S3_REGION (default "us-east-1")
	BackupS3Key    string        // CAJA_BACKUP_S3_KEY (default "caja/backup.jsonl")
	BackupS3URL    string        // CAJA_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
}

func Load() (*Config, error) {
	profile, err := LoadProfile()
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	c := &Config{
		Backend:        envOrDefault("CAJA_BACKEND", "sqlite"),
		SQLitePath:     envOrDefault("CAJA_SQLITE_PATH", "caja.db"),
		DatabaseURL:    os.Getenv("CAJA_DATABASE_URL"),
		StoreID:        envOrDefault("CAJA_STORE_ID", profile.StoreID),
		DeviceID:       envOrDefault("CAJA_DEVICE_ID", profile.DeviceID),
		BackendURL:     envOrDefault("CAJA_BACKEND_URL", profile.BackendURL),
		AuthToken:      envOrDefault("CAJA_AUTH_TOKEN", profile.AuthToken),
		NATSURL:        envOrDefault("CAJA_NATS_URL", profile.NATSURL),
		BackupPath:     envOrDefault("CAJA_BACKUP_PATH", "caja-backup.jsonl"),
		BackupS3Bucket: os.Getenv("CAJA_BACKUP_S3_BUCKET"),
		BackupS3Region: envOrDefault("CAJA_BACKUP_S3_REGION", "us-east-1"),
		BackupS3Key:    envOrDefault("CAJA_BACKUP_S3_KEY", "caja/backup.jsonl"),
		BackupS3URL:    os.Getenv("CAJA_BACKUP_S3_ENDPOINT"),
	}

	if c.Backend != "sqlite" && c.Backend != "postgres" {
		return nil, fmt.Errorf("CAJA_BACKEND: unknown backend %q", c.Backend)
	}
	if c.Backend == "postgres" && c.DatabaseURL == "" {
		return nil, fmt.Errorf("CAJA_DATABASE_URL is required when CAJA_BACKEND=postgres")
	}

	if c.DrainInterval, err = envDuration("CAJA_DRAIN_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if c.DrainBatch, err = envInt("CAJA_DRAIN_BATCH", 50); err != nil {
		return nil, err
	}
	if c.MaxAttempts, err = envInt("CAJA_MAX_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if c.RetryInitial, err = envDuration("CAJA_RETRY_INITIAL", 5*time.Second); err != nil {
		return nil, err
	}
	if c.RetryMax, err = envDuration("CAJA_RETRY_MAX", 5*time.Minute); err != nil {
		return nil, err
	}
	if c.Retention, err = envDuration("CAJA_RETENTION", 168*time.Hour); err != nil {
		return nil, err
	}
	if c.BackupInterval, err = envDuration("CAJA_BACKUP_INTERVAL", 0); err != nil {
		return nil, err
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
