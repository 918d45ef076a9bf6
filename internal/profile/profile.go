package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where athena stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Push delivery configuration
	FCMEnabled         bool   // ATHENA_FCM_ENABLED
	FCMProjectID       string // ATHENA_FCM_PROJECT_ID
	FCMCredentialsFile string // ATHENA_FCM_CREDENTIALS_FILE (service account JSON)

	// Reminder dispatch configuration
	ReminderInterval    time.Duration // ATHENA_REMINDER_INTERVAL (default: 1m)
	ReminderBatchSize   int           // ATHENA_REMINDER_BATCH_SIZE (default: 100)
	ReminderParallelism int           // ATHENA_REMINDER_PARALLELISM (default: 1, sequential)

	// DefaultTimezone is used for users without a preference row
	DefaultTimezone string // ATHENA_DEFAULT_TIMEZONE (default: UTC)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsFCMEnabled returns true if push delivery is enabled and configured.
func (p *Profile) IsFCMEnabled() bool {
	return p.FCMEnabled && p.FCMProjectID != "" && p.FCMCredentialsFile != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from ATHENA_* environment variables.
func (p *Profile) FromEnv() {
	p.FCMEnabled = os.Getenv("ATHENA_FCM_ENABLED") == "true"
	p.FCMProjectID = os.Getenv("ATHENA_FCM_PROJECT_ID")
	p.FCMCredentialsFile = os.Getenv("ATHENA_FCM_CREDENTIALS_FILE")

	if v := os.Getenv("ATHENA_REMINDER_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			p.ReminderInterval = d
		}
	}
	if v := os.Getenv("ATHENA_REMINDER_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.ReminderBatchSize = n
		}
	}
	if v := os.Getenv("ATHENA_REMINDER_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.ReminderParallelism = n
		}
	}
	p.DefaultTimezone = getEnvOrDefault("ATHENA_DEFAULT_TIMEZONE", p.DefaultTimezone)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "athena")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/athena"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("athena_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.ReminderInterval <= 0 {
		p.ReminderInterval = time.Minute
	}
	if p.ReminderBatchSize <= 0 {
		p.ReminderBatchSize = 100
	}
	if p.ReminderParallelism <= 0 {
		p.ReminderParallelism = 1
	}
	if p.DefaultTimezone == "" {
		p.DefaultTimezone = "UTC"
	}

	return nil
}
