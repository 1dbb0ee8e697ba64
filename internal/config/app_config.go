// Package config loads the notifier's process configuration from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/shaharia-lab/notifier/internal/build"
	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/telemetry"
)

// Storage drivers for the trigger snapshot.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 9999.
	Port int `envconfig:"PORT" default:"9999"`

	// DataDir is the root data directory. Defaults to ~/.notifier.
	DataDir string `envconfig:"NOTIFIER_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// StorageDriver selects where the trigger snapshot lives: file or sqlite.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"file"`

	SMTPHost       string `envconfig:"SMTP_URL"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser       string `envconfig:"SMTP_USER"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"starttls"`

	// WebhookTimeout bounds each webhook POST. Zero disables the bound.
	WebhookTimeout time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"30s"`

	// DispatchTimeout bounds a whole notify dispatch. Zero means none.
	DispatchTimeout time.Duration `envconfig:"DISPATCH_TIMEOUT" default:"0s"`

	// ValidatePayload checks notify payloads against the trigger structure.
	ValidatePayload bool `envconfig:"VALIDATE_PAYLOAD" default:"false"`

	// DeliveryRetention is how long delivery log entries are kept. Zero keeps them forever.
	DeliveryRetention time.Duration `envconfig:"DELIVERY_RETENTION" default:"720h"`

	// CORSAllowedOrigins is a comma separated origin list.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// OTLPEndpoint is the OTLP gRPC collector (host:port). Empty disables tracing.
	OTLPEndpoint    string  `envconfig:"OTLP_ENDPOINT"`
	OTLPInsecure    bool    `envconfig:"OTLP_INSECURE" default:"false"`
	TraceSampleRate float64 `envconfig:"TRACE_SAMPLE_RATE" default:"1"`
}

// Load reads an optional .env file and then AppConfig from the environment.
// Variables already set in the environment win over the file. envFiles
// replaces the default ".env".
func Load(envFiles ...string) (*AppConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".notifier")
	}
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.SMTPEncryption = strings.ToLower(strings.TrimSpace(c.SMTPEncryption))

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values no component can run with.
func (c *AppConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	switch c.StorageDriver {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: expected %s or %s", c.StorageDriver, StorageFile, StorageSQLite)
	}
	switch c.SMTPEncryption {
	case "none", "starttls", "ssl_tls":
	default:
		return fmt.Errorf("invalid SMTP_ENCRYPTION %q: expected none, starttls or ssl_tls", c.SMTPEncryption)
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("invalid TRACE_SAMPLE_RATE %v: expected a value between 0 and 1", c.TraceSampleRate)
	}
	if c.WebhookTimeout < 0 || c.DispatchTimeout < 0 || c.DeliveryRetention < 0 {
		return errors.New("timeouts and retention must not be negative")
	}
	return nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SMTP returns the mail transport settings.
func (c *AppConfig) SMTP() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:       c.SMTPHost,
		Port:       c.SMTPPort,
		Username:   c.SMTPUser,
		Password:   c.SMTPPassword,
		Encryption: c.SMTPEncryption,
	}
}

// Tracing returns the OpenTelemetry settings.
func (c *AppConfig) Tracing() telemetry.Config {
	return telemetry.Config{
		Endpoint:       c.OTLPEndpoint,
		Insecure:       c.OTLPInsecure,
		ServiceName:    "notifier",
		ServiceVersion: build.Version,
		SampleRate:     c.TraceSampleRate,
	}
}

// LogDir returns the path to the log directory.
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// SnapshotFile returns the path of the file driver's trigger snapshot.
func (c *AppConfig) SnapshotFile() string {
	return filepath.Join(c.DataDir, "triggers.json")
}

// DatabaseFile returns the path of the SQLite database.
func (c *AppConfig) DatabaseFile() string {
	return filepath.Join(c.DataDir, "notifier.db")
}
