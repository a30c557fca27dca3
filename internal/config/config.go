package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	OCR      OCRConfig
	Semantic SemanticConfig
	Events   EventsConfig
	Queue    QueueConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for raw document storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// OCRProviderConfig holds settings for a single recognition provider.
type OCRProviderConfig struct {
	Name         string        `mapstructure:"name"`
	Endpoint     string        `mapstructure:"endpoint"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxFileBytes int64         `mapstructure:"max_file_bytes"`
}

// Configured reports whether this provider has enough settings to be used.
func (p *OCRProviderConfig) Configured() bool {
	return p.Endpoint != "" && p.APIKey != ""
}

// OCRConfig holds recognition client settings with primary/fallback providers.
type OCRConfig struct {
	Primary       OCRProviderConfig `mapstructure:"primary"`
	Fallback      OCRProviderConfig `mapstructure:"fallback"`
	PollInterval  time.Duration     `mapstructure:"poll_interval"`
	PollCeiling   time.Duration     `mapstructure:"poll_ceiling"`
	MaxPolls      int               `mapstructure:"max_polls"`
	MaxConcurrent int               `mapstructure:"max_concurrent"`
}

// SemanticConfig holds settings for the optional two-model cross-validation
// booster used on invoice and lumper documents.
type SemanticConfig struct {
	PrimaryEndpoint   string        `mapstructure:"primary_endpoint"`
	SecondaryEndpoint string        `mapstructure:"secondary_endpoint"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether both model endpoints are configured.
func (s *SemanticConfig) Enabled() bool {
	return s.PrimaryEndpoint != "" && s.SecondaryEndpoint != ""
}

// EventsConfig holds Redis event channel settings.
type EventsConfig struct {
	RedisURL string `mapstructure:"redis_url"`
	Channel  string `mapstructure:"channel"`
}

// QueueConfig holds process queue worker settings.
type QueueConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxRetries   int           `mapstructure:"max_retries"`
	Concurrency  int           `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the LOADDOCS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LOADDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "loaddocs")
	v.SetDefault("db.password", "loaddocs_secret")
	v.SetDefault("db.name", "loaddocs_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "raw-docs")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 900)

	// OCR defaults
	v.SetDefault("ocr.primary.name", "datalab")
	v.SetDefault("ocr.primary.endpoint", "https://www.datalab.to/api/v1/ocr")
	v.SetDefault("ocr.primary.timeout", "30s")
	v.SetDefault("ocr.primary.max_file_bytes", 209715200)
	v.SetDefault("ocr.fallback.name", "marker")
	v.SetDefault("ocr.fallback.timeout", "30s")
	v.SetDefault("ocr.fallback.max_file_bytes", 209715200)
	v.SetDefault("ocr.poll_interval", "2s")
	v.SetDefault("ocr.poll_ceiling", "10s")
	v.SetDefault("ocr.max_polls", 300)
	v.SetDefault("ocr.max_concurrent", 10)

	// Semantic cross-validation defaults (disabled unless endpoints are set)
	v.SetDefault("semantic.timeout", "60s")

	// Events defaults
	v.SetDefault("events.channel", "invoice_events")

	// Queue defaults
	v.SetDefault("queue.poll_interval", "5s")
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.OCR.Fallback.Configured() && cfg.OCR.Fallback.Endpoint == cfg.OCR.Primary.Endpoint {
		return nil, fmt.Errorf("ocr fallback endpoint must differ from primary")
	}

	return &cfg, nil
}
