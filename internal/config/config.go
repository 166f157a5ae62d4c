package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	// Remote analysis service
	AnalysisBaseURL string
	AnalysisTimeout time.Duration

	// Run history; empty disables it
	DatabaseURL string

	// S3 dataset archive; empty endpoint disables it
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Upload limits
	MaxFileSize int64

	// View sessions
	ViewTTL       time.Duration
	SweepInterval time.Duration

	AllowedOrigin string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		AnalysisBaseURL:   strings.TrimRight(getEnv("ANALYSIS_BASE_URL", "http://localhost:8007"), "/"),
		DatabaseURL:       getEnv("DATABASE_URL", "data/crimedash.db"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "crime-datasets"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	var err error
	if cfg.AnalysisTimeout, err = getDuration("ANALYSIS_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ViewTTL, err = getDuration("VIEW_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("VIEW_SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	cfg.MaxFileSize = 10 << 20
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_FILE_SIZE must be a positive byte count, got %q", v)
		}
		cfg.MaxFileSize = n
	}

	u, err := url.Parse(cfg.AnalysisBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ANALYSIS_BASE_URL must be an absolute URL, got %q", cfg.AnalysisBaseURL)
	}

	return cfg, nil
}

// HistoryEnabled reports whether analysis runs are persisted.
func (c *Config) HistoryEnabled() bool { return c.DatabaseURL != "" }

// ArchiveEnabled reports whether submitted datasets are copied to object storage.
func (c *Config) ArchiveEnabled() bool { return c.S3Endpoint != "" }

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %q", key, v)
	}
	return d, nil
}
