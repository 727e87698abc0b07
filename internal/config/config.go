// Package config provides configuration loading and validation for the screener.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Storage backends
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config represents the service configuration that can be loaded from a JSON file
// and overridden by environment variables. Zero values are filled by Defaults.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Logging
	LogLevel  string `json:"log_level,omitempty"`  // debug, info, warn, error
	LogFormat string `json:"log_format,omitempty"` // json or console

	// Uploaded résumé storage
	StorageBackend string `json:"storage_backend,omitempty"` // local or s3
	UploadDir      string `json:"upload_dir,omitempty"`
	S3Bucket       string `json:"s3_bucket,omitempty"`
	S3Region       string `json:"s3_region,omitempty"`
	S3Prefix       string `json:"s3_prefix,omitempty"`
	S3Endpoint     string `json:"s3_endpoint,omitempty"` // S3-compatible endpoint (MinIO, LocalStack)

	// Limits
	MaxUploadMB          int     `json:"max_upload_mb,omitempty"`
	ScreeningConcurrency int     `json:"screening_concurrency,omitempty"` // 0 means one worker per CPU
	RateLimitPerSecond   float64 `json:"rate_limit_per_second,omitempty"`
	RateLimitBurst       int     `json:"rate_limit_burst,omitempty"`
}

// Defaults returns the configuration used when nothing else is specified.
func Defaults() Config {
	return Config{
		Port:               8080,
		LogLevel:           "info",
		LogFormat:          "console",
		StorageBackend:     StorageLocal,
		UploadDir:          "data/uploads",
		S3Region:           "us-east-1",
		MaxUploadMB:        16,
		RateLimitPerSecond: 10,
		RateLimitBurst:     20,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns Defaults overridden by environment variables.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields with values found through lookup (normally os.LookupEnv).
// Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("DATABASE_URL", &c.DatabaseURL)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("STORAGE_BACKEND", &c.StorageBackend)
	str("UPLOAD_DIR", &c.UploadDir)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_REGION", &c.S3Region)
	str("S3_PREFIX", &c.S3Prefix)
	str("S3_ENDPOINT", &c.S3Endpoint)

	for key, dst := range map[string]*int{
		"PORT":                  &c.Port,
		"MAX_UPLOAD_MB":         &c.MaxUploadMB,
		"SCREENING_CONCURRENCY": &c.ScreeningConcurrency,
		"RATE_LIMIT_BURST":      &c.RateLimitBurst,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("RATE_LIMIT_PER_SECOND"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_PER_SECOND: %w", err)
		}
		c.RateLimitPerSecond = rps
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("config error: 'max_upload_mb' must be non-negative")
	}
	if c.ScreeningConcurrency < 0 {
		return fmt.Errorf("config error: 'screening_concurrency' must be non-negative")
	}
	if c.RateLimitPerSecond < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}

	switch c.StorageBackend {
	case "", StorageLocal:
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("config error: 's3_bucket' is required when storage_backend is %q", StorageS3)
		}
	default:
		return fmt.Errorf("config error: unknown storage_backend %q", c.StorageBackend)
	}

	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or console, got %q", c.LogFormat)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.StorageBackend == "" {
		result.StorageBackend = defaults.StorageBackend
	}
	if result.UploadDir == "" {
		result.UploadDir = defaults.UploadDir
	}
	if result.S3Bucket == "" {
		result.S3Bucket = defaults.S3Bucket
	}
	if result.S3Region == "" {
		result.S3Region = defaults.S3Region
	}
	if result.S3Prefix == "" {
		result.S3Prefix = defaults.S3Prefix
	}
	if result.S3Endpoint == "" {
		result.S3Endpoint = defaults.S3Endpoint
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}
	if result.ScreeningConcurrency == 0 {
		result.ScreeningConcurrency = defaults.ScreeningConcurrency
	}
	if result.RateLimitPerSecond == 0 {
		result.RateLimitPerSecond = defaults.RateLimitPerSecond
	}
	if result.RateLimitBurst == 0 {
		result.RateLimitBurst = defaults.RateLimitBurst
	}

	return result
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
