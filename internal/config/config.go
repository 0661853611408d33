// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/pixtag/service/internal/logging"
)

// Storage drivers.
const (
	DriverMinio      = "minio"
	DriverCloudinary = "cloudinary"
)

// Config holds all runtime configuration for the service.
//
// Missing credentials are not rejected here: they surface as configuration
// errors on the requests that need them.
type Config struct {
	Port          string `env:"PORT,default=8080"`
	AppEnv        string `env:"APP_ENV,default=development"`
	MaxUploadSize string `env:"MAX_UPLOAD_SIZE,default=10 MB"`
	KeyStrategy   string `env:"UPLOAD_KEY_STRATEGY,default=timestamp"`

	StorageDriver string `env:"STORAGE_DRIVER,default=minio"`

	// Object storage (S3-compatible: MinIO locally, any S3 provider in production)
	StorageEndpoint   string `env:"STORAGE_ENDPOINT,default=localhost:9000"`
	StorageAccessKey  string `env:"STORAGE_ACCESS_KEY"`
	StorageSecretKey  string `env:"STORAGE_SECRET_KEY"`
	StorageBucket     string `env:"STORAGE_BUCKET,default=uploads"`
	StorageUseSSL     bool   `env:"STORAGE_USE_SSL,default=false"`
	StoragePublicBase string `env:"STORAGE_PUBLIC_BASE,default=http://localhost:9000/uploads"` // browser-accessible base URL

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	VisionAPIKey     string `env:"VISION_API_KEY"`
	VisionEndpoint   string `env:"VISION_ENDPOINT"`
	VisionMaxResults int    `env:"VISION_MAX_RESULTS,default=10"`

	TagPolicy string `env:"TAG_POLICY,default=expand"`
	TagMax    int    `env:"TAG_MAX,default=5"`
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug("no .env file found, reading from environment")
	}
	return FromEnviron()
}

// FromEnviron populates a Config from the current process environment.
func FromEnviron() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = DriverMinio
	}
	if cfg.StorageDriver != DriverMinio && cfg.StorageDriver != DriverCloudinary {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if _, err := cfg.MaxUploadBytes(); err != nil {
		return nil, err
	}
	if cfg.VisionMaxResults < 1 {
		return nil, fmt.Errorf("VISION_MAX_RESULTS must be positive, got %d", cfg.VisionMaxResults)
	}
	return &cfg, nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MaxUploadBytes parses MaxUploadSize ("10 MB", "512KiB", "1048576").
func (c *Config) MaxUploadBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("parse MAX_UPLOAD_SIZE %q: %w", c.MaxUploadSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	return int64(n), nil
}

// MinioConfigured reports whether both MinIO credentials are present.
func (c *Config) MinioConfigured() bool {
	return c.StorageAccessKey != "" && c.StorageSecretKey != ""
}

// CloudinaryConfigured reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
