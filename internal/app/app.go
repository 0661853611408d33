// Package app wires configuration, storage, and the vision client into the
// upload and tagging services shared by every entrypoint.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/pixtag/service/internal/config"
	"github.com/pixtag/service/internal/logging"
	"github.com/pixtag/service/internal/storage"
	"github.com/pixtag/service/internal/upload"
	"github.com/pixtag/service/internal/vision"
)

// App holds the request-independent services.
type App struct {
	Upload         *upload.Service
	Tags           *vision.Service
	MaxUploadBytes int64
}

// New builds an App from cfg. Missing credentials are logged and left for
// the affected endpoint to report; any other setup failure is returned.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	maxBytes, err := cfg.MaxUploadBytes()
	if err != nil {
		return nil, err
	}
	strategy, err := upload.ParseKeyStrategy(cfg.KeyStrategy)
	if err != nil {
		return nil, err
	}
	policy, err := vision.ParsePolicy(cfg.TagPolicy)
	if err != nil {
		return nil, err
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Wire dependencies: backend → service
	return &App{
		Upload:         upload.NewService(store, upload.NewKeyAssigner(strategy)),
		Tags:           vision.NewService(fetcher, vision.NewNormalizer(policy, cfg.TagMax)),
		MaxUploadBytes: maxBytes,
	}, nil
}

// newStorage returns the configured backend, or nil when its credentials are absent.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	var store storage.Storage
	switch cfg.StorageDriver {
	case config.DriverCloudinary:
		if !cfg.CloudinaryConfigured() {
			return missingStorage(cfg.StorageDriver)
		}
		s, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, fmt.Errorf("object storage init failed: %w", err)
		}
		store = s
	default:
		if !cfg.MinioConfigured() {
			return missingStorage(cfg.StorageDriver)
		}
		s, err := storage.NewMinioStorage(ctx,
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StoragePublicBase,
			cfg.StorageUseSSL,
		)
		if err != nil {
			return nil, fmt.Errorf("object storage init failed: %w", err)
		}
		store = s
	}

	logging.Info("storage ready", "driver", cfg.StorageDriver)
	return store, nil
}

func missingStorage(driver string) (storage.Storage, error) {
	logging.Warn("storage credentials missing, uploads will be rejected", "driver", driver)
	return nil, nil
}

// newFetcher returns the Vision client, or nil when no API key is set.
func newFetcher(ctx context.Context, cfg *config.Config) (vision.LabelFetcher, error) {
	f, err := vision.NewGoogleFetcher(ctx, cfg.VisionAPIKey, cfg.VisionEndpoint, cfg.VisionMaxResults)
	if errors.Is(err, vision.ErrMissingAPIKey) {
		logging.Warn("VISION_API_KEY missing, tagging will be rejected")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
