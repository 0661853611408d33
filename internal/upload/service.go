package upload

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/pixtag/service/internal/logging"
	"github.com/pixtag/service/internal/storage"
)

// Service runs the upload pipeline: decode, assign a key, write.
type Service struct {
	store  storage.Storage
	keys   *KeyAssigner
	writer *Writer
}

// NewService creates a new upload Service. store may be nil when the storage
// backend has no credentials; Ready then reports the configuration error.
func NewService(store storage.Storage, keys *KeyAssigner) *Service {
	return &Service{store: store, keys: keys, writer: NewWriter(store)}
}

// Ready returns storage.ErrNotConfigured when no backend is available.
func (s *Service) Ready() error {
	if s.store == nil {
		return storage.ErrNotConfigured
	}
	return nil
}

// Upload stores the first file part of a multipart body. Nothing is written
// unless the body decodes completely and holds a non-empty file.
func (s *Service) Upload(ctx context.Context, body []byte, contentType string) (*StoredAsset, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}

	files, err := Decode(ctx, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode upload: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	file := &files[0]
	if len(files) > 1 {
		logging.Debug("ignoring extra file parts", "count", len(files)-1)
	}

	key := s.keys.Assign(file.Filename)
	asset, err := s.writer.Write(ctx, key, file)
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", key, err)
	}

	logging.Info("file stored",
		"key", asset.Key,
		"size", humanize.Bytes(uint64(asset.Size)),
		"type", asset.ContentType)
	return asset, nil
}
