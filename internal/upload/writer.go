package upload

import (
	"bytes"
	"context"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pixtag/service/internal/storage"
)

// StoredAsset is the externally visible result of a successful upload.
type StoredAsset struct {
	Key         string
	SecureURL   string
	ContentType string
	Size        int64
}

// Writer sends fully decoded files to object storage.
type Writer struct {
	store storage.Storage
}

// NewWriter returns a Writer backed by store. A nil store makes every write
// fail with storage.ErrNotConfigured.
func NewWriter(store storage.Storage) *Writer {
	return &Writer{store: store}
}

// Write stores file under key. An empty buffer is refused before the backend
// is contacted. The content type is sniffed from the bytes, not taken from the
// declared part header.
func (w *Writer) Write(ctx context.Context, key string, file *DecodedFile) (*StoredAsset, error) {
	if file == nil || len(file.Content) == 0 {
		return nil, ErrNoFileData
	}
	if w.store == nil {
		return nil, storage.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contentType := mimetype.Detect(file.Content).String()
	url, err := w.store.Upload(ctx, key, bytes.NewReader(file.Content), file.Size(), contentType)
	if err != nil {
		return nil, err
	}

	return &StoredAsset{
		Key:         key,
		SecureURL:   url,
		ContentType: contentType,
		Size:        file.Size(),
	}, nil
}
