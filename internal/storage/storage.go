// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// the MinIO implementation works with any S3-compatible provider, the
// Cloudinary implementation talks to Cloudinary's upload API.
package storage

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/pixtag/service/internal/apperr"
)

// ResourceTypeAuto asks the backend to classify the object by its content.
const ResourceTypeAuto = "auto"

// ErrNotConfigured is returned when the selected backend has no credentials.
var ErrNotConfigured = apperr.Config("storage credentials are not configured")

// Storage is the interface for writing objects to a remote store.
type Storage interface {
	// Upload streams data to the store under the given key and returns the
	// object's publicly resolvable URL.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}

// uploadFailed builds the upstream error reported when a backend rejects a write.
// status is the backend's HTTP status when known, zero otherwise.
func uploadFailed(status int, details string, cause error) *apperr.Error {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return &apperr.Error{
		Kind:    apperr.KindUpstream,
		Status:  status,
		Message: "upload failed",
		Details: details,
		Cause:   cause,
	}
}

// IsUploadFailure reports whether err came from a backend rejecting a write.
func IsUploadFailure(err error) bool {
	var ae *apperr.Error
	return errors.As(err, &ae) && ae.Kind == apperr.KindUpstream && ae.Message == "upload failed"
}
