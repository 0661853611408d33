package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// cloudinaryUploader is the subset of the Cloudinary upload API we call.
type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryStorage implements Storage on top of Cloudinary's upload API.
// Objects are uploaded with resource type "auto" so Cloudinary classifies them
// by content.
type CloudinaryStorage struct {
	uploader cloudinaryUploader
}

// NewCloudinaryStorage builds a Cloudinary client from account credentials.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStorage{uploader: &cld.Upload}, nil
}

// Upload sends reader to Cloudinary with key as the public id and returns the
// secure URL. contentType is ignored; Cloudinary sniffs the content itself.
func (s *CloudinaryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	overwrite := false
	res, err := s.uploader.Upload(ctx, reader, uploader.UploadParams{
		PublicID:     key,
		ResourceType: ResourceTypeAuto,
		Overwrite:    &overwrite,
	})
	if err != nil {
		return "", uploadFailed(0, err.Error(), fmt.Errorf("cloudinary upload %q: %w", key, err))
	}
	if res == nil {
		return "", uploadFailed(0, "empty response", fmt.Errorf("cloudinary upload %q: no result", key))
	}
	if res.Error.Message != "" {
		return "", uploadFailed(0, res.Error.Message, fmt.Errorf("cloudinary upload %q: %s", key, res.Error.Message))
	}
	return res.SecureURL, nil
}
