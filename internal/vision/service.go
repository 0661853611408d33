package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pixtag/service/internal/apperr"
	"github.com/pixtag/service/internal/logging"
)

// Client-input errors of the tagging endpoint.
var (
	ErrMissingImageURL = apperr.Input("Missing imageUrl")
	ErrInvalidBody     = apperr.Input("invalid request body")
)

// TagRequest is the body of a tagging request.
type TagRequest struct {
	ImageURL string `json:"imageUrl" example:"https://example.com/cat.jpg"`
}

// ParseTagRequest decodes a tagging request body. An empty body is treated
// as an empty object.
func ParseTagRequest(body []byte) (string, error) {
	var req TagRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return "", ErrInvalidBody.WithCause(err)
		}
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		return "", ErrMissingImageURL
	}
	return imageURL, nil
}

// Service runs the tagging pipeline: fetch labels, normalize.
type Service struct {
	fetcher    LabelFetcher
	normalizer *Normalizer
}

// NewService creates a new tagging Service. fetcher may be nil when no API key
// is configured; Ready then reports the configuration error.
func NewService(fetcher LabelFetcher, normalizer *Normalizer) *Service {
	return &Service{fetcher: fetcher, normalizer: normalizer}
}

// Ready returns ErrMissingAPIKey when no fetcher is available.
func (s *Service) Ready() error {
	if s.fetcher == nil {
		return ErrMissingAPIKey
	}
	return nil
}

// Tag fetches labels for imageURL and normalizes them.
func (s *Service) Tag(ctx context.Context, imageURL string) (*Result, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}

	labels, err := s.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch labels: %w", err)
	}

	res := s.normalizer.Normalize(labels)
	logging.Debug("image tagged",
		"labels", len(labels),
		"tags", len(res.Tags),
		"policy", s.normalizer.Policy())
	return &res, nil
}
