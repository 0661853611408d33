// Package vision requests image labels from Google Cloud Vision and turns them
// into a short, deterministic tag list.
package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gvision "google.golang.org/api/vision/v1"

	"github.com/pixtag/service/internal/apperr"
	"github.com/pixtag/service/internal/logging"
)

// LabelDetection is the Vision feature type requested.
const LabelDetection = "LABEL_DETECTION"

// DefaultMaxResults over-fetches labels so the normalizer rarely has to pad.
const DefaultMaxResults = 10

// ErrMissingAPIKey is returned when no Vision API key is configured.
var ErrMissingAPIKey = apperr.Config("Missing API key")

// RawLabel is one label annotation as returned upstream.
type RawLabel struct {
	Description string
	Score       float64
}

// LabelFetcher returns labels for an image URL, in upstream order.
type LabelFetcher interface {
	Fetch(ctx context.Context, imageURL string) ([]RawLabel, error)
}

// GoogleFetcher implements LabelFetcher with the Vision REST API.
type GoogleFetcher struct {
	svc        *gvision.Service
	maxResults int64
}

// NewGoogleFetcher builds a Vision client authenticated with apiKey. endpoint
// overrides the default API base URL when non-empty.
func NewGoogleFetcher(ctx context.Context, apiKey, endpoint string, maxResults int) (*GoogleFetcher, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := gvision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return &GoogleFetcher{svc: svc, maxResults: int64(maxResults)}, nil
}

// Fetch requests label detection for imageURL. A non-success answer is
// returned as an upstream error carrying the status code and body unchanged.
func (f *GoogleFetcher) Fetch(ctx context.Context, imageURL string) ([]RawLabel, error) {
	req := &gvision.BatchAnnotateImagesRequest{
		Requests: []*gvision.AnnotateImageRequest{{
			Image: &gvision.Image{Source: &gvision.ImageSource{ImageUri: imageURL}},
			Features: []*gvision.Feature{{
				Type:       LabelDetection,
				MaxResults: f.maxResults,
			}},
		}},
	}

	resp, err := f.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, apperr.Upstream(gerr.Code, gerr.Body, err)
		}
		return nil, fmt.Errorf("annotate image: %w", err)
	}

	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return []RawLabel{}, nil
	}
	first := resp.Responses[0]
	if first.Error != nil {
		logging.Warn("vision returned an image error", "code", first.Error.Code, "message", first.Error.Message)
	}

	labels := make([]RawLabel, 0, len(first.LabelAnnotations))
	for _, a := range first.LabelAnnotations {
		if a == nil {
			continue
		}
		labels = append(labels, RawLabel{Description: a.Description, Score: a.Score})
	}
	return labels, nil
}
