// Package lambda serves the upload and tagging pipelines behind API Gateway
// proxy events.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dustin/go-humanize"

	"github.com/pixtag/service/internal/app"
	"github.com/pixtag/service/internal/apperr"
	"github.com/pixtag/service/internal/logging"
	"github.com/pixtag/service/internal/response"
	"github.com/pixtag/service/internal/upload"
	"github.com/pixtag/service/internal/vision"
)

// ErrInvalidBase64 is returned when an event flagged as base64 does not decode.
var ErrInvalidBase64 = apperr.Input("invalid base64 body")

const (
	routeUpload      = "upload"
	routeTags        = "tags"
	routeCloudVision = "cloudVision"
)

// Router dispatches proxy events by the last segment of their path.
type Router struct {
	upload   *upload.Service
	tags     *vision.Service
	maxBytes int64
}

// NewRouter creates a Router over the services of a.
func NewRouter(a *app.App) *Router {
	return &Router{upload: a.Upload, tags: a.Tags, maxBytes: a.MaxUploadBytes}
}

// Handle is the Lambda entrypoint. Failures are always reported through the
// response; the returned error is reserved for the runtime and stays nil.
func (rt *Router) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	route := path.Base(strings.TrimRight(req.Path, "/"))
	logging.Debug("lambda event", "method", req.HTTPMethod, "path", req.Path, "request_id", req.RequestContext.RequestID)

	switch route {
	case routeUpload:
		return rt.serveUpload(ctx, req), nil
	case routeTags, routeCloudVision:
		return rt.serveTags(ctx, req), nil
	}
	return jsonResponse(http.StatusNotFound, response.ErrorBody{Error: "not found"}), nil
}

func (rt *Router) serveUpload(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if req.HTTPMethod != http.MethodPost {
		return methodNotAllowed()
	}
	if err := rt.upload.Ready(); err != nil {
		return failure(err)
	}

	body, err := eventBody(req)
	if err != nil {
		return failure(err)
	}
	if rt.maxBytes > 0 && int64(len(body)) > rt.maxBytes {
		return jsonResponse(http.StatusRequestEntityTooLarge, response.ErrorBody{
			Error: fmt.Sprintf("upload exceeds %s", humanize.Bytes(uint64(rt.maxBytes))),
		})
	}

	asset, err := rt.upload.Upload(ctx, body, contentType(req))
	if err != nil {
		return failure(err)
	}
	return jsonResponse(http.StatusOK, upload.Response{URL: asset.SecureURL})
}

func (rt *Router) serveTags(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if req.HTTPMethod != http.MethodPost {
		return methodNotAllowed()
	}
	if err := rt.tags.Ready(); err != nil {
		return failure(err)
	}

	body, err := eventBody(req)
	if err != nil {
		return failure(err)
	}
	imageURL, err := vision.ParseTagRequest(body)
	if err != nil {
		return failure(err)
	}

	res, err := rt.tags.Tag(ctx, imageURL)
	if err != nil {
		return failure(err)
	}
	return jsonResponse(http.StatusOK, vision.NewTagResponse(res))
}

func eventBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, ErrInvalidBase64.WithCause(err)
	}
	return b, nil
}

// contentType looks the header up case-insensitively, falling back to the
// multi-value headers some gateways send instead.
func contentType(req events.APIGatewayProxyRequest) string {
	if v := upload.HeaderValue(req.Headers, "Content-Type"); v != "" {
		return v
	}
	for k, vs := range req.MultiValueHeaders {
		if strings.EqualFold(k, "Content-Type") && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

func failure(err error) events.APIGatewayProxyResponse {
	status, ct, body := response.Render(err)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": ct},
		Body:       string(body),
	}
}

func methodNotAllowed() events.APIGatewayProxyResponse {
	resp := failure(apperr.MethodNotAllowed())
	resp.Headers["Allow"] = http.MethodPost
	return resp
}

func jsonResponse(status int, payload interface{}) events.APIGatewayProxyResponse {
	b, err := json.Marshal(payload)
	if err != nil {
		return failure(apperr.Internal(err))
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}
}
