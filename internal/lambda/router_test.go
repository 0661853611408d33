package lambda_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixtag/service/internal/app"
	"github.com/pixtag/service/internal/lambda"
	"github.com/pixtag/service/internal/logging"
	"github.com/pixtag/service/internal/upload"
	"github.com/pixtag/service/internal/vision"
)

type recordingStore struct {
	calls int
	keys  []string
	data  [][]byte
}

func (s *recordingStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	s.calls++
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	s.data = append(s.data, b)
	return "https://cdn.example.com/" + key, nil
}

type stubFetcher struct {
	calls  int
	labels []vision.RawLabel
}

func (f *stubFetcher) Fetch(context.Context, string) ([]vision.RawLabel, error) {
	f.calls++
	return f.labels, nil
}

func newRouter(store *recordingStore, fetcher *stubFetcher, maxBytes int64) *lambda.Router {
	logging.SetTestLogger(logging.NewTestLogger())
	a := &app.App{MaxUploadBytes: maxBytes}
	if store != nil {
		a.Upload = upload.NewService(store, upload.NewKeyAssigner(upload.KeyTimestamp))
	} else {
		a.Upload = upload.NewService(nil, upload.NewKeyAssigner(upload.KeyTimestamp))
	}
	if fetcher != nil {
		a.Tags = vision.NewService(fetcher, vision.NewNormalizer(vision.PolicyExpand, 5))
	} else {
		a.Tags = vision.NewService(nil, vision.NewNormalizer(vision.PolicyExpand, 5))
	}
	return lambda.NewRouter(a)
}

func multipartEvent(t *testing.T, filename string, content []byte) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("caption", "hello"))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.String(), mw.FormDataContentType()
}

func TestUploadBase64BodyWithLowercaseHeader(t *testing.T) {
	store := &recordingStore{}
	rt := newRouter(store, nil, 1<<20)

	body, ct := multipartEvent(t, "cat.png", []byte("meow"))
	resp, err := rt.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/.netlify/functions/upload",
		Headers:         map[string]string{"content-type": ct},
		Body:            base64.StdEncoding.EncodeToString([]byte(body)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	require.Equal(t, 1, store.calls)
	assert.Equal(t, []byte("meow"), store.data[0])
	assert.Regexp(t, `^\d+-cat\.png$`, store.keys[0])
	assert.JSONEq(t, `{"url":"https://cdn.example.com/`+store.keys[0]+`"}`, resp.Body)
}

func TestUploadMultiValueContentType(t *testing.T) {
	store := &recordingStore{}
	rt := newRouter(store, nil, 1<<20)

	body, ct := multipartEvent(t, "a.txt", []byte("abc"))
	resp, err := rt.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:        http.MethodPost,
		Path:              "/upload",
		MultiValueHeaders: map[string][]string{"CONTENT-TYPE": {ct}},
		Body:              body,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Equal(t, 1, store.calls)
}

func TestUploadRejections(t *testing.T) {
	withoutFile := func(t *testing.T) (string, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("caption", "hello"))
		require.NoError(t, mw.Close())
		return buf.String(), mw.FormDataContentType()
	}

	tests := []struct {
		name   string
		req    func(t *testing.T) events.APIGatewayProxyRequest
		status int
		body   string
	}{
		{
			name: "get",
			req: func(*testing.T) events.APIGatewayProxyRequest {
				return events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/upload", Body: "garbage"}
			},
			status: http.StatusMethodNotAllowed,
			body:   `{"error":"method not allowed"}`,
		},
		{
			name: "no file part",
			req: func(t *testing.T) events.APIGatewayProxyRequest {
				body, ct := withoutFile(t)
				return events.APIGatewayProxyRequest{
					HTTPMethod: http.MethodPost,
					Path:       "/upload",
					Headers:    map[string]string{"Content-Type": ct},
					Body:       body,
				}
			},
			status: http.StatusBadRequest,
			body:   `{"error":"no file uploaded"}`,
		},
		{
			name: "bad base64",
			req: func(*testing.T) events.APIGatewayProxyRequest {
				return events.APIGatewayProxyRequest{
					HTTPMethod:      http.MethodPost,
					Path:            "/upload",
					Body:            "%%%not base64%%%",
					IsBase64Encoded: true,
				}
			},
			status: http.StatusBadRequest,
			body:   `{"error":"invalid base64 body"}`,
		},
		{
			name: "not multipart",
			req: func(*testing.T) events.APIGatewayProxyRequest {
				return events.APIGatewayProxyRequest{
					HTTPMethod: http.MethodPost,
					Path:       "/upload",
					Headers:    map[string]string{"Content-Type": "application/json"},
					Body:       `{}`,
				}
			},
			status: http.StatusBadRequest,
			body:   `{"error":"malformed multipart body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{}
			rt := newRouter(store, nil, 1<<20)

			resp, err := rt.Handle(context.Background(), tt.req(t))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.body, resp.Body)
			assert.Zero(t, store.calls)
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	store := &recordingStore{}
	rt := newRouter(store, nil, 16)

	body, ct := multipartEvent(t, "big.bin", bytes.Repeat([]byte("x"), 64))
	resp, err := rt.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/upload",
		Headers:    map[string]string{"Content-Type": ct},
		Body:       body,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Zero(t, store.calls)
}

func TestMissingCredentials(t *testing.T) {
	rt := newRouter(nil, nil, 1<<20)

	resp, err := rt.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost, Path: "/upload", Body: "anything",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"storage credentials are not configured"}`, resp.Body)

	resp, err = rt.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost, Path: "/cloudVision", Body: `{"imageUrl":"https://example.com/a.jpg"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Missing API key"}`, resp.Body)
}

func TestTagRoutes(t *testing.T) {
	for _, p := range []string{"/tags", "/.netlify/functions/cloudVision", "/api/v1/tags/"} {
		t.Run(p, func(t *testing.T) {
			fetcher := &stubFetcher{labels: []vision.RawLabel{{Description: "Cat", Score: 0.97}}}
			rt := newRouter(nil, fetcher, 1<<20)

			resp, err := rt.Handle(context.Background(), events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPost,
				Path:       p,
				Body:       `{"imageUrl":"https://example.com/cat.jpg"}`,
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
			assert.JSONEq(t,
				`{"tags":"cat, animal, pet, feline","possibleObjects":[{"name":"cat","confidence":0.97}]}`,
				resp.Body)
			assert.Equal(t, 1, fetcher.calls)
		})
	}
}

func TestTagRejections(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
		want   string
	}{
		{"get", http.MethodGet, `{"imageUrl":"https://example.com/a.jpg"}`, http.StatusMethodNotAllowed, `{"error":"method not allowed"}`},
		{"empty body", http.MethodPost, "", http.StatusBadRequest, `{"error":"Missing imageUrl"}`},
		{"invalid json", http.MethodPost, "{", http.StatusBadRequest, `{"error":"invalid request body"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{}
			rt := newRouter(nil, fetcher, 1<<20)

			resp, err := rt.Handle(context.Background(), events.APIGatewayProxyRequest{
				HTTPMethod: tt.method, Path: "/tags", Body: tt.body,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.want, resp.Body)
			assert.Zero(t, fetcher.calls)
			if tt.status == http.StatusMethodNotAllowed {
				assert.Equal(t, http.MethodPost, resp.Headers["Allow"])
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	rt := newRouter(nil, nil, 1<<20)
	resp, err := rt.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/nope"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
