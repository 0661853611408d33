package upload_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixtag/service/internal/apperr"
	"github.com/pixtag/service/internal/upload"
)

const rawBoundary = "----testboundary"

const rawBody = "--" + rawBoundary + "\r\n" +
	"Content-Disposition: form-data; name=\"file\"; filename=\"test.txt\"\r\n" +
	"Content-Type: text/plain\r\n\r\n" +
	"hello world\r\n" +
	"--" + rawBoundary + "--\r\n"

func TestDecodeRawBody(t *testing.T) {
	files, err := upload.Decode(context.Background(), []byte(rawBody), "multipart/form-data; boundary="+rawBoundary)
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, "file", f.FieldName)
	assert.Equal(t, "test.txt", f.Filename)
	assert.Equal(t, "text/plain", f.MimeType)
	assert.Equal(t, []byte("hello world"), f.Content)
	assert.Equal(t, int64(11), f.Size())
}

func TestDecodeSkipsFieldsAndKeepsOrder(t *testing.T) {
	big := bytes.Repeat([]byte("0123456789"), 10_000)
	body, ct := multipartBody(t, map[string]string{"caption": "a cat"},
		formFile{"file", "first.bin", big},
		formFile{"other", "second.txt", []byte("second")},
	)

	files, err := upload.Decode(context.Background(), body, ct)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "first.bin", files[0].Filename)
	assert.Equal(t, big, files[0].Content)
	assert.Equal(t, "second.txt", files[1].Filename)
}

func TestDecodeNoFilePart(t *testing.T) {
	body, ct := multipartBody(t, map[string]string{"imageUrl": "https://example.com/cat.png"})

	files, err := upload.Decode(context.Background(), body, ct)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDecodeEmptyFilenameIsStillAFile(t *testing.T) {
	body := "--b\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"\"\r\n\r\n" +
		"data\r\n" +
		"--b--\r\n"

	files, err := upload.Decode(context.Background(), []byte(body), "multipart/form-data; boundary=b")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "", files[0].Filename)
	assert.Equal(t, []byte("data"), files[0].Content)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name, contentType, body string
	}{
		{"missing content type", "", rawBody},
		{"not multipart", "application/json", rawBody},
		{"missing boundary", "multipart/form-data", rawBody},
		{"garbage header", "multipart/form-data; boundary=", rawBody},
		{"missing closing boundary", "multipart/form-data; boundary=" + rawBoundary, strings.TrimSuffix(rawBody, "\r\n--"+rawBoundary+"--\r\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := upload.Decode(context.Background(), []byte(tt.body), tt.contentType)
			require.Error(t, err)
			assert.Nil(t, files)
			assert.ErrorIs(t, err, upload.ErrMalformedMultipart)
			assert.Equal(t, 400, apperr.Status(err))
		})
	}
}

func TestDecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files, err := upload.Decode(ctx, []byte(rawBody), "multipart/form-data; boundary="+rawBoundary)
	assert.Nil(t, files)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestHeaderValue(t *testing.T) {
	headers := map[string]string{"CONTENT-TYPE": "multipart/form-data; boundary=x"}
	assert.Equal(t, "multipart/form-data; boundary=x", upload.HeaderValue(headers, "content-type"))
	assert.Equal(t, "multipart/form-data; boundary=x", upload.HeaderValue(headers, "Content-Type"))
	assert.Equal(t, "", upload.HeaderValue(headers, "Authorization"))
	assert.Equal(t, "", upload.HeaderValue(nil, "Content-Type"))
}
