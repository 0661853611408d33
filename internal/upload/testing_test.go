package upload_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeStore records every Upload call.
type fakeStore struct {
	mu           sync.Mutex
	calls        int
	keys         []string
	contentTypes []string
	bodies       [][]byte
	err          error
}

func (f *fakeStore) Upload(_ context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	f.contentTypes = append(f.contentTypes, contentType)
	f.bodies = append(f.bodies, b)
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type formFile struct {
	field, name string
	content     []byte
}

// multipartBody builds a multipart/form-data body with the given text fields
// followed by the files.
func multipartBody(t *testing.T, fields map[string]string, files ...formFile) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}
