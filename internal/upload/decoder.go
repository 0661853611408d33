// Package upload decodes multipart uploads and writes the first file part to
// object storage under a collision-free key.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/pixtag/service/internal/apperr"
)

// Errors reported by the upload pipeline.
var (
	ErrMalformedMultipart = apperr.Input("malformed multipart body")
	ErrNoFile             = apperr.Input("no file uploaded")
	ErrNoFileData         = apperr.Input("no file data received")
)

// DecodedFile is one file part of a multipart body.
type DecodedFile struct {
	FieldName string
	Filename  string
	MimeType  string
	Content   []byte
}

// Size returns the content length in bytes.
func (f *DecodedFile) Size() int64 {
	return int64(len(f.Content))
}

// HeaderValue looks up name in headers ignoring case. Serverless gateways
// deliver header maps with whatever casing the client used.
func HeaderValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Decode parses a complete multipart/form-data body and returns its file parts
// in arrival order. Non-file fields are skipped. A nil slice with a nil error
// means the body held no file part.
func Decode(ctx context.Context, body []byte, contentType string) ([]DecodedFile, error) {
	boundary, err := boundaryOf(contentType)
	if err != nil {
		return nil, ErrMalformedMultipart.WithCause(err)
	}

	var files []DecodedFile
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, ErrMalformedMultipart.WithCause(err)
		}

		file, ok, err := readPart(part)
		_ = part.Close()
		if err != nil {
			return nil, ErrMalformedMultipart.WithCause(err)
		}
		if ok {
			files = append(files, file)
		}
	}
}

// boundaryOf validates a multipart/form-data Content-Type and returns its boundary.
func boundaryOf(contentType string) (string, error) {
	if strings.TrimSpace(contentType) == "" {
		return "", errors.New("missing content type")
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("parse content type: %w", err)
	}
	if mediaType != "multipart/form-data" {
		return "", fmt.Errorf("unsupported content type %q", mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", errors.New("missing multipart boundary")
	}
	return boundary, nil
}

// readPart buffers a file part. ok is false for plain form fields, which are
// drained and dropped.
func readPart(part *multipart.Part) (DecodedFile, bool, error) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return DecodedFile{}, false, fmt.Errorf("parse content disposition: %w", err)
	}
	if _, isFile := params["filename"]; !isFile {
		if _, err := io.Copy(io.Discard, part); err != nil {
			return DecodedFile{}, false, fmt.Errorf("skip field %q: %w", part.FormName(), err)
		}
		return DecodedFile{}, false, nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(part); err != nil {
		return DecodedFile{}, false, fmt.Errorf("read file part %q: %w", part.FormName(), err)
	}

	return DecodedFile{
		FieldName: part.FormName(),
		Filename:  part.FileName(),
		MimeType:  part.Header.Get("Content-Type"),
		Content:   buf.Bytes(),
	}, true, nil
}
