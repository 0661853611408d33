package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/pixtag/service/internal/response"
)

// Handler holds the HTTP handler for the upload endpoint.
type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler creates a new upload Handler accepting bodies up to maxBytes.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

// Response is the body of a successful upload.
type Response struct {
	URL string `json:"url" example:"https://res.cloudinary.com/demo/image/upload/1718000000000000000-cat.png"`
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Store the first file part of a multipart/form-data body under a unique key and return its public URL.
//	@Tags			upload
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"File to store"
//	@Success		200		{object}	Response
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		405		{object}	response.ErrorBody
//	@Failure		413		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(); err != nil {
		response.Fail(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %s", humanize.Bytes(uint64(h.maxBytes))))
			return
		}
		response.BadRequest(w, "could not read request body")
		return
	}

	asset, err := h.svc.Upload(r.Context(), body, r.Header.Get("Content-Type"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.OK(w, Response{URL: asset.SecureURL})
}
