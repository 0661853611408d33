package vision

import (
	"errors"
	"io"
	"net/http"

	"github.com/pixtag/service/internal/response"
)

// maxRequestBytes bounds the JSON body of a tagging request.
const maxRequestBytes = 64 << 10

// Handler holds the HTTP handler for the tagging endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates a new tagging Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// TagResponse is the body of a successful tagging request.
type TagResponse struct {
	Tags            string           `json:"tags" example:"cat, animal, pet, feline, whiskers"`
	PossibleObjects []PossibleObject `json:"possibleObjects"`
}

// NewTagResponse builds the response document for res.
func NewTagResponse(res *Result) TagResponse {
	objects := res.PossibleObjects
	if objects == nil {
		objects = []PossibleObject{}
	}
	return TagResponse{Tags: res.Joined(), PossibleObjects: objects}
}

// Tag godoc
//
//	@Summary		Tag an image
//	@Description	Detect labels for a public image URL and return five normalized tags plus every label with its confidence.
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TagRequest	true	"Image to tag"
//	@Success		200		{object}	TagResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		405		{object}	response.ErrorBody
//	@Failure		413		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/tags [post]
func (h *Handler) Tag(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(); err != nil {
		response.Fail(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		response.BadRequest(w, "could not read request body")
		return
	}
	imageURL, err := ParseTagRequest(body)
	if err != nil {
		response.Fail(w, err)
		return
	}

	res, err := h.svc.Tag(r.Context(), imageURL)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.OK(w, NewTagResponse(res))
}
