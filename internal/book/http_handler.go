package book

import (
	"encoding/json"
	"errors"
	"net/http"

	"recto/internal/httpx"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type resolveRequest struct {
	ExternalID  string   `json:"external_id" validate:"required"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	CoverImage  string   `json:"cover_image"`
	CoverID     int      `json:"cover_id"`
	ReleaseDate string   `json:"release_date"`
}

// Resolve handles POST /books/resolve
// @Summary Resolve an external catalog id to the canonical book
// @Description Returns the local record for the work, creating or enriching it from Open Library as needed
// @Tags books
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /books/resolve [post]
func (h *HTTPHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var body resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := validationDetails(body); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return
	}

	resolved, err := h.svc.Resolve(r.Context(), body.ExternalID, Hints{
		Title:       body.Title,
		Authors:     body.Authors,
		CoverImage:  body.CoverImage,
		CoverID:     body.CoverID,
		ReleaseDate: body.ReleaseDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, resolved, nil)
}

// Get handles GET /books/{bookID}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("bookID")
	if bookID == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "bookID is required", nil)
		return
	}

	b, err := h.svc.GetByID(r.Context(), bookID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrConflict):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "Book identifier already linked", nil)
	case errors.Is(err, ErrUpstreamUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Book catalog is unavailable, try again later", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

func validationDetails(s any) []httpx.ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var details []httpx.ErrorDetail
	for _, fieldErr := range err.(validator.ValidationErrors) {
		details = append(details, httpx.ErrorDetail{
			Field:   fieldErr.Field(),
			Message: fieldErr.Tag(),
		})
	}
	return details
}
