package readinglist

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

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

type setStatusRequest struct {
	BookID     string     `json:"book_id" validate:"required"`
	Status     string     `json:"status" validate:"required,oneof=TBR READING READ"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// SetStatus handles POST /reading-list
func (h *HTTPHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var body setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if err := validate.Struct(body); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", nil)
		return
	}

	item := &Item{
		UserID:     userID,
		BookID:     body.BookID,
		Status:     body.Status,
		StartedAt:  body.StartedAt,
		FinishedAt: body.FinishedAt,
	}
	if err := h.svc.SetStatus(r.Context(), item); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, item, nil)
}

// Remove handles DELETE /reading-list/{bookID}
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}
	bookID := r.PathValue("bookID")

	if err := h.svc.Remove(r.Context(), userID, bookID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found in reading list", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// ListByStatus handles GET /reading-list?status=
func (h *HTTPHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	status := r.URL.Query().Get("status")
	items, err := h.svc.ListByStatus(r.Context(), userID, status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "status must be TBR, READING or READ", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, items, nil)
}
