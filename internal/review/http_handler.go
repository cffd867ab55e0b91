package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

type createReviewRequest struct {
	BookID  string `json:"book_id" validate:"required"`
	Content string `json:"content"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

type updateReviewRequest struct {
	Content *string `json:"content"`
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// Create handles POST /reviews
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var body createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := validationDetails(body); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return
	}

	created, err := h.svc.Create(r.Context(), userID, body.BookID, body.Content, body.Rating)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccessCreated(w, r, created)
}

// Update handles PATCH /reviews/{reviewID}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}
	reviewID := r.PathValue("reviewID")

	var body updateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := validationDetails(body); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return
	}

	updated, err := h.svc.Update(r.Context(), userID, reviewID, body.Content, body.Rating)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, updated, nil)
}

// Delete handles DELETE /reviews/{reviewID}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}
	reviewID := r.PathValue("reviewID")

	if err := h.svc.Remove(r.Context(), userID, reviewID, httpx.RoleFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// ListForBook handles GET /books/{bookID}/reviews
func (h *HTTPHandler) ListForBook(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("bookID")
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("limit"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	reviews, total, err := h.svc.ListForBook(r.Context(), bookID, pageSize, (page-1)*pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, reviews, map[string]any{
		"page":  page,
		"limit": pageSize,
		"total": total,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Review not found", nil)
	case errors.Is(err, ErrConflict):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "You have already reviewed this book", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "You are not authorized to delete this review", nil)
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
