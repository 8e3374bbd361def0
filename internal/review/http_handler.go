package review

import (
	"encoding/json"
	"net/http"
	"strings"

	"bookreview/internal/entity"
	"bookreview/internal/httpx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HTTPHandler struct {
	service *Service
	log     *zap.Logger
}

func NewHTTPHandler(service *Service, log *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

type createReviewReq struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// A zero rating or empty comment means the field was not supplied.
type updateReviewReq struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// Create handles POST /books/{id}/reviews
// @Summary Review a book
// @Description One review per user and book; the book's averageRating and reviewCount are recomputed
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body createReviewReq true "Review"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/reviews [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	bookID := httpx.PathParam(r, "id")
	if _, err := uuid.Parse(bookID); err != nil {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	var req createReviewReq
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rv, err := h.service.AddReview(r.Context(), bookID, userID, req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		httpx.WriteError(w, r, h.log, err, "Book not found")
		return
	}
	httpx.JSONSuccessCreated(w, r, rv)
}

// Update handles PUT /reviews/{id}
// @Summary Update own review
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Review ID"
// @Param request body updateReviewReq true "Fields to change"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reviews/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	reviewID, ok := reviewIDParam(w, r)
	if !ok {
		return
	}

	var req updateReviewReq
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rv, err := h.service.UpdateReview(r.Context(), reviewID, userID, entity.ReviewPatch{
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err, "Review not found")
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

// Delete handles DELETE /reviews/{id}
// @Summary Delete own review
// @Tags reviews
// @Produce json
// @Security Bearer
// @Param id path string true "Review ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reviews/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	reviewID, ok := reviewIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), reviewID, userID); err != nil {
		httpx.WriteError(w, r, h.log, err, "Review not found")
		return
	}
	httpx.JSONSuccessEmpty(w, r)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return "", false
	}
	return userID, true
}

func reviewIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := httpx.PathParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Review not found", nil)
		return "", false
	}
	return id, true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return false
	}
	if details := httpx.ValidateStruct(dst); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return false
	}
	return true
}
