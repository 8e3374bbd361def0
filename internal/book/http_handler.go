package book

import (
	"encoding/json"
	"net/http"
	"strconv"
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

type createBookReq struct {
	Title           string `json:"title" validate:"required,max=200"`
	Author          string `json:"author" validate:"required,max=200"`
	Genre           string `json:"genre" validate:"required,max=100"`
	PublicationYear int    `json:"publicationYear" validate:"required,pubyear"`
}

// List handles GET /books
// @Summary List books
// @Description Paged list of books, newest first, with optional author and genre filters
// @Tags books
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param author query string false "Author substring, case-insensitive"
// @Param genre query string false "Genre substring, case-insensitive"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	books, total, err := h.service.List(r.Context(), entity.BookQuery{
		Author: strings.TrimSpace(query.Get("author")),
		Genre:  strings.TrimSpace(query.Get("genre")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err, "")
		return
	}

	pages := (total + limit - 1) / limit
	httpx.JSONSuccess(w, r, books, map[string]any{
		"count":           len(books),
		"total":           total,
		"page":            page,
		"pages":           pages,
		"hasNextPage":     page < pages,
		"hasPreviousPage": page > 1,
	})
}

// Search handles GET /books/search
// @Summary Search books
// @Description Case-insensitive match on title or author, sorted by title, at most 10 results
// @Tags books
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpx.WriteError(w, r, h.log, err, "")
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// Get handles GET /books/{id}
// @Summary Get a book with its reviews
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := httpx.PathParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	b, err := h.service.GetWithReviews(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err, "Book not found")
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /books
// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body createBookReq true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var req createBookReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Genre = strings.TrimSpace(req.Genre)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	b, err := h.service.AddBook(r.Context(), AddBookInput{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		OwnerID:         userID,
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err, "")
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}
