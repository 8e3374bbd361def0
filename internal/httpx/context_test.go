package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestPathParam(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/books/{id}/reviews", func(w http.ResponseWriter, req *http.Request) {
		got = PathParam(req, "id")
	})

	t.Run("reads the chi route match", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/b-42/reviews", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "b-42", got)
	})

	t.Run("empty outside a route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/b-42/reviews", nil)
		assert.Empty(t, PathParam(req, "id"))
	})

	t.Run("standard library path values are not consulted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/b-42/reviews", nil)
		req.SetPathValue("id", "b-42")
		assert.Empty(t, PathParam(req, "id"))
	})
}
