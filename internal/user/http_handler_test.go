package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookreview/internal/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPHandler_RegisterUser(t *testing.T) {
	repo := NewMemoryRepo()
	h := NewHTTPHandler(NewService(repo), zap.NewNop())

	register := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.RegisterUser(w, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
		return w
	}

	t.Run("created", func(t *testing.T) {
		w := register(`{"email":"Ann@Example.com","username":"ann","password":"Correct#Horse1"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"ann@example.com"`)
		assert.NotContains(t, w.Body.String(), "Correct#Horse1")
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := register(`{"email":"ann@example.com","username":"ann2","password":"Correct#Horse1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Email already registered")
	})

	t.Run("weak password", func(t *testing.T) {
		w := register(`{"email":"bob@example.com","username":"bob","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"password"`)
	})

	t.Run("invalid email", func(t *testing.T) {
		w := register(`{"email":"bob","username":"bob","password":"Correct#Horse1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"email"`)
	})
}

func TestHTTPHandler_GetCurrentUser(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	h := NewHTTPHandler(svc, zap.NewNop())

	u, err := svc.Register(t.Context(), "ann@example.com", "ann", "hash")
	require.NoError(t, err)

	t.Run("authenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		r = r.WithContext(httpx.ContextWithUser(r.Context(), u.ID, u.Role))
		h.GetCurrentUser(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"ann"`)
		assert.NotContains(t, w.Body.String(), "hash")
	})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
