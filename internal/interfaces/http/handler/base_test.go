package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/compucar/backend/internal/domain/shared"
)

func performError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &BaseHandler{}
	r.GET("/", func(c *gin.Context) {
		h.HandleError(c, err)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestBaseHandler_HandleError(t *testing.T) {
	t.Run("not found maps to 404", func(t *testing.T) {
		w := performError(t, shared.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("concurrency conflict maps to 409", func(t *testing.T) {
		w := performError(t, shared.ErrConcurrencyConflict)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid transition maps to 422", func(t *testing.T) {
		w := performError(t, shared.NewDomainError("INVALID_TRANSITION", "Cannot move from READY to RECEIVED"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Cannot move from READY to RECEIVED")
	})

	t.Run("wrapped domain errors unwrap", func(t *testing.T) {
		wrapped := func() error {
			return errors.Join(errors.New("context"), shared.ErrNotFound)
		}()
		w := performError(t, wrapped)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("plain errors become opaque 500s", func(t *testing.T) {
		w := performError(t, errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "pq:")
	})
}

func TestBaseHandler_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &BaseHandler{}
	r.GET("/", func(c *gin.Context) {
		h.Success(c, gin.H{"value": 7})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"value":7}}`, w.Body.String())
}
