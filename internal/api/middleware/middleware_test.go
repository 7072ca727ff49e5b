package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := Auth("secret-key")(okHandler)

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/1", nil)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("wrong scheme is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/1", nil)
		req.Header.Set("Authorization", "Basic secret-key")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/1", nil)
		req.Header.Set("Authorization", "Bearer wrong-key")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid key passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/1", nil)
		req.Header.Set("Authorization", "Bearer secret-key")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer is case insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/1", nil)
		req.Header.Set("Authorization", "bearer secret-key")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogging(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// The wrapped writer must pass the status through unchanged.
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
