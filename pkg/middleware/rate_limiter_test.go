package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BurstThenLimited(t *testing.T) {
	rl := NewRateLimiter(60, 5)
	e := echo.New()

	handler := rl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	for i := 0; i < 7; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Real-IP", "192.168.1.1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)
		assert.NoError(t, err)

		if i < 5 {
			assert.Equal(t, http.StatusOK, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
}

func TestRateLimiter_DifferentClientsIndependent(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	e := echo.New()

	handler := rl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Exhaust the first client's burst.
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		rec := httptest.NewRecorder()
		_ = handler(e.NewContext(req, rec))
	}

	// A second client still has its full burst.
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Real-IP", "10.0.0.2")
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
