package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		wantBody string
	}{
		{
			name:     "not found",
			err:      apperr.NotFound("post"),
			status:   http.StatusNotFound,
			wantBody: `{"success":false,"error":{"code":"not_found","message":"post not found"}}`,
		},
		{
			name:     "rate limited",
			err:      apperr.ErrRateLimited,
			status:   http.StatusTooManyRequests,
			wantBody: `{"success":false,"error":{"code":"rate_limited","message":"too many changes, try again later"}}`,
		},
		{
			name:     "internal cause is hidden",
			err:      errors.New("pq: connection refused"),
			status:   http.StatusInternalServerError,
			wantBody: `{"success":false,"error":{"code":"internal","message":"internal server error"}}`,
		},
		{
			name:     "echo http error",
			err:      echo.ErrMethodNotAllowed,
			status:   http.StatusMethodNotAllowed,
			wantBody: `{"success":false,"error":{"code":"http_error","message":"Method Not Allowed"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(tt.err, c)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestPaginationClamps(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=-3&limit=500", nil), httptest.NewRecorder())
	p := pagination(c)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
}
