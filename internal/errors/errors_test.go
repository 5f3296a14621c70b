package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Internal("x"), http.StatusInternalServerError},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{RateLimit("x"), http.StatusTooManyRequests},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable},
		{NoData(nil), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk gone")
	err := InternalWrap(cause, "load failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INTERNAL_ERROR: load failed (caused by: disk gone)", err.Error())
	assert.Equal(t, "NOT_FOUND: x", NotFound("x").Error())
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, discardLogger(), NotFound("chart not found").WithDetails("pie"), "req-1")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			Details   string `json:"details"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "pie", body.Error.Details)
	assert.Equal(t, "req-1", body.Error.RequestID)
}

func TestWriteError_WrappedAndPlain(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, discardLogger(), fmt.Errorf("handler: %w", NoData(nil)), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"NO_DATA"`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	w = httptest.NewRecorder()
	WriteError(w, logger, stderrors.New("boom"), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"INTERNAL_ERROR"`)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, map[string]int{"records": 2}, map[string]string{"Cache-Control": "no-store"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"success":true,"data":{"records":2}}`, w.Body.String())
}
