package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	rr := httptest.NewRecorder()

	Recovery(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "boom", lines[0]["panic"])
	assert.NotEmpty(t, lines[0]["stack"])
}

func TestRecoveryUsesRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	reqLogger := zerolog.New(&scoped).With().Str("request_id", "r-1").Logger()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(reqLogger.WithContext(req.Context()))

	Recovery(zerolog.New(&base))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(httptest.NewRecorder(), req)

	assert.Zero(t, base.Len())
	lines := decodeLogLines(t, &scoped)
	require.Len(t, lines, 1)
	assert.Equal(t, "r-1", lines[0]["request_id"])
}

func TestRecoveryRepanicsOnAbort(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithError(t, http.ErrAbortHandler.Error(), func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
