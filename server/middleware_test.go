package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var ctxRequestID string
	h := middleware.RequestID(Logger(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxRequestID = middleware.GetReqID(r.Context())
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotEmpty(t, ctxRequestID)

	dec := json.NewDecoder(&buf)
	var inside, served map[string]any
	require.NoError(t, dec.Decode(&inside))
	require.NoError(t, dec.Decode(&served))

	assert.Equal(t, "inside", inside["message"])
	assert.Equal(t, ctxRequestID, inside["request_id"])
	assert.Equal(t, "/api/v1/reports", inside["path"])

	assert.Equal(t, "request served", served["message"])
	assert.Equal(t, ctxRequestID, served["request_id"])
	assert.Equal(t, float64(http.StatusTeapot), served["status"])
	assert.Contains(t, served, "duration")
}

func TestLogger_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := Logger(&logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var served map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &served))
	assert.Equal(t, float64(http.StatusOK), served["status"])
	assert.Equal(t, float64(2), served["bytes"])
}
