package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/qr-menu/pkg/logger"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "json")

	handler := chimiddleware.RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("gone"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/?zone=12", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "http request", record["msg"])
	assert.Equal(t, "GET", record["method"])
	assert.Equal(t, "/", record["path"])
	assert.Equal(t, "12", record["zone"])
	assert.EqualValues(t, http.StatusNotFound, record["status"])
	assert.EqualValues(t, 4, record["bytes"])
	assert.NotEmpty(t, record["request_id"])
}

func TestLogger_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "json")

	handler := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.EqualValues(t, http.StatusOK, record["status"])
}
