package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbmetrics/internal/testsupport"
	"kbmetrics/pkg/errors"
	"kbmetrics/pkg/logger"
)

var (
	up   = CheckerFunc(func(context.Context) error { return nil })
	down = CheckerFunc(func(context.Context) error { return errors.ErrUnavailable })
)

func serve(t *testing.T, handler http.HandlerFunc) (int, HealthStatus) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	return rec.Code, status
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name     string
		checkers map[string]Checker
		code     int
		status   string
	}{
		{"all up", map[string]Checker{"mongo": up, "redis": up}, http.StatusOK, statusHealthy},
		{"one down", map[string]Checker{"mongo": up, "redis": down}, http.StatusOK, statusDegraded},
		{"all down", map[string]Checker{"mongo": down, "redis": down}, http.StatusServiceUnavailable, statusUnhealthy},
		{"nothing to check", nil, http.StatusOK, statusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(logger.Nop(), tt.checkers, "kbmetrics", "test")

			code, status := serve(t, h.HandleHealth)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, status.Status)
			assert.Len(t, status.Checks, len(tt.checkers))
		})
	}
}

func TestHandleReadiness(t *testing.T) {
	h := New(logger.Nop(), map[string]Checker{"mongo": up, "redis": down}, "kbmetrics", "test")

	code, status := serve(t, h.HandleReadiness)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, statusUnhealthy, status.Status)
	assert.Equal(t, statusHealthy, status.Checks["mongo"].Status)
	assert.Equal(t, errors.ErrUnavailable.Error(), status.Checks["redis"].Error)
}

func TestHandleReadiness_Redis(t *testing.T) {
	client, srv := testsupport.NewRedisClient(t)
	redisCheck := CheckerFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	h := New(logger.Nop(), map[string]Checker{"redis": redisCheck, "mongo": nil}, "kbmetrics", "test")

	code, status := serve(t, h.HandleReadiness)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, status.Checks, 1)

	srv.Close()
	code, _ = serve(t, h.HandleReadiness)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestHandleLiveness(t *testing.T) {
	h := New(logger.Nop(), nil, "kbmetrics", "test")

	rec := httptest.NewRecorder()
	h.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
