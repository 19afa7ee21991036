package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func probe(t *testing.T, checks map[string]Pinger) (int, map[string]any) {
	t.Helper()
	r := gin.New()
	NewHandler(checks, nil).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func ok(context.Context) error { return nil }

func TestHealthAllUp(t *testing.T) {
	code, body := probe(t, map[string]Pinger{
		"mysql": PingFunc(ok),
		"mongo": PingFunc(ok),
		"redis": PingFunc(ok),
		"media": nil,
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"status": "ok", "mysql": true, "mongo": true, "redis": true}, body)
}

func TestHealthDegraded(t *testing.T) {
	code, body := probe(t, map[string]Pinger{
		"mysql": PingFunc(ok),
		"mongo": PingFunc(func(context.Context) error { return errors.New("no primary") }),
	})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, false, body["mongo"])
	assert.Equal(t, true, body["mysql"])
}
