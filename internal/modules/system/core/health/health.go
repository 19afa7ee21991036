// Package health reports store liveness.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Pinger is anything that can check its own connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handler struct {
	checks map[string]Pinger
	logger *zap.Logger
}

// NewHandler checks every named dependency on each request. Nil entries are skipped.
func NewHandler(checks map[string]Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	live := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			live[name] = p
		}
	}
	return &Handler{checks: live, logger: logger.Named("health")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
}

// GET /health
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     conc.WaitGroup
		result = make(map[string]bool, len(h.checks))
	)
	for name, p := range h.checks {
		wg.Go(func() {
			err := p.Ping(ctx)
			if err != nil {
				h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			}
			mu.Lock()
			result[name] = err == nil
			mu.Unlock()
		})
	}
	wg.Wait()

	status, code := "ok", http.StatusOK
	for _, ok := range result {
		if !ok {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	body := gin.H{"status": status}
	for name, ok := range result {
		body[name] = ok
	}
	c.JSON(code, body)
}
