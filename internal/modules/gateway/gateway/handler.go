package gateway

import (
	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/response"
)

type Handler struct {
	hub    *Hub
	socket *SocketServer
}

func NewHandler(hub *Hub, socket *SocketServer) *Handler {
	return &Handler{hub: hub, socket: socket}
}

// MountSocket serves socket.io at /socket.io on r. It belongs outside the
// API group: polling transports POST repeatedly and authenticate themselves.
func (h *Handler) MountSocket(r gin.IRoutes) {
	if h.socket == nil {
		return
	}
	sio := gin.WrapH(h.socket.Handler())
	r.Any("/socket.io", sio)
	r.Any("/socket.io/*any", sio)
}

// RegisterRoutes mounts the SSE channel and the stats endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("", authMW)
	a.GET("/notifications/stream", h.stream)
	a.GET("/gateway/stats", h.stats)
}

// GET /notifications/stream
func (h *Handler) stream(c *gin.Context) {
	serveSSE(c, h.hub)
}

// GET /gateway/stats
func (h *Handler) stats(c *gin.Context) {
	if !middleware.CurrentCaller(c).Elevated() {
		response.Error(c, apperr.Forbidden("gateway stats require admin"))
		return
	}
	response.OK(c, h.hub.Stats())
}
