package contact

import (
	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/pagination"
	"github.com/youth-club/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/contact")
	g.POST("", h.submit)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.PATCH("/:id/read", h.markRead)
}

// POST /contact
func (h *Handler) submit(c *gin.Context) {
	var dto SubmitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error(c, apperr.Validation("invalid request body", nil))
		return
	}
	msg, err := h.svc.Submit(c.Request.Context(), middleware.CurrentCaller(c), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// GET /contact?unread=true
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request.Context(), middleware.CurrentCaller(c), c.Query("unread") == "true", q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, pagination.Meta(q, total))
}

// PATCH /contact/:id/read
func (h *Handler) markRead(c *gin.Context) {
	msg, err := h.svc.MarkRead(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, msg)
}
