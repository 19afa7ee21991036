package moderation

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/pagination"
	"github.com/youth-club/core/internal/pkg/response"
)

// Handler exposes one content kind under /{collection}.
type Handler[T any, PT models.RecordPtr[T]] struct {
	svc *Service[T, PT]
}

func NewHandler[T any, PT models.RecordPtr[T]](svc *Service[T, PT]) *Handler[T, PT] {
	return &Handler[T, PT]{svc: svc}
}

func (h *Handler[T, PT]) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/" + h.svc.Kind().Collection())

	g.GET("", h.list)
	g.POST("", h.submit)

	a := g.Group("", authMW)
	a.GET("/mine", h.mine)
	a.GET("/state", h.state)
	a.POST("/:id/approve", h.approve)
	a.POST("/:id/reject", h.reject)
	a.DELETE("/:id", h.delete)

	g.GET("/:id", h.get)
}

// GET /{kind}?status=pending,rejected
func (h *Handler[T, PT]) list(c *gin.Context) {
	h.respondList(c, false)
}

// GET /{kind}/mine
func (h *Handler[T, PT]) mine(c *gin.Context) {
	h.respondList(c, true)
}

func (h *Handler[T, PT]) respondList(c *gin.Context, mine bool) {
	statuses, err := ParseStatuses(c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	q := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request.Context(), middleware.CurrentCaller(c), ListQuery{
		Status: statuses,
		Mine:   mine,
		Page:   q,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, pagination.Meta(q, total))
}

// GET /{kind}/state
func (h *Handler[T, PT]) state(c *gin.Context) {
	counts, err := h.svc.Counts(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, counts)
}

// GET /{kind}/:id
func (h *Handler[T, PT]) get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

// POST /{kind}
func (h *Handler[T, PT]) submit(c *gin.Context) {
	rec := new(T)
	if err := c.ShouldBindJSON(rec); err != nil {
		response.Error(c, apperr.Validation("invalid request body", nil))
		return
	}
	created, err := h.svc.Submit(c.Request.Context(), middleware.CurrentCaller(c), rec)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// POST /{kind}/:id/approve
func (h *Handler[T, PT]) approve(c *gin.Context) {
	h.decide(c, h.svc.Approve)
}

// POST /{kind}/:id/reject
func (h *Handler[T, PT]) reject(c *gin.Context) {
	h.decide(c, h.svc.Reject)
}

func (h *Handler[T, PT]) decide(c *gin.Context, fn func(ctx context.Context, caller access.Caller, id, note string) (*T, error)) {
	var dto decisionDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&dto); err != nil {
			response.Error(c, apperr.Validation("invalid request body", nil))
			return
		}
	}
	rec, err := fn(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"), dto.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

// DELETE /{kind}/:id
func (h *Handler[T, PT]) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
