package user

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/models"
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
	g := rg.Group("/users", authMW)
	g.GET("", h.list)
	g.PATCH("/:id/role", h.updateRole)
}

// GET /users?role=applicant
func (h *Handler) list(c *gin.Context) {
	users, meta, err := h.svc.List(c.Request.Context(), middleware.CurrentCaller(c),
		models.UserRole(c.Query("role")), pagination.FromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	items := lo.Map(users, func(u models.UserModel, _ int) userResponse { return toResponse(&u) })
	response.Paged(c, items, meta)
}

// PATCH /users/:id/role
func (h *Handler) updateRole(c *gin.Context) {
	var dto UpdateRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error(c, apperr.Validation("invalid request body", nil))
		return
	}
	u, err := h.svc.UpdateRole(c.Request.Context(), middleware.CurrentCaller(c), c.Param("id"), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toResponse(u))
}
