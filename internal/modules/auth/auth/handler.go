package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/logout", authMW, h.logout)
	a.GET("/me", authMW, h.me)
}

// POST /auth/register
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error(c, apperr.Validation("invalid request body", nil))
		return
	}
	u, err := h.svc.Register(c.Request.Context(), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toMe(u))
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error(c, apperr.Validation("invalid request body", nil))
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	setAuthTokenCookie(c, token)
	response.OK(c, loginResponse{Token: token, User: toMe(u)})
}

// POST /auth/logout
func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.CurrentCaller(c), middleware.CurrentSessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	clearAuthTokenCookie(c)
	response.NoContent(c)
}

// GET /auth/me
func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toMe(u))
}
