package media

import (
	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/response"
)

// FormField is the multipart field carrying the image.
const FormField = "file"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/media/upload", authMW, h.upload)
}

// POST /media/upload
func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile(FormField)
	if err != nil {
		response.Error(c, apperr.Validation("missing upload", map[string]string{FormField: "required"}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, apperr.Validation("unreadable upload", nil))
		return
	}
	defer f.Close()

	asset, err := h.svc.Upload(c.Request.Context(), middleware.CurrentCaller(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, asset)
}
