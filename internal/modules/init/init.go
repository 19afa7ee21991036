package init_

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/response"
	"github.com/youth-club/core/internal/pkg/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInitialized = errors.New("already initialized")

type SetupDTO struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name"     validate:"max=80"`
	Mail     string `json:"mail"     validate:"omitempty,email"`
}

// Handler bootstraps the first account, which becomes the super_admin.
type Handler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewHandler(db *gorm.DB, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{db: db, logger: logger.Named("init")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/init")
	g.GET("", h.checkInit)
	g.POST("", h.setup)
}

// isInitialized returns true if at least one user exists in the database.
func isInitialized(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GET /init
func (h *Handler) checkInit(c *gin.Context) {
	done, err := isInitialized(h.db.WithContext(c.Request.Context()))
	if err != nil {
		response.Error(c, apperr.Store(err, "check init"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"isInit": done})
}

// POST /init
func (h *Handler) setup(c *gin.Context) {
	var dto SetupDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error(c, apperr.Validation("invalid request body", nil))
		return
	}
	dto.Username = strings.ToLower(strings.TrimSpace(dto.Username))
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Mail = strings.ToLower(strings.TrimSpace(dto.Mail))
	if err := validate.Struct("setup", &dto); err != nil {
		response.Error(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	u := models.UserModel{
		Username:          dto.Username,
		Name:              dto.Name,
		Mail:              dto.Mail,
		Password:          string(hash),
		Role:              models.RoleSuperAdmin,
		ApplicationStatus: models.ApplicationApproved,
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		done, err := isInitialized(tx)
		if err != nil {
			return err
		}
		if done {
			return errInitialized
		}
		return tx.Create(&u).Error
	})
	switch {
	case errors.Is(err, errInitialized):
		response.Error(c, apperr.Forbidden("system is already initialized"))
		return
	case err != nil:
		response.Error(c, apperr.Store(err, "create first user"))
		return
	}

	h.logger.Info("system initialized", zap.String("user", u.ID), zap.String("username", u.Username))
	response.Created(c, gin.H{"id": u.ID, "username": u.Username, "role": u.Role})
}
