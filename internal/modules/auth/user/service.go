// Package user manages accounts in the identity store: listing, role changes
// and the application status driven by registration moderation.
package user

import (
	"context"
	"errors"

	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/pagination"
	"github.com/youth-club/core/internal/pkg/response"
	"github.com/youth-club/core/internal/pkg/validate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const resourceUsers = "users"

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger.Named("user")}
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user", id)
		}
		return nil, apperr.Store(err, "get user")
	}
	return &u, nil
}

// List returns one page of accounts, newest first, optionally narrowed to a role.
func (s *Service) List(ctx context.Context, caller access.Caller, role models.UserRole, q pagination.Query) ([]models.UserModel, response.Pagination, error) {
	if _, err := access.Check(caller, access.OpModerate, resourceUsers); err != nil {
		return nil, response.Pagination{}, err
	}
	tx := s.db.WithContext(ctx).Model(&models.UserModel{}).Order("created_at DESC")
	if role != "" {
		if !role.Valid() {
			return nil, response.Pagination{}, apperr.Validation("invalid role filter", map[string]string{"role": "oneof"})
		}
		tx = tx.Where("role = ?", role)
	}
	var users []models.UserModel
	meta, err := pagination.Paginate(tx, pagination.Normalize(q), &users)
	if err != nil {
		return nil, response.Pagination{}, apperr.Store(err, "list users")
	}
	return users, meta, nil
}

// UpdateRole changes another account's role. Only a super_admin may do this,
// and never on their own account.
func (s *Service) UpdateRole(ctx context.Context, caller access.Caller, id string, dto UpdateRoleDTO) (*models.UserModel, error) {
	if _, err := access.Check(caller, access.OpManageUsers, resourceUsers); err != nil {
		return nil, err
	}
	if err := validate.Struct("role", &dto); err != nil {
		return nil, err
	}
	if id == caller.UserID {
		return nil, apperr.Forbidden("cannot change your own role")
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == dto.Role {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(u).Update("role", dto.Role).Error; err != nil {
		return nil, apperr.Store(err, "update role")
	}
	s.logger.Info("role changed",
		zap.String("user", id),
		zap.String("from", string(u.Role)),
		zap.String("to", string(dto.Role)),
		zap.String("by", caller.UserID))
	u.Role = dto.Role
	return u, nil
}

// SetApplicationStatus records the outcome of a registration. An approved
// applicant becomes a member; higher roles are left alone.
func (s *Service) SetApplicationStatus(ctx context.Context, userID string, status models.ApplicationStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.UserModel
		if err := tx.Select("id", "role", "application_status").First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user", userID)
			}
			return apperr.Store(err, "load applicant")
		}

		updates := map[string]interface{}{"application_status": status}
		if status == models.ApplicationApproved && u.Role == models.RoleApplicant {
			updates["role"] = models.RoleMember
		}
		if err := tx.Model(&u).Updates(updates).Error; err != nil {
			return apperr.Store(err, "update application status")
		}
		s.logger.Info("application status updated",
			zap.String("user", userID),
			zap.String("status", string(status)),
			zap.Bool("promoted", updates["role"] != nil))
		return nil
	})
}
