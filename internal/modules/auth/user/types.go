package user

import (
	"time"

	"github.com/youth-club/core/internal/models"
)

type UpdateRoleDTO struct {
	Role models.UserRole `json:"role" validate:"required,oneof=applicant member admin super_admin"`
}

type userResponse struct {
	ID                string                   `json:"id"`
	Username          string                   `json:"username"`
	Name              string                   `json:"name"`
	Mail              string                   `json:"mail,omitempty"`
	Role              models.UserRole          `json:"role"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	LastLoginTime     *time.Time               `json:"lastLoginTime,omitempty"`
	Created           time.Time                `json:"created"`
}

func toResponse(u *models.UserModel) userResponse {
	return userResponse{
		ID:                u.ID,
		Username:          u.Username,
		Name:              DisplayName(u),
		Mail:              u.Mail,
		Role:              u.Role,
		ApplicationStatus: u.ApplicationStatus,
		LastLoginTime:     u.LastLoginTime,
		Created:           u.CreatedAt,
	}
}

// DisplayName is the user's name, falling back to the username.
func DisplayName(u *models.UserModel) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
