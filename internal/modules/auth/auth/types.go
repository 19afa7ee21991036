package auth

import (
	"strings"
	"time"

	"github.com/youth-club/core/internal/models"
)

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterDTO struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name"     validate:"max=80"`
	Mail     string `json:"mail"     validate:"omitempty,email"`
}

func (d *RegisterDTO) normalize() {
	d.Username = strings.ToLower(strings.TrimSpace(d.Username))
	d.Name = strings.TrimSpace(d.Name)
	d.Mail = strings.ToLower(strings.TrimSpace(d.Mail))
}

type loginResponse struct {
	Token string     `json:"token"`
	User  meResponse `json:"user"`
}

type meResponse struct {
	ID                string                   `json:"id"`
	Username          string                   `json:"username"`
	Name              string                   `json:"name"`
	Mail              string                   `json:"mail,omitempty"`
	Role              models.UserRole          `json:"role"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	LastLoginTime     *time.Time               `json:"lastLoginTime,omitempty"`
}

func toMe(u *models.UserModel) meResponse {
	name := u.Name
	if name == "" {
		name = u.Username
	}
	return meResponse{
		ID:                u.ID,
		Username:          u.Username,
		Name:              name,
		Mail:              u.Mail,
		Role:              u.Role,
		ApplicationStatus: u.ApplicationStatus,
		LastLoginTime:     u.LastLoginTime,
	}
}
