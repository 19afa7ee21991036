// Package auth handles sign-up, sign-in and session revocation against the
// identity store.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
	sessionpkg "github.com/youth-club/core/internal/pkg/session"
	"github.com/youth-club/core/internal/pkg/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultFailDelay = 3 * time.Second

var errBadCredentials = apperr.New("bad credentials").
	WithHint("invalid username or password").
	Mark(apperr.ErrUnauthenticated)

type Service struct {
	db        *gorm.DB
	logger    *zap.Logger
	failDelay time.Duration
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger.Named("auth"), failDelay: defaultFailDelay}
}

// Register creates an applicant account with a pending application.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*models.UserModel, error) {
	dto.normalize()
	if err := validate.Struct("registration", &dto); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("username = ?", dto.Username).Count(&count).Error; err != nil {
		return nil, apperr.Store(err, "check username")
	}
	if count > 0 {
		return nil, apperr.Conflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.UserModel{
		Username:          dto.Username,
		Name:              dto.Name,
		Mail:              dto.Mail,
		Password:          string(hash),
		Role:              models.RoleApplicant,
		ApplicationStatus: models.ApplicationPending,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, apperr.Store(err, "create user")
	}
	s.logger.Info("account registered", zap.String("user", u.ID), zap.String("username", u.Username))
	return &u, nil
}

// Login checks the password and opens a new session. Unknown users and wrong
// passwords fail the same way, after the same delay.
func (s *Service) Login(ctx context.Context, dto LoginDTO, ip, ua string) (string, *models.UserModel, error) {
	if err := validate.Struct("login", &dto); err != nil {
		return "", nil, err
	}

	var u models.UserModel
	if err := s.db.WithContext(ctx).Where("username = ?", dto.Username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.slowDown()
			return "", nil, errBadCredentials
		}
		return "", nil, apperr.Store(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.Password)); err != nil {
		s.slowDown()
		return "", nil, errBadCredentials
	}

	token, _, err := sessionpkg.Issue(s.db.WithContext(ctx), u.ID, ip, ua, sessionpkg.DefaultTTL)
	if err != nil {
		return "", nil, apperr.Store(err, "issue session")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&u).Updates(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	}).Error; err != nil {
		s.logger.Warn("record last login failed", zap.String("user", u.ID), zap.Error(err))
	}
	u.LastLoginTime = &now
	u.LastLoginIP = ip
	return token, &u, nil
}

// Logout revokes the caller's current session.
func (s *Service) Logout(ctx context.Context, caller access.Caller, sessionID string) error {
	if !caller.Authenticated() {
		return apperr.Unauthenticated()
	}
	err := sessionpkg.Revoke(s.db.WithContext(ctx), caller.UserID, sessionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Store(err, "revoke session")
	}
	return nil
}

// Me returns the caller's own account.
func (s *Service) Me(ctx context.Context, caller access.Caller) (*models.UserModel, error) {
	if !caller.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	var u models.UserModel
	if err := s.db.WithContext(ctx).First(&u, "id = ?", caller.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user", caller.UserID)
		}
		return nil, apperr.Store(err, "load user")
	}
	return &u, nil
}

func (s *Service) slowDown() {
	if s.failDelay > 0 {
		time.Sleep(s.failDelay)
	}
}
