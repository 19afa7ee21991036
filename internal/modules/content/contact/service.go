// Package contact stores messages left through the public contact form.
// Messages are not moderated; only admins can read them.
package contact

import (
	"context"
	"strings"
	"time"

	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/pagination"
	"github.com/youth-club/core/internal/pkg/validate"
	"go.uber.org/zap"
)

type SubmitDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("contact"), now: time.Now}
}

func (s *Service) Submit(ctx context.Context, caller access.Caller, dto SubmitDTO) (*models.ContactMessage, error) {
	if _, err := access.Check(caller, access.OpCreate, access.ResourceContact); err != nil {
		return nil, err
	}
	msg := &models.ContactMessage{
		Name:      strings.TrimSpace(dto.Name),
		Email:     strings.ToLower(strings.TrimSpace(dto.Email)),
		Subject:   strings.TrimSpace(dto.Subject),
		Message:   strings.TrimSpace(dto.Message),
		CreatedAt: s.now(),
	}
	if err := validate.Struct("contact message", msg); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		return nil, err
	}
	s.logger.Info("contact message received", zap.String("id", msg.ID))
	return msg, nil
}

func (s *Service) List(ctx context.Context, caller access.Caller, unreadOnly bool, q pagination.Query) ([]*models.ContactMessage, int64, error) {
	if _, err := access.Check(caller, access.OpModerate, access.ResourceContact); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, unreadOnly, pagination.Normalize(q))
}

func (s *Service) MarkRead(ctx context.Context, caller access.Caller, id string) (*models.ContactMessage, error) {
	if _, err := access.Check(caller, access.OpModerate, access.ResourceContact); err != nil {
		return nil, err
	}
	return s.repo.MarkRead(ctx, id)
}
