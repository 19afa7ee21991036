package moderation

import (
	"context"
	"strings"

	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/pagination"
)

// Notifier receives moderation decisions after they commit. Implementations
// must not block.
type Notifier interface {
	Broadcast(e models.Event)
}

// NameResolver maps identity-store user ids to display names. Unknown ids
// are left out of the result.
type NameResolver interface {
	Names(ctx context.Context, ids []string) map[string]string
}

// Hook runs after a transition has committed. Its error is logged only.
type Hook[T any] func(ctx context.Context, rec *T) error

// ListQuery is what a caller asks List for.
type ListQuery struct {
	Status []models.ContentStatus
	// Mine restricts results to the caller's own submissions.
	Mine bool
	Page pagination.Query
}

type decisionDTO struct {
	Note string `json:"note"`
}

const maxNoteLength = 500

// ParseStatuses parses a comma-separated status list such as "pending,rejected".
func ParseStatuses(raw string) ([]models.ContentStatus, error) {
	var out []models.ContentStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		s := models.ContentStatus(part)
		if !s.Valid() {
			return nil, apperr.Validation("invalid status filter", map[string]string{"status": part})
		}
		out = append(out, s)
	}
	return out, nil
}
