// Package store persists moderated content records in the document store.
package store

import (
	"context"
	"time"

	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/pagination"
)

// Filter narrows a List call. Zero values mean "any".
type Filter struct {
	Status    []models.ContentStatus
	CreatedBy string
	Page      pagination.Query
}

// Decision is the outcome of a moderation transition.
type Decision struct {
	To   models.ContentStatus
	By   string
	Note string
	At   time.Time
}

// Repository stores records of one content kind.
//
// Every error it returns is marked with an apperr sentinel: ErrNotFound for
// unknown ids, ErrConflict for a lost compare-and-set and ErrStore for
// anything the backend reports.
type Repository[T any] interface {
	Insert(ctx context.Context, rec *T) error
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, f Filter) ([]*T, int64, error)
	Counts(ctx context.Context) (map[models.ContentStatus]int64, error)
	// Transition applies d only while the stored record is still pending and
	// returns the record as committed.
	Transition(ctx context.Context, id string, d Decision) (*T, error)
	Delete(ctx context.Context, id string) error
}
