// Package moderation implements the pending → approved | rejected lifecycle
// shared by every content kind, gated by the access package.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/modules/content/store"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/pagination"
	"github.com/youth-club/core/internal/pkg/validate"
	"go.uber.org/zap"
)

type Service[T any, PT models.RecordPtr[T]] struct {
	repo       store.Repository[T]
	notifier   Notifier
	resolver   NameResolver
	hooks      []Hook[T]
	presenters []func(*T)
	logger     *zap.Logger
	now        func() time.Time
	kind       models.ContentKind
}

func NewService[T any, PT models.RecordPtr[T]](repo store.Repository[T], notifier Notifier, logger *zap.Logger) *Service[T, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	var zero T
	kind := PT(&zero).Kind()
	return &Service[T, PT]{
		repo:     repo,
		notifier: notifier,
		logger:   logger.Named("moderation").With(zap.String("kind", string(kind))),
		now:      time.Now,
		kind:     kind,
	}
}

func (s *Service[T, PT]) Kind() models.ContentKind { return s.kind }

// SetResolver enables display names on records returned to elevated callers.
func (s *Service[T, PT]) SetResolver(r NameResolver) { s.resolver = r }

// SetClock overrides time.Now, for tests.
func (s *Service[T, PT]) SetClock(now func() time.Time) { s.now = now }

// OnTransition registers a hook run after every committed approve or reject.
func (s *Service[T, PT]) OnTransition(h Hook[T]) { s.hooks = append(s.hooks, h) }

// OnPresent registers a function applied to every record before it is
// returned, e.g. to render derived fields.
func (s *Service[T, PT]) OnPresent(fn func(*T)) { s.presenters = append(s.presenters, fn) }

// Submit validates rec and stores it as pending, owned by caller. Any
// moderation fields supplied by the client are discarded.
func (s *Service[T, PT]) Submit(ctx context.Context, caller access.Caller, rec *T) (*T, error) {
	if err := s.Precheck(caller, rec); err != nil {
		return nil, err
	}

	now := s.now()
	*PT(rec).Base() = models.ContentBase{
		Status:    models.StatusPending,
		CreatedBy: caller.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("content submitted",
		zap.String("id", PT(rec).Base().ID),
		zap.String("created_by", caller.UserID))
	s.present(rec)
	return rec, nil
}

// Precheck runs Submit's access and validation checks without storing rec.
// Fields named in except are not validated yet.
func (s *Service[T, PT]) Precheck(caller access.Caller, rec *T, except ...string) error {
	if _, err := access.Check(caller, access.OpCreate, string(s.kind)); err != nil {
		return err
	}
	if n, ok := any(rec).(models.Normalizer); ok {
		n.Normalize()
	}
	return validate.StructExcept(string(s.kind), rec, except...)
}

func (s *Service[T, PT]) Approve(ctx context.Context, caller access.Caller, id, note string) (*T, error) {
	return s.transition(ctx, caller, id, models.StatusApproved, note)
}

func (s *Service[T, PT]) Reject(ctx context.Context, caller access.Caller, id, note string) (*T, error) {
	return s.transition(ctx, caller, id, models.StatusRejected, note)
}

func (s *Service[T, PT]) transition(ctx context.Context, caller access.Caller, id string, to models.ContentStatus, note string) (*T, error) {
	if _, err := access.Check(caller, access.OpModerate, string(s.kind)); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if len(note) > maxNoteLength {
		return nil, apperr.Validation("moderation note too long", map[string]string{"note": fmt.Sprintf("max=%d", maxNoteLength)})
	}

	rec, err := s.repo.Transition(ctx, id, store.Decision{
		To:   to,
		By:   caller.UserID,
		Note: note,
		At:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("content moderated",
		zap.String("id", id),
		zap.String("status", string(to)),
		zap.String("moderator", caller.UserID))

	s.afterCommit(ctx, rec)
	s.decorate(ctx, []*T{rec})
	return rec, nil
}

// afterCommit notifies listeners and runs hooks. Nothing here can fail the
// transition that already committed.
func (s *Service[T, PT]) afterCommit(ctx context.Context, rec *T) {
	base := PT(rec).Base()
	s.safely("broadcast", func() error {
		if s.notifier != nil {
			s.notifier.Broadcast(models.Event{
				Type:       models.EventFor(base.Status),
				RecordKind: s.kind,
				RecordID:   base.ID,
				At:         base.UpdatedAt,
			})
		}
		return nil
	})

	hookCtx := context.WithoutCancel(ctx)
	for _, h := range s.hooks {
		s.safely("transition hook", func() error { return h(hookCtx, rec) })
	}
}

func (s *Service[T, PT]) safely(what string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(what+" panicked", zap.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		s.logger.Warn(what+" failed", zap.Error(err))
	}
}

// List returns one page of records visible to caller. Public callers only
// ever see approved records, whatever status they ask for.
func (s *Service[T, PT]) List(ctx context.Context, caller access.Caller, q ListQuery) ([]*T, int64, error) {
	f := store.Filter{Status: q.Status, Page: pagination.Normalize(q.Page)}

	var scope access.Scope
	switch {
	case q.Mine:
		if _, err := access.Check(caller, access.OpReadAll, string(s.kind)); err != nil {
			return nil, 0, err
		}
		scope = access.ScopeOwn
		f.CreatedBy = caller.UserID
	case caller.Elevated():
		scope = access.Decide(caller, access.OpReadAll, string(s.kind)).Scope
	default:
		scope = access.Decide(caller, access.OpReadPublic, string(s.kind)).Scope
		f.Status = []models.ContentStatus{models.StatusApproved}
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for _, rec := range items {
		s.scrub(rec, scope)
	}
	if scope == access.ScopeAll {
		s.decorate(ctx, items)
	}
	for _, rec := range items {
		s.present(rec)
	}
	return items, total, nil
}

// Get returns a single record. Records the caller may not see are reported
// as not found so their existence does not leak.
func (s *Service[T, PT]) Get(ctx context.Context, caller access.Caller, id string) (*T, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	base := PT(rec).Base()

	var scope access.Scope
	switch {
	case caller.Elevated():
		scope = access.ScopeAll
	case caller.Authenticated() && base.CreatedBy == caller.UserID:
		scope = access.ScopeOwn
	case base.Status == models.StatusApproved:
		scope = access.ScopeApproved
	default:
		return nil, apperr.NotFound(string(s.kind), id)
	}

	s.scrub(rec, scope)
	if scope == access.ScopeAll {
		s.decorate(ctx, []*T{rec})
	}
	s.present(rec)
	return rec, nil
}

// Counts returns the number of records in each status.
func (s *Service[T, PT]) Counts(ctx context.Context, caller access.Caller) (map[models.ContentStatus]int64, error) {
	if _, err := access.Check(caller, access.OpModerate, string(s.kind)); err != nil {
		return nil, err
	}
	return s.repo.Counts(ctx)
}

func (s *Service[T, PT]) Delete(ctx context.Context, caller access.Caller, id string) error {
	if _, err := access.Check(caller, access.OpModerate, string(s.kind)); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("content deleted", zap.String("id", id), zap.String("by", caller.UserID))
	return nil
}

// scrub hides data a public reader must not see.
func (s *Service[T, PT]) scrub(rec *T, scope access.Scope) {
	if scope != access.ScopeApproved {
		return
	}
	PT(rec).Base().ModerationNote = ""
	if r, ok := any(rec).(models.Redactor); ok {
		r.Redact()
	}
}

// decorate fills display names for the soft identity references. A user
// missing from the identity store is left blank.
func (s *Service[T, PT]) decorate(ctx context.Context, items []*T) {
	if s.resolver == nil || len(items) == 0 {
		return
	}
	ids := lo.Uniq(lo.FlatMap(items, func(rec *T, _ int) []string {
		base := PT(rec).Base()
		return lo.Compact([]string{base.CreatedBy, base.ApprovedBy})
	}))
	if len(ids) == 0 {
		return
	}
	names := s.resolver.Names(ctx, ids)
	for _, rec := range items {
		base := PT(rec).Base()
		base.CreatedByName = names[base.CreatedBy]
		base.ApprovedByName = names[base.ApprovedBy]
	}
}

func (s *Service[T, PT]) present(rec *T) {
	for _, fn := range s.presenters {
		fn(rec)
	}
}
