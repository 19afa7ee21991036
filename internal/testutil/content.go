// Package testutil holds in-memory stand-ins for the stores and the
// notification channel, shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/modules/content/store"
	"github.com/youth-club/core/internal/pkg/apperr"
)

// ContentRepository is an in-memory store.Repository with the same
// compare-and-set semantics as the MongoDB one.
type ContentRepository[T any, PT models.RecordPtr[T]] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	seq   atomic.Int64

	// Err, when set, is returned by every call as a store failure.
	Err error
}

func NewContentRepository[T any, PT models.RecordPtr[T]]() *ContentRepository[T, PT] {
	return &ContentRepository[T, PT]{items: make(map[string]T)}
}

var _ store.Repository[models.GalleryImage] = (*ContentRepository[models.GalleryImage, *models.GalleryImage])(nil)

func (r *ContentRepository[T, PT]) Insert(_ context.Context, rec *T) error {
	if r.Err != nil {
		return apperr.Store(r.Err, "insert")
	}
	base := PT(rec).Base()
	if base.ID == "" {
		base.ID = "rec-" + strconv.FormatInt(r.seq.Add(1), 10)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[base.ID]; ok {
		return apperr.Conflict(fmt.Sprintf("%s already exists", base.ID))
	}
	r.items[base.ID] = *rec
	r.order = append(r.order, base.ID)
	return nil
}

func (r *ContentRepository[T, PT]) Get(_ context.Context, id string) (*T, error) {
	if r.Err != nil {
		return nil, apperr.Store(r.Err, "get")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *ContentRepository[T, PT]) get(id string) (*T, error) {
	rec, ok := r.items[id]
	if !ok {
		var zero T
		return nil, apperr.NotFound(string(PT(&zero).Kind()), id)
	}
	return &rec, nil
}

func (r *ContentRepository[T, PT]) List(_ context.Context, f store.Filter) ([]*T, int64, error) {
	if r.Err != nil {
		return nil, 0, apperr.Store(r.Err, "list")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*T
	for i := len(r.order) - 1; i >= 0; i-- {
		rec := r.items[r.order[i]]
		base := PT(&rec).Base()
		if len(f.Status) > 0 && !slices.Contains(f.Status, base.Status) {
			continue
		}
		if f.CreatedBy != "" && base.CreatedBy != f.CreatedBy {
			continue
		}
		matched = append(matched, &rec)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return PT(matched[i]).Base().CreatedAt.After(PT(matched[j]).Base().CreatedAt)
	})

	total := int64(len(matched))
	start := int(f.Page.Skip())
	if f.Page.Size <= 0 || start >= len(matched) {
		return nil, total, nil
	}
	end := min(start+f.Page.Size, len(matched))
	return matched[start:end], total, nil
}

func (r *ContentRepository[T, PT]) Counts(context.Context) (map[models.ContentStatus]int64, error) {
	if r.Err != nil {
		return nil, apperr.Store(r.Err, "counts")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[models.ContentStatus]int64{}
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, rec := range r.items {
		counts[PT(&rec).Base().Status]++
	}
	return counts, nil
}

func (r *ContentRepository[T, PT]) Transition(_ context.Context, id string, d store.Decision) (*T, error) {
	if r.Err != nil {
		return nil, apperr.Store(r.Err, "transition")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.get(id)
	if err != nil {
		return nil, err
	}
	base := PT(rec).Base()
	if base.Status != models.StatusPending {
		return nil, apperr.Conflict(fmt.Sprintf("%s %s is already %s", PT(rec).Kind(), id, base.Status))
	}

	at := d.At
	base.Status = d.To
	base.ApprovedBy = d.By
	base.ModeratedAt = &at
	if d.Note != "" {
		base.ModerationNote = d.Note
	}
	if at.After(base.UpdatedAt) {
		base.UpdatedAt = at
	}
	r.items[id] = *rec

	out := *rec
	return &out, nil
}

func (r *ContentRepository[T, PT]) Delete(_ context.Context, id string) error {
	if r.Err != nil {
		return apperr.Store(r.Err, "delete")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		var zero T
		return apperr.NotFound(string(PT(&zero).Kind()), id)
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

// Len returns the number of stored records.
func (r *ContentRepository[T, PT]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
