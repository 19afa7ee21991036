// Package media accepts image uploads and stores them on the media bucket.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/youth-club/core/internal/access"
	appcfg "github.com/youth-club/core/internal/config"
	"github.com/youth-club/core/internal/pkg/apperr"
	"go.uber.org/zap"
)

// Asset is an uploaded image.
type Asset struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type Service struct {
	store  ObjectStore
	opts   appcfg.MediaOptions
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store ObjectStore, opts appcfg.MediaOptions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, opts: opts, logger: logger.Named("media"), now: time.Now}
}

// Upload checks that r holds a supported image within the size limit and
// stores it under a fresh key.
func (s *Service) Upload(ctx context.Context, caller access.Caller, r io.Reader) (*Asset, error) {
	if !caller.Authenticated() {
		return nil, apperr.Unauthenticated()
	}

	limit := s.opts.MaxBytes()
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, apperr.Validation("unreadable upload", nil)
	}
	if len(payload) == 0 {
		return nil, apperr.Validation("empty upload", map[string]string{"file": "required"})
	}
	if int64(len(payload)) > limit {
		return nil, apperr.Validation(fmt.Sprintf("image exceeds %d MB", s.opts.MaxSizeMB), map[string]string{"file": "max"})
	}

	kind, err := filetype.Match(payload)
	if err != nil || !filetype.IsImage(payload) || !allowedImages[kind.MIME.Value] {
		return nil, apperr.Validation("unsupported image type", map[string]string{"file": "image"})
	}

	key := s.objectKey(kind.Extension)
	if err := s.store.Put(ctx, key, payload, kind.MIME.Value); err != nil {
		s.logger.Error("media upload failed", zap.String("key", key), zap.Error(err))
		return nil, apperr.Store(err, "upload media")
	}
	s.logger.Info("media uploaded",
		zap.String("key", key),
		zap.Int("bytes", len(payload)),
		zap.String("by", caller.UserID))

	return &Asset{
		Key:         key,
		URL:         publicURL(s.opts, key),
		ContentType: kind.MIME.Value,
		Size:        int64(len(payload)),
	}, nil
}

var allowedImages = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/avif": true,
	"image/heif": true,
}

func (s *Service) objectKey(ext string) string {
	return path.Join(s.opts.Prefix, s.now().UTC().Format("2006/01"), uuid.NewString()+"."+ext)
}
