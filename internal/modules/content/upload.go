package content

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/modules/storage/media"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/response"
)

// POST /gallery/upload
//
// multipart: file, title, description, takenAt (RFC 3339 or 2006-01-02)
func (m *Module) uploadGallery(c *gin.Context) {
	caller := middleware.CurrentCaller(c)

	fh, err := c.FormFile(media.FormField)
	if err != nil {
		response.Error(c, apperr.Validation("missing upload", map[string]string{media.FormField: "required"}))
		return
	}

	img := &models.GalleryImage{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if raw := strings.TrimSpace(c.PostForm("takenAt")); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			response.Error(c, apperr.Validation("invalid takenAt", map[string]string{"takenAt": "datetime"}))
			return
		}
		img.TakenAt = &t
	}
	// Reject a bad record before anything reaches the bucket.
	if err := m.Gallery.Precheck(caller, img, "ImageURL"); err != nil {
		response.Error(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, apperr.Validation("unreadable upload", nil))
		return
	}
	defer f.Close()

	asset, err := m.deps.Uploader.Upload(c.Request.Context(), caller, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	img.ImageURL = asset.URL

	created, err := m.Gallery.Submit(c.Request.Context(), caller, img)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
