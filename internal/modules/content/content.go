// Package content wires the moderated content kinds to their stores, the
// notification hub and the identity store.
package content

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/modules/content/moderation"
	"github.com/youth-club/core/internal/modules/content/store"
	"github.com/youth-club/core/internal/modules/storage/media"
	"github.com/youth-club/core/internal/pkg/markdown"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Repos holds one repository per content kind.
type Repos struct {
	Members       store.Repository[models.Member]
	Projects      store.Repository[models.Project]
	News          store.Repository[models.NewsArticle]
	Gallery       store.Repository[models.GalleryImage]
	Registrations store.Repository[models.Registration]
}

// MongoRepos backs every kind with its own collection in db.
func MongoRepos(db *mongo.Database) Repos {
	return Repos{
		Members:       store.NewMongo[models.Member, *models.Member](db),
		Projects:      store.NewMongo[models.Project, *models.Project](db),
		News:          store.NewMongo[models.NewsArticle, *models.NewsArticle](db),
		Gallery:       store.NewMongo[models.GalleryImage, *models.GalleryImage](db),
		Registrations: store.NewMongo[models.Registration, *models.Registration](db),
	}
}

// ApplicationRecorder updates an applicant's account when their
// registration is decided.
type ApplicationRecorder interface {
	SetApplicationStatus(ctx context.Context, userID string, status models.ApplicationStatus) error
}

// Uploader stores an image and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, caller access.Caller, r io.Reader) (*media.Asset, error)
}

type Deps struct {
	Notifier     moderation.Notifier
	Resolver     moderation.NameResolver
	Applications ApplicationRecorder
	// Uploader is optional; without it POST /gallery/upload is not mounted.
	Uploader Uploader
	Logger   *zap.Logger
}

type Module struct {
	repos Repos
	deps  Deps

	Members       *moderation.Service[models.Member, *models.Member]
	Projects      *moderation.Service[models.Project, *models.Project]
	News          *moderation.Service[models.NewsArticle, *models.NewsArticle]
	Gallery       *moderation.Service[models.GalleryImage, *models.GalleryImage]
	Registrations *moderation.Service[models.Registration, *models.Registration]
}

func New(repos Repos, deps Deps) *Module {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	log := deps.Logger

	m := &Module{
		repos:         repos,
		deps:          deps,
		Members:       moderation.NewService[models.Member, *models.Member](repos.Members, deps.Notifier, log),
		Projects:      moderation.NewService[models.Project, *models.Project](repos.Projects, deps.Notifier, log),
		News:          moderation.NewService[models.NewsArticle, *models.NewsArticle](repos.News, deps.Notifier, log),
		Gallery:       moderation.NewService[models.GalleryImage, *models.GalleryImage](repos.Gallery, deps.Notifier, log),
		Registrations: moderation.NewService[models.Registration, *models.Registration](repos.Registrations, deps.Notifier, log),
	}

	if deps.Resolver != nil {
		m.Members.SetResolver(deps.Resolver)
		m.Projects.SetResolver(deps.Resolver)
		m.News.SetResolver(deps.Resolver)
		m.Gallery.SetResolver(deps.Resolver)
		m.Registrations.SetResolver(deps.Resolver)
	}

	m.News.OnPresent(renderNews(log))
	if deps.Applications != nil {
		m.Registrations.OnTransition(recordApplication(deps.Applications))
	}
	return m
}

// EnsureIndexes creates store indexes for every kind that needs them.
func (m *Module) EnsureIndexes(ctx context.Context) error {
	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}
	for _, r := range []any{m.repos.Members, m.repos.Projects, m.repos.News, m.repos.Gallery, m.repos.Registrations} {
		if ix, ok := r.(indexer); ok {
			if err := ix.EnsureIndexes(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Module) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	if m.deps.Uploader != nil {
		rg.POST("/"+models.KindGallery.Collection()+"/upload", authMW, m.uploadGallery)
	}
	moderation.NewHandler(m.Members).RegisterRoutes(rg, authMW)
	moderation.NewHandler(m.Projects).RegisterRoutes(rg, authMW)
	moderation.NewHandler(m.News).RegisterRoutes(rg, authMW)
	moderation.NewHandler(m.Gallery).RegisterRoutes(rg, authMW)
	moderation.NewHandler(m.Registrations).RegisterRoutes(rg, authMW)
}

func renderNews(log *zap.Logger) func(*models.NewsArticle) {
	return func(n *models.NewsArticle) {
		html, err := markdown.Render(n.Body)
		if err != nil {
			log.Warn("render news body failed", zap.String("id", n.ID), zap.Error(err))
			return
		}
		n.BodyHTML = html
	}
}

// recordApplication mirrors a registration decision onto the applicant's
// account. Registrations submitted anonymously have no account to update.
func recordApplication(rec ApplicationRecorder) moderation.Hook[models.Registration] {
	return func(ctx context.Context, r *models.Registration) error {
		if r.CreatedBy == "" {
			return nil
		}
		status := models.ApplicationRejected
		if r.Status == models.StatusApproved {
			status = models.ApplicationApproved
		}
		return rec.SetApplicationStatus(ctx, r.CreatedBy, status)
	}
}
