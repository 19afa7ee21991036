package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/database"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/modules/auth/auth"
	"github.com/youth-club/core/internal/modules/auth/user"
	"github.com/youth-club/core/internal/modules/content"
	"github.com/youth-club/core/internal/modules/content/contact"
	"github.com/youth-club/core/internal/modules/gateway/gateway"
	init_ "github.com/youth-club/core/internal/modules/init"
	"github.com/youth-club/core/internal/modules/storage/media"
	"github.com/youth-club/core/internal/modules/system/core/health"
	"github.com/youth-club/core/internal/pkg/response"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(ctx context.Context) error {
	r := a.router
	db := a.db
	log := a.logger
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(db))
	api.Use(middleware.RateLimit(a.rc.Raw(), log))
	api.Use(middleware.Idempotence(a.rc.Raw()))

	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		up := time.Since(processStart)
		c.JSON(http.StatusOK, gin.H{"timestamp": up.Milliseconds(), "humanize": humanizeDuration(up)})
	})

	health.NewHandler(map[string]health.Pinger{
		"database": health.PingFunc(database.Ping(db)),
		"mongo":    health.PingFunc(database.PingMongo(a.docs)),
		"redis":    a.rc,
	}, log).RegisterRoutes(api)
	init_.NewHandler(db, log).RegisterRoutes(api)

	// Identity
	userSvc := user.NewService(db, log)
	resolver := user.NewResolver(db, log)
	auth.NewHandler(auth.NewService(db, log)).RegisterRoutes(api, authMW)
	user.NewHandler(userSvc).RegisterRoutes(api, authMW)

	// Media is optional; without a bucket gallery images are submitted by URL.
	deps := content.Deps{
		Notifier:     a.hub,
		Resolver:     resolver,
		Applications: userSvc,
		Logger:       log,
	}
	if a.cfg.Media.Enabled() {
		objects, err := media.NewS3Store(a.cfg.Media)
		if err != nil {
			return fmt.Errorf("media: %w", err)
		}
		mediaSvc := media.NewService(objects, a.cfg.Media, log)
		media.NewHandler(mediaSvc).RegisterRoutes(api, authMW)
		deps.Uploader = mediaSvc
	} else {
		log.Info("media bucket not configured, uploads disabled")
	}

	// Content
	mod := content.New(content.MongoRepos(a.docs), deps)
	if err := mod.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("content indexes: %w", err)
	}
	mod.RegisterRoutes(api, authMW)

	contactRepo := contact.NewMongoRepository(a.docs)
	if err := contact.EnsureIndexes(ctx, contactRepo); err != nil {
		return fmt.Errorf("contact indexes: %w", err)
	}
	contact.NewHandler(contact.NewService(contactRepo, log)).RegisterRoutes(api, authMW)

	// Notifications
	gw := gateway.NewHandler(a.hub, a.socket)
	gw.RegisterRoutes(api, authMW)
	gw.MountSocket(r)

	jobRoutes(api, a.sched, authMW)

	log.Debug("routes registered", zap.Int("count", len(r.Routes())))
	return nil
}
