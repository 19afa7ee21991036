package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/pkg/apperr"
	pkgcron "github.com/youth-club/core/internal/pkg/cron"
	"github.com/youth-club/core/internal/pkg/response"
	"github.com/youth-club/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionRetention = 7 * 24 * time.Hour

func registerJobs(sched *pkgcron.Scheduler, db *gorm.DB, logger *zap.Logger) {
	log := logger.Named("jobs")
	sched.Register(pkgcron.Job{
		Name:        "purge_sessions",
		Description: "delete sessions that expired or were revoked over a week ago",
		Interval:    6 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := session.Purge(db.WithContext(ctx), time.Now().Add(-sessionRetention))
			if err != nil {
				return err
			}
			log.Info("purged sessions", zap.Int64("count", n))
			return nil
		},
	})
}

// jobRoutes exposes the scheduler to admins.
func jobRoutes(rg *gin.RouterGroup, sched *pkgcron.Scheduler, authMW gin.HandlerFunc) {
	g := rg.Group("/jobs", authMW, requireElevated)
	g.GET("", func(c *gin.Context) {
		response.OK(c, sched.List())
	})
	g.POST("/:name/run", func(c *gin.Context) {
		err := sched.Trigger(c.Request.Context(), c.Param("name"))
		if errors.Is(err, pkgcron.ErrUnknownJob) {
			response.Error(c, apperr.NotFound("job", c.Param("name")))
			return
		}
		c.Status(http.StatusAccepted)
	})
}

func requireElevated(c *gin.Context) {
	if !middleware.CurrentCaller(c).Elevated() {
		response.Error(c, apperr.Forbidden("admin role required"))
		return
	}
	c.Next()
}
