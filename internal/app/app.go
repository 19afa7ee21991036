package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/config"
	"github.com/youth-club/core/internal/database"
	"github.com/youth-club/core/internal/middleware"
	"github.com/youth-club/core/internal/modules/gateway/gateway"
	pkgcron "github.com/youth-club/core/internal/pkg/cron"
	pkgredis "github.com/youth-club/core/internal/pkg/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const storeCloseTimeout = 5 * time.Second

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	docs   *mongo.Database
	rc     *pkgredis.Client
	hub    *gateway.Hub
	socket *gateway.SocketServer
	sched  *pkgcron.Scheduler
	logger *zap.Logger

	cancel context.CancelFunc
	bg     conc.WaitGroup
}

// New connects the stores and builds the router: config → MySQL → MongoDB
// → Redis → hub → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	docs, err := database.ConnectMongo(context.Background(), cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(corsMiddleware(cfg))

	nodeID := cfg.Gateway.NodeID
	if nodeID == "" {
		nodeID = uuid.NewString()
	}
	hub := gateway.NewHub(nodeID, gateway.NewRedisRelay(rc, logger), logger)
	socket := gateway.NewSocketServer(hub, func(token string) (access.Caller, error) {
		caller, _, err := middleware.Authenticate(db, token)
		return caller, err
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		docs:   docs,
		rc:     rc,
		hub:    hub,
		socket: socket,
		sched:  pkgcron.New(logger),
		logger: logger,
		cancel: cancel,
	}
	if err := a.registerRoutes(ctx); err != nil {
		cancel()
		return nil, err
	}

	a.bg.Go(func() { hub.Run(ctx) })
	registerJobs(a.sched, db, logger)
	a.sched.Start(ctx)

	logger.Info("gateway node ready", zap.String("node", nodeID))
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops the hub first so live streams end, then drains srv, then
// releases every store connection on a fresh budget.
func (a *App) Shutdown(ctx context.Context, srv *http.Server) error {
	a.cancel()
	a.bg.Wait()
	a.socket.Close()

	err := srv.Shutdown(ctx)
	a.closeStores()
	return err
}

func (a *App) closeStores() {
	ctx, cancel := context.WithTimeout(context.Background(), storeCloseTimeout)
	defer cancel()

	if err := a.docs.Client().Disconnect(ctx); err != nil {
		a.logger.Warn("mongo disconnect failed", zap.Error(err))
	}
	if err := a.rc.Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("database close failed", zap.Error(err))
	}
}

var processStart = time.Now()
