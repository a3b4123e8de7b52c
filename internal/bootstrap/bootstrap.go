package bootstrap

import (
	"context"
	"net/http"

	"github.com/mtconnors79/mindwell-app-sub000/internal/config"
	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/notify"
	"github.com/mtconnors79/mindwell-app-sub000/internal/services"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      metrics.Recorder
	Dispatcher           notify.Dispatcher
	RateLimitRedisClient *redis.Client

	// Services
	AuditService      *services.AuditService
	UserService       *services.UserService
	InvitationService *services.InvitationService
	ConnectionService *services.ConnectionService
	SharedDataService *services.SharedDataService
	CheckInService    *services.CheckInService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	validateAllConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, notifications, Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = metrics.Init(app.Config.MetricsEnabled)
	app.Dispatcher = initializeDispatcher(app.Config)

	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	// Audit service first, everything else records through it
	app.AuditService = services.NewAuditService(
		app.DB,
		app.MetricsRecorder,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	app.UserService,
		app.InvitationService,
		app.ConnectionService,
		app.SharedDataService,
		app.CheckInService = initializeServices(
		app.Config,
		app.DB,
		app.AuditService,
		app.Dispatcher,
		app.MetricsRecorder,
	)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(
		app.UserService,
		app.InvitationService,
		app.ConnectionService,
		app.SharedDataService,
		app.CheckInService,
		app.AuditService,
	)

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		app.RateLimitRedisClient,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)
	addAuditServiceShutdownJob(m, app.AuditService)
	addInviteExpirySweepJob(m, app.Config, app.InvitationService)

	<-m.Done()
}
