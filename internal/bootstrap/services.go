package bootstrap

import (
	"github.com/mtconnors79/mindwell-app-sub000/internal/config"
	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/notify"
	"github.com/mtconnors79/mindwell-app-sub000/internal/services"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"
)

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	auditService *services.AuditService,
	dispatcher notify.Dispatcher,
	recorder metrics.Recorder,
) (
	*services.UserService,
	*services.InvitationService,
	*services.ConnectionService,
	*services.SharedDataService,
	*services.CheckInService,
) {
	userService := services.NewUserService(db, cfg)
	invitationService := services.NewInvitationService(db, cfg, auditService, dispatcher, recorder)
	connectionService := services.NewConnectionService(
		db,
		auditService,
		dispatcher,
		cfg.NotifyTimeout,
		recorder,
	)
	sharedDataService := services.NewSharedDataService(db, auditService, recorder)
	checkInService := services.NewCheckInService(db)

	return userService, invitationService, connectionService, sharedDataService, checkInService
}
