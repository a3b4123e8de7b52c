package bootstrap

import (
	"github.com/mtconnors79/mindwell-app-sub000/internal/handlers"
	"github.com/mtconnors79/mindwell-app-sub000/internal/services"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	auth       *handlers.AuthHandler
	careCircle *handlers.CareCircleHandler
	shared     *handlers.SharedDataHandler
	checkin    *handlers.CheckInHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	userService *services.UserService,
	invitationService *services.InvitationService,
	connectionService *services.ConnectionService,
	sharedDataService *services.SharedDataService,
	checkInService *services.CheckInService,
	auditService *services.AuditService,
) handlerSet {
	return handlerSet{
		auth: handlers.NewAuthHandler(userService),
		careCircle: handlers.NewCareCircleHandler(
			invitationService,
			connectionService,
			auditService,
		),
		shared:  handlers.NewSharedDataHandler(sharedDataService),
		checkin: handlers.NewCheckInHandler(checkInService),
	}
}
