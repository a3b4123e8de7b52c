package bootstrap

import (
	"log"

	"github.com/mtconnors79/mindwell-app-sub000/internal/config"
	"github.com/mtconnors79/mindwell-app-sub000/internal/notify"
)

// initializeDispatcher selects the notification backend. The log
// dispatcher is the default so a dev install needs no mail server.
func initializeDispatcher(cfg *config.Config) notify.Dispatcher {
	switch cfg.NotifierMode {
	case config.NotifierModeSMTP:
		log.Printf("Notifications via SMTP (%s, from %s)", cfg.SMTPAddr, cfg.SMTPFrom)
		return notify.NewSMTPDispatcher(
			cfg.SMTPAddr,
			cfg.SMTPFrom,
			cfg.SMTPUsername,
			cfg.SMTPPassword,
		)
	default:
		log.Printf("Notifications logged only (set NOTIFIER_MODE=smtp to send email)")
		return notify.NewLogDispatcher()
	}
}
