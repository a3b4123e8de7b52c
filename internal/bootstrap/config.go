package bootstrap

import (
	"errors"
	"fmt"
	"log"

	"github.com/mtconnors79/mindwell-app-sub000/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := validateNotifierConfig(cfg); err != nil {
		log.Fatalf("Invalid notifier configuration: %v", err)
	}
	if err := validateRateLimitConfig(cfg); err != nil {
		log.Fatalf("Invalid rate limit configuration: %v", err)
	}
}

// validateNotifierConfig checks that required config is present for the selected notifier mode
func validateNotifierConfig(cfg *config.Config) error {
	switch cfg.NotifierMode {
	case config.NotifierModeSMTP:
		if cfg.SMTPAddr == "" {
			return errors.New("SMTP_ADDR is required when NOTIFIER_MODE=smtp")
		}
	case config.NotifierModeLog:
		// No additional validation needed
	default:
		return fmt.Errorf("invalid NOTIFIER_MODE: %s (must be: log, smtp)", cfg.NotifierMode)
	}
	return nil
}

// validateRateLimitConfig checks that required config is present for the selected store
func validateRateLimitConfig(cfg *config.Config) error {
	if !cfg.RateLimitEnabled {
		return nil
	}
	switch cfg.RateLimitStore {
	case config.RateLimitStoreRedis:
		if cfg.RateLimitRedisAddr == "" {
			return errors.New("RATE_LIMIT_REDIS_ADDR is required when RATE_LIMIT_STORE=redis")
		}
	case config.RateLimitStoreMemory:
		// No additional validation needed
	default:
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE: %s (must be: memory, redis)",
			cfg.RateLimitStore,
		)
	}
	return nil
}
