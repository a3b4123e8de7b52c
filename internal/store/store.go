package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/mtconnors79/mindwell-app-sub000/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// New opens the database, migrates the schema and seeds demo accounts on an
// empty store.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.AuditLog{},
		&models.CheckIn{},
	); err != nil {
		return nil, err
	}

	s := &Store{db: db}

	if err := s.seedData(); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	return s, nil
}

// Health pings the underlying connection.
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// generateRandomPassword generates a random password of specified length
func generateRandomPassword(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64 URL encoding to get a safe, printable password
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// seedData creates a demo patient account when the user table is empty, so a
// fresh install has something to log into.
func (s *Store) seedData() error {
	var userCount int64
	s.db.Model(&models.User{}).Count(&userCount)
	if userCount > 0 {
		return nil
	}

	password, err := generateRandomPassword(16)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{
		Email:        "demo@mindwell.local",
		DisplayName:  "Demo Patient",
		PasswordHash: string(hash),
	}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}
	log.Printf("Created demo user: demo@mindwell.local / %s (id: %d)", password, user.ID)

	return nil
}
