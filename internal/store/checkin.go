package store

import (
	"errors"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/models"

	"gorm.io/gorm"
)

func (s *Store) CreateCheckIn(entry *models.CheckIn) error {
	return s.db.Create(entry).Error
}

// ListCheckIns returns a user's check-ins inside [from, to), oldest first.
// A zero `to` means no upper bound.
func (s *Store) ListCheckIns(userID int64, from, to time.Time) ([]models.CheckIn, error) {
	query := s.db.Model(&models.CheckIn{}).Where("user_id = ?", userID)
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}

	var entries []models.CheckIn
	err := query.Order("created_at ASC").Find(&entries).Error
	return entries, err
}

// LatestCheckIn returns the user's most recent entry.
func (s *Store) LatestCheckIn(userID int64) (*models.CheckIn, error) {
	var entry models.CheckIn
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// CountCheckIns returns the user's total entry count.
func (s *Store) CountCheckIns(userID int64) (int64, error) {
	var count int64
	err := s.db.Model(&models.CheckIn{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
