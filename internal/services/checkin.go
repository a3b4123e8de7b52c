package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"
)

var (
	ErrInvalidMood   = errors.New("mood must be one of: great, good, okay, not_good, terrible")
	ErrInvalidStress = errors.New("stress level must be between 1 and 10")
)

// CheckInService is the thin CRUD layer over daily wellness entries. The
// sharing gateway projects these records, so it lives here rather than in a
// separate app.
type CheckInService struct {
	store *store.Store
}

func NewCheckInService(s *store.Store) *CheckInService {
	return &CheckInService{store: s}
}

// Create records one wellness entry for the user.
func (s *CheckInService) Create(
	ctx context.Context,
	userID int64,
	mood models.Mood,
	stressLevel int,
	note string,
) (*models.CheckIn, error) {
	if !mood.IsValid() {
		return nil, ErrInvalidMood
	}
	if stressLevel < 1 || stressLevel > 10 {
		return nil, ErrInvalidStress
	}

	entry := &models.CheckIn{
		UserID:      userID,
		Mood:        mood,
		StressLevel: stressLevel,
		Note:        strings.TrimSpace(note),
	}
	if err := s.store.CreateCheckIn(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListMine returns the user's own entries within the range.
func (s *CheckInService) ListMine(
	ctx context.Context,
	userID int64,
	from, to time.Time,
) ([]models.CheckIn, error) {
	from, to = normalizeRange(from, to)
	return s.store.ListCheckIns(userID, from, to)
}
