package services

import (
	"context"
	"testing"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckIn(t *testing.T) {
	s := setupTestStore(t)
	svc := NewCheckInService(s)
	user := createTestUser(t, s, "alice@example.com", "Alice")

	entry, err := svc.Create(context.Background(), user.ID, models.MoodGood, 4, "  slept well  ")
	require.NoError(t, err)

	assert.Equal(t, models.MoodGood, entry.Mood)
	assert.Equal(t, 4, entry.StressLevel)
	assert.Equal(t, "slept well", entry.Note)
	assert.NotZero(t, entry.ID)
}

func TestCreateCheckIn_Validation(t *testing.T) {
	s := setupTestStore(t)
	svc := NewCheckInService(s)
	user := createTestUser(t, s, "alice@example.com", "Alice")
	ctx := context.Background()

	_, err := svc.Create(ctx, user.ID, "ecstatic", 4, "")
	assert.ErrorIs(t, err, ErrInvalidMood)

	_, err = svc.Create(ctx, user.ID, models.MoodGood, 0, "")
	assert.ErrorIs(t, err, ErrInvalidStress)

	_, err = svc.Create(ctx, user.ID, models.MoodGood, 11, "")
	assert.ErrorIs(t, err, ErrInvalidStress)
}

func TestListMine_DefaultRange(t *testing.T) {
	s := setupTestStore(t)
	svc := NewCheckInService(s)
	user := createTestUser(t, s, "alice@example.com", "Alice")
	other := createTestUser(t, s, "bob@example.com", "Bob")

	now := time.Now()
	addCheckIn(t, s, user.ID, models.MoodGood, 3, "", now.AddDate(0, 0, -40))
	addCheckIn(t, s, user.ID, models.MoodOkay, 5, "", now.AddDate(0, 0, -1))
	addCheckIn(t, s, other.ID, models.MoodGreat, 2, "", now.AddDate(0, 0, -1))

	var zero time.Time
	entries, err := svc.ListMine(context.Background(), user.ID, zero, zero)
	require.NoError(t, err)
	require.Len(t, entries, 1, "default window is 30 days and only own entries")
	assert.Equal(t, models.MoodOkay, entries[0].Mood)
}
