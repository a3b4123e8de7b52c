package services

import (
	"context"
	"testing"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"
	"github.com/mtconnors79/mindwell-app-sub000/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_LogSyncAndHistory(t *testing.T) {
	s := setupTestStore(t)
	audit := newTestAudit(t, s)
	patient := createTestUser(t, s, "alice@example.com", "Alice")
	conn := seedConnection(t, s, patient.ID)

	ctx := context.Background()
	for _, action := range []models.ActionType{
		models.ActionAccepted,
		models.ActionViewedSummary,
		models.ActionViewedCheckins,
	} {
		require.NoError(t, audit.LogSync(ctx, AuditEntry{
			ConnectionID: conn.ID,
			ActorUserID:  patient.ID,
			ActionType:   action,
		}))
		time.Sleep(5 * time.Millisecond) // distinct created_at for ordering
	}

	entries, pagination, err := audit.ConnectionHistory(conn.ID, store.NewPaginationParams(1, 10))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.EqualValues(t, 3, pagination.Total)

	// Newest first
	assert.Equal(t, models.ActionViewedCheckins, entries[0].ActionType)
	assert.Equal(t, models.ActionAccepted, entries[2].ActionType)
}

func TestAuditService_AsyncFlushOnShutdown(t *testing.T) {
	s := setupTestStore(t)
	audit := NewAuditService(s, metrics.NewNoopMetrics(), true, 100)
	connID := seedConnection(t, s, 1).ID

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		audit.Log(ctx, AuditEntry{
			ConnectionID: connID,
			ActorUserID:  1,
			ActionType:   models.ActionViewedSummary,
		})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, audit.Shutdown(shutdownCtx))

	entries, _, err := audit.ConnectionHistory(connID, store.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Len(t, entries, 5, "shutdown must flush everything buffered")
}

func TestAuditService_ShutdownIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	audit := NewAuditService(s, metrics.NewNoopMetrics(), true, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, audit.Shutdown(ctx))
	require.NotPanics(t, func() {
		assert.NoError(t, audit.Shutdown(ctx))
	})
}

func TestAuditService_DisabledWritesNothing(t *testing.T) {
	s := setupTestStore(t)
	audit := NewAuditService(s, metrics.NewNoopMetrics(), false, 100)
	connID := seedConnection(t, s, 1).ID

	ctx := context.Background()
	audit.Log(ctx, AuditEntry{ConnectionID: connID, ActionType: models.ActionViewedSummary})
	require.NoError(t, audit.LogSync(ctx, AuditEntry{ConnectionID: connID, ActionType: models.ActionViewedMoods}))
	require.NoError(t, audit.Shutdown(context.Background()))

	entries, _, err := audit.ConnectionHistory(connID, store.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAuditService_ActionCounts(t *testing.T) {
	s := setupTestStore(t)
	audit := newTestAudit(t, s)
	connID := seedConnection(t, s, 1).ID

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, audit.LogSync(ctx, AuditEntry{
			ConnectionID: connID, ActorUserID: 2, ActionType: models.ActionViewedSummary,
		}))
	}
	require.NoError(t, audit.LogSync(ctx, AuditEntry{
		ConnectionID: connID, ActorUserID: 2, ActionType: models.ActionExportedData,
	}))

	counts, err := audit.ActionCounts(connID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts[models.ActionViewedSummary])
	assert.EqualValues(t, 1, counts[models.ActionExportedData])
	assert.Zero(t, counts[models.ActionRevoked])
}

func TestAuditService_ActorActivityFilter(t *testing.T) {
	s := setupTestStore(t)
	audit := newTestAudit(t, s)
	connID := seedConnection(t, s, 1).ID

	ctx := context.Background()
	require.NoError(t, audit.LogSync(ctx, AuditEntry{
		ConnectionID: connID, ActorUserID: 2, ActionType: models.ActionViewedSummary,
	}))
	require.NoError(t, audit.LogSync(ctx, AuditEntry{
		ConnectionID: connID, ActorUserID: 2, ActionType: models.ActionAccepted,
	}))
	require.NoError(t, audit.LogSync(ctx, AuditEntry{
		ConnectionID: connID, ActorUserID: 3, ActionType: models.ActionViewedSummary,
	}))

	all, err := audit.ActorActivity(2, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	views, err := audit.ActorActivity(2, []models.ActionType{models.ActionViewedSummary}, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.ActionViewedSummary, views[0].ActionType)
}

func TestAuditService_RecentDataAccess(t *testing.T) {
	s := setupTestStore(t)
	audit := newTestAudit(t, s)

	patientConn := seedConnection(t, s, 1)
	otherConn := seedConnection(t, s, 9)

	ctx := context.Background()
	// A data access and a lifecycle event on the patient's connection
	require.NoError(t, audit.LogSync(ctx, AuditEntry{
		ConnectionID: patientConn.ID, ActorUserID: 2, ActionType: models.ActionViewedMoods,
	}))
	require.NoError(t, audit.LogSync(ctx, AuditEntry{
		ConnectionID: patientConn.ID, ActorUserID: 2, ActionType: models.ActionAccepted,
	}))
	// A data access on someone else's connection
	require.NoError(t, audit.LogSync(ctx, AuditEntry{
		ConnectionID: otherConn.ID, ActorUserID: 2, ActionType: models.ActionViewedMoods,
	}))

	events, err := audit.RecentDataAccess(1, 0)
	require.NoError(t, err)
	require.Len(t, events, 1, "only data-access kinds on the patient's own connections")
	assert.Equal(t, models.ActionViewedMoods, events[0].ActionType)
	assert.Equal(t, patientConn.ID, events[0].ConnectionID)
}

func TestAuditService_MasksTokens(t *testing.T) {
	s := setupTestStore(t)
	audit := newTestAudit(t, s)
	connID := seedConnection(t, s, 1).ID

	require.NoError(t, audit.LogSync(context.Background(), AuditEntry{
		ConnectionID: connID,
		ActorUserID:  1,
		ActionType:   models.ActionInvited,
		Details: models.AuditDetails{
			"invite_token": "abcdefghijklmnop",
			"sharing_tier": "full",
		},
	}))

	entries, _, err := audit.ConnectionHistory(connID, store.NewPaginationParams(1, 10))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "abcd...mnop", entries[0].Details["invite_token"])
	assert.Equal(t, "full", entries[0].Details["sharing_tier"])
}

// seedConnection inserts a minimal active connection owned by patientID.
func seedConnection(t *testing.T, s *store.Store, patientID int64) *models.Connection {
	t.Helper()
	token, err := util.NewInviteToken()
	require.NoError(t, err)
	conn := &models.Connection{
		ID:                   uuid.New().String(),
		PatientUserID:        patientID,
		TrustedEmail:         "trusted@example.com",
		SharingTier:          models.TierFull,
		Status:               models.StatusActive,
		InviteToken:          token,
		InviteTokenExpiresAt: time.Now().Add(time.Hour),
		InvitedAt:            time.Now(),
	}
	require.NoError(t, s.CreateConnection(conn))
	return conn
}
