package services

import (
	"context"
	"testing"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/notify"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLifecycleServices wires the invitation, connection and shared-data
// services onto one audit pipeline, the way bootstrap does, so tests can
// drain it once and read the combined trail.
func newLifecycleServices(
	t *testing.T,
	s *store.Store,
) (*InvitationService, *ConnectionService, *SharedDataService, *AuditService) {
	t.Helper()
	audit := NewAuditService(s, metrics.NewNoopMetrics(), true, 100)
	dispatcher := notify.NewLogDispatcher()
	invites := NewInvitationService(s, testConfig(), audit, dispatcher, metrics.NewNoopMetrics())
	conns := NewConnectionService(s, audit, dispatcher, time.Second, metrics.NewNoopMetrics())
	shared := NewSharedDataService(s, audit, metrics.NewNoopMetrics())
	return invites, conns, shared, audit
}

func drainAudit(t *testing.T, audit *AuditService) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, audit.Shutdown(ctx))
}

func TestAuditTrail_LifecycleOrdering(t *testing.T) {
	s := setupTestStore(t)
	invites, conns, _, audit := newLifecycleServices(t, s)
	patient := createTestUser(t, s, "alice@example.com", "Alice")
	trusted := createTestUser(t, s, "bob@example.com", "Bob")

	ctx := context.Background()
	conn, err := invites.Invite(ctx, patient.ID, trusted.Email, trusted.DisplayName, models.TierFull)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond) // distinct created_at for ordering

	_, _, err = conns.Accept(ctx, conn.InviteToken, trusted.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = conns.Revoke(ctx, conn.ID, patient.ID)
	require.NoError(t, err)

	drainAudit(t, audit)

	entries, pagination, err := audit.ConnectionHistory(conn.ID, store.NewPaginationParams(1, 10))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.EqualValues(t, 3, pagination.Total)

	// Newest first: revoked, accepted, invited
	assert.Equal(t, models.ActionRevoked, entries[0].ActionType)
	assert.Equal(t, models.ActionAccepted, entries[1].ActionType)
	assert.Equal(t, models.ActionInvited, entries[2].ActionType)

	assert.Equal(t, patient.ID, entries[0].ActorUserID)
	assert.Equal(t, trusted.ID, entries[1].ActorUserID)
	assert.Equal(t, patient.ID, entries[2].ActorUserID)
}

func TestAuditTrail_SharedViewsAppendEntries(t *testing.T) {
	s := setupTestStore(t)
	invites, conns, shared, audit := newLifecycleServices(t, s)
	patient := createTestUser(t, s, "alice@example.com", "Alice")
	trusted := createTestUser(t, s, "bob@example.com", "Bob")

	conn := inviteAndAccept(t, invites, conns, patient, trusted, models.TierFull)
	addCheckIn(t, s, patient.ID, models.MoodGood, 3, "steady week", time.Now().Add(-time.Hour))

	ctx := context.Background()
	_, err := shared.Summary(ctx, trusted.ID, patient.ID)
	require.NoError(t, err)
	_, err = shared.Export(ctx, trusted.ID, patient.ID, time.Time{}, time.Time{})
	require.NoError(t, err)

	drainAudit(t, audit)

	// invited + accepted + one entry per shared view
	counts, err := audit.ActionCounts(conn.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[models.ActionViewedSummary])
	assert.EqualValues(t, 1, counts[models.ActionExportedData])

	_, pagination, err := audit.ConnectionHistory(conn.ID, store.NewPaginationParams(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 4, pagination.Total)
}
