package services

import (
	"context"
	"testing"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/config"
	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/notify"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	// In-memory SQLite database for testing
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:        "http://localhost:8080",
		JWTSecret:      "test-secret",
		InviteTokenTTL: 7 * 24 * time.Hour,
		NotifyTimeout:  time.Second,
	}
}

func createTestUser(t *testing.T, s *store.Store, email, name string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
	}
	require.NoError(t, s.CreateUser(user))
	return user
}

// newTestAudit returns an enabled audit service that is flushed and stopped
// when the test ends.
func newTestAudit(t *testing.T, s *store.Store) *AuditService {
	t.Helper()
	audit := NewAuditService(s, metrics.NewNoopMetrics(), true, 100)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = audit.Shutdown(ctx)
	})
	return audit
}

func newTestInvitations(t *testing.T, s *store.Store, cfg *config.Config) (*InvitationService, *notify.LogDispatcher) {
	t.Helper()
	dispatcher := notify.NewLogDispatcher()
	svc := NewInvitationService(s, cfg, newTestAudit(t, s), dispatcher, metrics.NewNoopMetrics())
	return svc, dispatcher
}

func newTestConnections(t *testing.T, s *store.Store) *ConnectionService {
	t.Helper()
	return NewConnectionService(
		s,
		newTestAudit(t, s),
		notify.NewLogDispatcher(),
		time.Second,
		metrics.NewNoopMetrics(),
	)
}

// inviteAndAccept wires a full active connection between two users.
func inviteAndAccept(
	t *testing.T,
	invites *InvitationService,
	conns *ConnectionService,
	patient, trusted *models.User,
	tier models.SharingTier,
) *models.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := invites.Invite(ctx, patient.ID, trusted.Email, trusted.DisplayName, tier)
	require.NoError(t, err)

	accepted, _, err := conns.Accept(ctx, conn.InviteToken, trusted.ID)
	require.NoError(t, err)
	return accepted
}
