package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/notify"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"
	"github.com/mtconnors79/mindwell-app-sub000/internal/util"
)

var (
	ErrTokenExpired        = errors.New("invitation has expired")
	ErrSelfAccept          = errors.New("you cannot accept your own invitation")
	ErrNotParticipant      = errors.New("you are not a party to this connection")
	ErrConnectionNotActive = errors.New("connection is not active")
	ErrSameTier            = errors.New("sharing tier is already set to that value")
	ErrInvalidTier         = errors.New("sharing tier must be full or data_only")
	ErrAlreadyProcessed    = errors.New("invitation was already processed")
)

// transitionEvent names the inputs of the connection state machine.
type transitionEvent string

const (
	eventAccept  transitionEvent = "accept"
	eventDecline transitionEvent = "decline"
	eventRevoke  transitionEvent = "revoke"
	eventExpire  transitionEvent = "expire"
)

// transitions is the single source of truth for legal state changes.
// pending is the initial state; declined and revoked are terminal (reachable
// again only through an explicit resend, which is not a transition here).
// revoke is legal from any non-revoked state.
var transitions = map[models.ConnectionStatus]map[transitionEvent]models.ConnectionStatus{
	models.StatusPending: {
		eventAccept:  models.StatusActive,
		eventDecline: models.StatusDeclined,
		eventRevoke:  models.StatusRevoked,
		eventExpire:  models.StatusRevoked,
	},
	models.StatusActive: {
		eventRevoke: models.StatusRevoked,
	},
	models.StatusDeclined: {
		eventRevoke: models.StatusRevoked,
	},
}

// nextStatus resolves state × event → state, or ErrAlreadyProcessed when the
// event is illegal in the current state.
func nextStatus(current models.ConnectionStatus, ev transitionEvent) (models.ConnectionStatus, error) {
	if next, ok := transitions[current][ev]; ok {
		return next, nil
	}
	return "", ErrAlreadyProcessed
}

// ConnectionService drives the connection lifecycle. Every transition is a
// compare-and-set at the store layer, so concurrent requests racing on the
// same token or id produce exactly one winner, and every transition appends
// exactly one audit entry.
type ConnectionService struct {
	store    *store.Store
	audit    *AuditService
	notify   *notifier
	recorder metrics.Recorder
}

func NewConnectionService(
	s *store.Store,
	audit *AuditService,
	dispatcher notify.Dispatcher,
	notifyTimeout time.Duration,
	recorder metrics.Recorder,
) *ConnectionService {
	return &ConnectionService{
		store:    s,
		audit:    audit,
		notify:   newNotifier(dispatcher, notifyTimeout, recorder),
		recorder: recorder,
	}
}

// Accept turns a pending invite into an active connection for
// trustedUserID. The token is the credential; it is rotated to a fresh
// unused value on success so it can never be replayed.
func (s *ConnectionService) Accept(
	ctx context.Context,
	token string,
	trustedUserID int64,
) (*models.Connection, Permissions, error) {
	conn, err := s.store.GetConnectionByToken(token)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, Permissions{}, ErrInviteNotFound
		}
		return nil, Permissions{}, err
	}

	if _, err := nextStatus(conn.Status, eventAccept); err != nil {
		s.recorder.RecordTransition("accept", "rejected")
		return nil, Permissions{}, err
	}
	if conn.IsTokenExpired() {
		s.recorder.RecordTransition("accept", "rejected")
		return nil, Permissions{}, ErrTokenExpired
	}
	if trustedUserID == conn.PatientUserID {
		s.recorder.RecordTransition("accept", "rejected")
		return nil, Permissions{}, ErrSelfAccept
	}

	rotated, err := util.NewInviteToken()
	if err != nil {
		return nil, Permissions{}, fmt.Errorf("rotate invite token: %w", err)
	}

	conn, err = s.store.AcceptPendingConnection(conn.ID, token, trustedUserID, rotated, time.Now())
	if err != nil {
		s.recorder.RecordTransition("accept", transitionResult(err))
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, Permissions{}, ErrAlreadyProcessed
		}
		return nil, Permissions{}, err
	}
	s.recorder.RecordTransition("accept", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  trustedUserID,
		ActionType:   models.ActionAccepted,
	})
	s.notifyPatient(conn, notify.KindInviteAccepted)

	return conn, GetPermissions(conn), nil
}

// Decline rejects a pending invite. It is callable without authentication;
// the token is the sole credential, so the audit actor is recorded as zero.
func (s *ConnectionService) Decline(ctx context.Context, token string) error {
	conn, err := s.store.GetConnectionByToken(token)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if _, err := nextStatus(conn.Status, eventDecline); err != nil {
		s.recorder.RecordTransition("decline", "rejected")
		return err
	}
	if conn.IsTokenExpired() {
		s.recorder.RecordTransition("decline", "rejected")
		return ErrTokenExpired
	}

	rotated, err := util.NewInviteToken()
	if err != nil {
		return fmt.Errorf("rotate invite token: %w", err)
	}

	conn, err = s.store.DeclinePendingConnection(conn.ID, token, rotated)
	if err != nil {
		s.recorder.RecordTransition("decline", transitionResult(err))
		if errors.Is(err, store.ErrStatusConflict) {
			return ErrAlreadyProcessed
		}
		return err
	}
	s.recorder.RecordTransition("decline", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActionType:   models.ActionDeclined,
	})
	s.notifyPatient(conn, notify.KindInviteDeclined)

	return nil
}

// Revoke ends a connection. Either the patient or the accepted trusted
// person may call it; which party's id matched determines RevokedBy.
func (s *ConnectionService) Revoke(
	ctx context.Context,
	connectionID string,
	actorID int64,
) (*models.Connection, error) {
	conn, err := s.store.GetConnection(connectionID)
	if err != nil {
		return nil, err
	}

	var role models.RevokerRole
	switch {
	case actorID == conn.PatientUserID:
		role = models.RevokedByPatient
	case conn.TrustedUserID != nil && actorID == *conn.TrustedUserID:
		role = models.RevokedByTrustedPerson
	default:
		return nil, ErrNotParticipant
	}

	if _, err := nextStatus(conn.Status, eventRevoke); err != nil {
		s.recorder.RecordTransition("revoke", "rejected")
		return nil, err
	}

	conn, err = s.store.RevokeConnection(connectionID, role, time.Now())
	if err != nil {
		s.recorder.RecordTransition("revoke", transitionResult(err))
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}
	s.recorder.RecordTransition("revoke", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  actorID,
		ActionType:   models.ActionRevoked,
		Details:      models.AuditDetails{"revoked_by": string(role)},
	})
	s.notifyPatient(conn, notify.KindConnectionRevoked)

	return conn, nil
}

// ChangeTier updates the sharing tier of an active connection. Patient
// only, and a no-op change is an error rather than a silent success.
func (s *ConnectionService) ChangeTier(
	ctx context.Context,
	connectionID string,
	actorID int64,
	newTier models.SharingTier,
) (*models.Connection, error) {
	if !newTier.IsValid() {
		return nil, ErrInvalidTier
	}

	conn, err := s.store.GetConnection(connectionID)
	if err != nil {
		return nil, err
	}
	if conn.PatientUserID != actorID {
		return nil, ErrNotPatient
	}
	if !conn.IsActive() {
		return nil, ErrConnectionNotActive
	}
	if conn.SharingTier == newTier {
		return nil, ErrSameTier
	}

	oldTier := conn.SharingTier
	conn, err = s.store.UpdateSharingTier(connectionID, newTier)
	if err != nil {
		s.recorder.RecordTransition("tier_change", transitionResult(err))
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, ErrConnectionNotActive
		}
		return nil, err
	}
	s.recorder.RecordTransition("tier_change", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  actorID,
		ActionType:   models.ActionTierChanged,
		Details: models.AuditDetails{
			"old_tier": string(oldTier),
			"new_tier": string(newTier),
		},
	})

	return conn, nil
}

// ListConnections returns every connection the user participates in. The
// lazy expiry sweep runs first, so expired pending invites are returned
// already transitioned to revoked.
func (s *ConnectionService) ListConnections(ctx context.Context, userID int64) ([]models.Connection, error) {
	if swept, err := s.store.ExpirePendingBefore(time.Now()); err != nil {
		log.Printf("expiry sweep failed: %v", err)
	} else {
		s.recorder.RecordExpirySweep(swept)
	}

	return s.store.ListConnectionsForUser(userID)
}

// GetForUser returns the connection when the user may access it: the
// patient always, the trusted person only while the connection is active.
func (s *ConnectionService) GetForUser(connectionID string, userID int64) (*models.Connection, error) {
	conn, err := s.store.GetConnection(connectionID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(conn, userID) {
		return nil, ErrNotParticipant
	}
	return conn, nil
}

// notifyPatient emails the patient about a lifecycle change on one of
// their connections.
func (s *ConnectionService) notifyPatient(conn *models.Connection, kind notify.EventKind) {
	patient, err := s.store.GetUserByID(conn.PatientUserID)
	if err != nil {
		log.Printf("notification skipped, patient lookup failed: %v", err)
		return
	}
	s.notify.dispatchAsync(notify.Event{
		Kind:        kind,
		To:          patient.Email,
		PatientName: patient.DisplayName,
		TrustedName: conn.TrustedName,
	})
}
