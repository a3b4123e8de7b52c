package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/config"
	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/notify"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"
	"github.com/mtconnors79/mindwell-app-sub000/internal/util"

	"github.com/google/uuid"
)

var (
	ErrInvalidEmail    = errors.New("a valid email address is required")
	ErrSelfInvite      = errors.New("you cannot invite yourself to your own care circle")
	ErrDuplicateInvite = errors.New("an invite for this email already exists")
	ErrInviteNotFound  = errors.New("invitation not found")
	ErrInviteGone      = errors.New("this invitation is no longer available")
	ErrNotPatient      = errors.New("only the patient may perform this action")
	ErrAlreadyAccepted = errors.New("invitation was already accepted")
	ErrInviteRevoked   = errors.New("invitation was revoked; create a new invite instead")
)

// InvitationService issues and re-issues time-bounded invite tokens and
// runs the lazy expiry sweep.
type InvitationService struct {
	store    *store.Store
	cfg      *config.Config
	audit    *AuditService
	notify   *notifier
	recorder metrics.Recorder
}

func NewInvitationService(
	s *store.Store,
	cfg *config.Config,
	audit *AuditService,
	dispatcher notify.Dispatcher,
	recorder metrics.Recorder,
) *InvitationService {
	return &InvitationService{
		store:    s,
		cfg:      cfg,
		audit:    audit,
		notify:   newNotifier(dispatcher, cfg.NotifyTimeout, recorder),
		recorder: recorder,
	}
}

// InvitePreview is the public projection of a pending invite shown to the
// recipient before they decide.
type InvitePreview struct {
	PatientName string             `json:"patient_name"`
	TrustedName string             `json:"trusted_name,omitempty"`
	SharingTier models.SharingTier `json:"sharing_tier"`
	ExpiresAt   time.Time          `json:"expires_at"`
}

// Invite creates a pending connection for (patient, email) with a fresh
// 256-bit token and the configured expiry window. An absent or invalid tier
// falls back to data_only. At most one pending or active connection may
// exist per (patient, email) pair.
func (s *InvitationService) Invite(
	ctx context.Context,
	patientID int64,
	email, name string,
	tier models.SharingTier,
) (*models.Connection, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		s.recorder.RecordInvite("rejected")
		return nil, ErrInvalidEmail
	}

	patient, err := s.store.GetUserByID(patientID)
	if err != nil {
		return nil, err
	}
	if patient.EmailMatches(email) {
		s.recorder.RecordInvite("rejected")
		return nil, ErrSelfInvite
	}

	if _, err := s.store.FindOpenInvite(patientID, email); err == nil {
		s.recorder.RecordInvite("conflict")
		return nil, ErrDuplicateInvite
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	if !tier.IsValid() {
		tier = models.TierDataOnly
	}

	token, err := util.NewInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	now := time.Now()
	conn := &models.Connection{
		ID:                   uuid.New().String(),
		PatientUserID:        patientID,
		TrustedEmail:         email,
		TrustedName:          strings.TrimSpace(name),
		SharingTier:          tier,
		Status:               models.StatusPending,
		InviteToken:          token,
		InviteTokenExpiresAt: now.Add(s.cfg.InviteTokenTTL),
		InvitedAt:            now,
	}
	if err := s.store.CreateConnection(conn); err != nil {
		s.recorder.RecordInvite("error")
		return nil, err
	}

	s.recorder.RecordInvite("created")

	s.notify.dispatchAsync(notify.Event{
		Kind:        notify.KindInviteCreated,
		To:          conn.TrustedEmail,
		PatientName: patient.DisplayName,
		TrustedName: conn.TrustedName,
		InviteURL:   s.InviteURL(conn),
		ExpiresAt:   conn.InviteTokenExpiresAt,
	})

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  patientID,
		ActionType:   models.ActionInvited,
		Details: models.AuditDetails{
			"trusted_email": conn.TrustedEmail,
			"sharing_tier":  string(conn.SharingTier),
		},
	})

	return conn, nil
}

// Resend regenerates the token and expiry of a pending or declined invite
// and resets it to pending. Only the patient may resend; an accepted invite
// cannot be resent, and a revoked one needs a brand new invite.
func (s *InvitationService) Resend(
	ctx context.Context,
	connectionID string,
	actorID int64,
) (*models.Connection, error) {
	conn, err := s.store.GetConnection(connectionID)
	if err != nil {
		return nil, err
	}
	if conn.PatientUserID != actorID {
		return nil, ErrNotPatient
	}
	switch conn.Status {
	case models.StatusActive:
		return nil, ErrAlreadyAccepted
	case models.StatusRevoked:
		return nil, ErrInviteRevoked
	}

	token, err := util.NewInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	now := time.Now()
	conn, err = s.store.ResetPendingInvite(connectionID, token, now.Add(s.cfg.InviteTokenTTL), now)
	if err != nil {
		s.recorder.RecordTransition("resend", transitionResult(err))
		return nil, err
	}
	s.recorder.RecordTransition("resend", "success")

	patient, perr := s.store.GetUserByID(conn.PatientUserID)
	patientName := ""
	if perr == nil {
		patientName = patient.DisplayName
	}
	s.notify.dispatchAsync(notify.Event{
		Kind:        notify.KindInviteCreated,
		To:          conn.TrustedEmail,
		PatientName: patientName,
		TrustedName: conn.TrustedName,
		InviteURL:   s.InviteURL(conn),
		ExpiresAt:   conn.InviteTokenExpiresAt,
	})

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  actorID,
		ActionType:   models.ActionInvited,
		Details: models.AuditDetails{
			"trusted_email": conn.TrustedEmail,
			"resend":        true,
		},
	})

	return conn, nil
}

// PreviewInvite resolves a token for the public invite page. Unknown tokens
// and tokens whose invite has been processed or has expired are
// indistinguishable beyond 404 vs 410, and the messages stay generic.
func (s *InvitationService) PreviewInvite(ctx context.Context, token string) (*InvitePreview, error) {
	conn, err := s.store.GetConnectionByToken(token)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	if conn.Status != models.StatusPending || conn.IsTokenExpired() {
		return nil, ErrInviteGone
	}

	patient, err := s.store.GetUserByID(conn.PatientUserID)
	if err != nil {
		return nil, err
	}

	return &InvitePreview{
		PatientName: patient.DisplayName,
		TrustedName: conn.TrustedName,
		SharingTier: conn.SharingTier,
		ExpiresAt:   conn.InviteTokenExpiresAt,
	}, nil
}

// ExpirePendingInvites sweeps every pending connection whose token expiry
// has passed into revoked. The sweep is lazy: it runs when a user lists
// their connections, not on a schedule, so a never-listed expired invite
// stays nominally pending until observed.
func (s *InvitationService) ExpirePendingInvites(ctx context.Context) (int64, error) {
	swept, err := s.store.ExpirePendingBefore(time.Now())
	if err != nil {
		return 0, err
	}
	s.recorder.RecordExpirySweep(swept)
	return swept, nil
}

// InviteURL is the link the recipient follows to preview and respond.
func (s *InvitationService) InviteURL(conn *models.Connection) string {
	return s.cfg.BaseURL + "/care-circle/invite/" + conn.InviteToken
}

// InviteMessage is the human-readable text the patient can forward
// directly when email delivery is not in play.
func (s *InvitationService) InviteMessage(conn *models.Connection) string {
	patientName := "Someone"
	if patient, err := s.store.GetUserByID(conn.PatientUserID); err == nil && patient.DisplayName != "" {
		patientName = patient.DisplayName
	}
	return fmt.Sprintf(
		"%s would like to share their wellness updates with you on MindWell. "+
			"Open %s to view and respond. The invitation expires on %s.",
		patientName, s.InviteURL(conn),
		conn.InviteTokenExpiresAt.Format("January 2, 2006"),
	)
}

func transitionResult(err error) string {
	if errors.Is(err, store.ErrStatusConflict) {
		return "conflict"
	}
	return "error"
}
