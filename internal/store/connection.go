package store

import (
	"errors"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/models"

	"gorm.io/gorm"
)

func (s *Store) CreateConnection(conn *models.Connection) error {
	return s.db.Create(conn).Error
}

func (s *Store) GetConnection(id string) (*models.Connection, error) {
	var conn models.Connection
	if err := s.db.Where("id = ?", id).First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// GetConnectionByToken resolves an invite token. Tokens are rotated on
// accept and decline, so a consumed token simply stops resolving.
func (s *Store) GetConnectionByToken(token string) (*models.Connection, error) {
	var conn models.Connection
	if err := s.db.Where("invite_token = ?", token).First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// FindOpenInvite returns the single pending or active connection for the
// (patient, trusted email) pair, if one exists. At most one such row may
// exist at a time; Invite uses this to reject duplicates.
func (s *Store) FindOpenInvite(patientID int64, email string) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.
		Where("patient_user_id = ? AND lower(trusted_email) = lower(?)", patientID, email).
		Where("status IN ?", []models.ConnectionStatus{models.StatusPending, models.StatusActive}).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// FindActiveBetween resolves the unique active connection granting
// trustedID access to patientID's data.
func (s *Store) FindActiveBetween(trustedID, patientID int64) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.
		Where("trusted_user_id = ? AND patient_user_id = ? AND status = ?",
			trustedID, patientID, models.StatusActive).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// ListConnectionsForUser returns every connection where the user is either
// party, newest invite first.
func (s *Store) ListConnectionsForUser(userID int64) ([]models.Connection, error) {
	var conns []models.Connection
	err := s.db.
		Where("patient_user_id = ? OR trusted_user_id = ?", userID, userID).
		Order("invited_at DESC").
		Find(&conns).Error
	return conns, err
}

// ExpirePendingBefore bulk-transitions every pending connection whose token
// expiry has passed into revoked, with no revoking party recorded. Returns
// the number of rows swept.
func (s *Store) ExpirePendingBefore(now time.Time) (int64, error) {
	tx := s.db.Model(&models.Connection{}).
		Where("status = ? AND invite_token_expires_at < ?", models.StatusPending, now).
		Updates(map[string]any{
			"status":     models.StatusRevoked,
			"revoked_at": now,
		})
	return tx.RowsAffected, tx.Error
}

// AcceptPendingConnection applies the pending→active transition as a single
// guarded UPDATE. The WHERE clause re-checks both status and token so that
// of any number of racing accepts (or a racing resend) exactly one wins;
// every loser gets ErrStatusConflict. The token is rotated to a fresh
// unused value, not nulled.
func (s *Store) AcceptPendingConnection(
	id, token string,
	trustedID int64,
	rotatedToken string,
	now time.Time,
) (*models.Connection, error) {
	tx := s.db.Model(&models.Connection{}).
		Where("id = ? AND status = ? AND invite_token = ?", id, models.StatusPending, token).
		Updates(map[string]any{
			"status":          models.StatusActive,
			"trusted_user_id": trustedID,
			"accepted_at":     now,
			"invite_token":    rotatedToken,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrStatusConflict
	}
	return s.GetConnection(id)
}

// DeclinePendingConnection applies pending→declined with the same
// compare-and-set guard as accept.
func (s *Store) DeclinePendingConnection(id, token, rotatedToken string) (*models.Connection, error) {
	tx := s.db.Model(&models.Connection{}).
		Where("id = ? AND status = ? AND invite_token = ?", id, models.StatusPending, token).
		Updates(map[string]any{
			"status":       models.StatusDeclined,
			"invite_token": rotatedToken,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrStatusConflict
	}
	return s.GetConnection(id)
}

// RevokeConnection transitions any not-yet-revoked connection to revoked,
// recording which party ended it.
func (s *Store) RevokeConnection(id string, by models.RevokerRole, now time.Time) (*models.Connection, error) {
	tx := s.db.Model(&models.Connection{}).
		Where("id = ? AND status <> ?", id, models.StatusRevoked).
		Updates(map[string]any{
			"status":     models.StatusRevoked,
			"revoked_at": now,
			"revoked_by": by,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrStatusConflict
	}
	return s.GetConnection(id)
}

// UpdateSharingTier changes the tier of an active connection.
func (s *Store) UpdateSharingTier(id string, tier models.SharingTier) (*models.Connection, error) {
	tx := s.db.Model(&models.Connection{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Update("sharing_tier", tier)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrStatusConflict
	}
	return s.GetConnection(id)
}

// ResetPendingInvite reuses the row for a resent invite: fresh token, fresh
// expiry, status back to pending. Guarded so an accepted or revoked
// connection can never be reset this way.
func (s *Store) ResetPendingInvite(
	id, token string,
	expiresAt, invitedAt time.Time,
) (*models.Connection, error) {
	tx := s.db.Model(&models.Connection{}).
		Where("id = ? AND status IN ?", id,
			[]models.ConnectionStatus{models.StatusPending, models.StatusDeclined}).
		Updates(map[string]any{
			"status":                  models.StatusPending,
			"invite_token":            token,
			"invite_token_expires_at": expiresAt,
			"invited_at":              invitedAt,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrStatusConflict
	}
	return s.GetConnection(id)
}
