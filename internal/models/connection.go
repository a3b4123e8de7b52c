package models

import (
	"time"
)

// SharingTier controls which field groups an active trusted person can see.
type SharingTier string

const (
	// TierFull exposes everything, including free-text check-in notes and
	// AI-derived suggestions.
	TierFull SharingTier = "full"
	// TierDataOnly exposes mood/stress summaries and trend aggregates but
	// withholds free-text content and suggestions.
	TierDataOnly SharingTier = "data_only"
)

// IsValid reports whether the tier is one of the two supported values.
func (t SharingTier) IsValid() bool {
	return t == TierFull || t == TierDataOnly
}

// ConnectionStatus is the lifecycle state of a care circle connection.
type ConnectionStatus string

const (
	StatusPending  ConnectionStatus = "pending"
	StatusActive   ConnectionStatus = "active"
	StatusDeclined ConnectionStatus = "declined"
	StatusRevoked  ConnectionStatus = "revoked"
)

// RevokerRole records which party ended an active connection.
type RevokerRole string

const (
	RevokedByPatient       RevokerRole = "patient"
	RevokedByTrustedPerson RevokerRole = "trusted_person"
)

// Connection represents one patient ↔ trusted-person sharing relationship.
//
// PatientUserID and TrustedEmail are immutable once created. TrustedUserID
// stays nil until the invite is accepted. The invite token is only
// meaningful while the connection is pending; accept and decline rotate it
// to a fresh unused value rather than nulling it.
type Connection struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	// Parties
	PatientUserID int64  `gorm:"not null;index"      json:"patient_user_id"`
	TrustedUserID *int64 `gorm:"index"               json:"trusted_user_id"`
	TrustedEmail  string `gorm:"not null;index"      json:"trusted_email"`
	TrustedName   string `gorm:"type:varchar(100)"   json:"trusted_name,omitempty"`

	// Policy
	SharingTier SharingTier `gorm:"type:varchar(20);not null;default:'data_only'" json:"sharing_tier"`

	// Lifecycle
	Status               ConnectionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	InviteToken          string           `gorm:"uniqueIndex;not null"            json:"-"`
	InviteTokenExpiresAt time.Time        `gorm:"not null"                        json:"invite_token_expires_at"`
	InvitedAt            time.Time        `gorm:"not null"                        json:"invited_at"`
	AcceptedAt           *time.Time       `json:"accepted_at,omitempty"`
	RevokedAt            *time.Time       `json:"revoked_at,omitempty"`
	RevokedBy            RevokerRole      `gorm:"type:varchar(20)" json:"revoked_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Connection) TableName() string {
	return "care_circle_connections"
}

// IsActive reports whether the trusted person currently holds access.
func (c *Connection) IsActive() bool {
	return c.Status == StatusActive && c.RevokedAt == nil
}

// IsTokenExpired reports whether the pending invite window has closed.
func (c *Connection) IsTokenExpired() bool {
	return time.Now().After(c.InviteTokenExpiresAt)
}

// IsTerminal reports whether the connection can never become pending again
// without an explicit resend.
func (c *Connection) IsTerminal() bool {
	return c.Status == StatusDeclined || c.Status == StatusRevoked
}
