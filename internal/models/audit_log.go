package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ActionType identifies what happened to a connection or its shared data.
type ActionType string

const (
	// Connection lifecycle actions
	ActionInvited     ActionType = "invited"
	ActionAccepted    ActionType = "accepted"
	ActionDeclined    ActionType = "declined"
	ActionRevoked     ActionType = "revoked"
	ActionTierChanged ActionType = "tier_changed"

	// Shared data reads
	ActionViewedSummary  ActionType = "viewed_summary"
	ActionViewedCheckins ActionType = "viewed_checkins"
	ActionViewedMoods    ActionType = "viewed_moods"
	ActionExportedData   ActionType = "exported_data"
)

// DataAccessActions are the read-event kinds shown on the patient's
// "recent access" dashboard.
var DataAccessActions = []ActionType{
	ActionViewedSummary,
	ActionViewedCheckins,
	ActionViewedMoods,
	ActionExportedData,
}

// AuditDetails stores event-specific context (query ranges, counts, tiers)
// as JSON.
type AuditDetails map[string]any

// Value implements the driver.Valuer interface for database storage
func (a AuditDetails) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface for database retrieval
func (a *AuditDetails) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal AuditDetails value: %v", value)
	}

	result := make(AuditDetails)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*a = result
	return nil
}

// AuditLog is one immutable record of a connection mutation or a shared-data
// read. Rows are never updated or deleted through normal operation; they are
// only removed by cascade when the owning connection goes away.
type AuditLog struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	ConnectionID string     `gorm:"type:varchar(36);index;not null" json:"connection_id"`
	Connection   Connection `gorm:"constraint:OnDelete:CASCADE"     json:"-"`

	// ActorUserID is zero for unauthenticated token-credential actions
	// (a public decline).
	ActorUserID int64      `gorm:"index"                     json:"actor_user_id"`
	ActionType  ActionType `gorm:"type:varchar(30);index;not null" json:"action_type"`

	Details   AuditDetails `gorm:"type:json"         json:"details,omitempty"`
	IPAddress string       `gorm:"type:varchar(45)"  json:"ip_address,omitempty"` // fits IPv6
	UserAgent string       `gorm:"type:varchar(500)" json:"user_agent,omitempty"`

	// No UpdatedAt: entries are append-only.
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "care_circle_audit_logs"
}
