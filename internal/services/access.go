package services

import (
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
)

// Permissions is the fixed five-boolean capability set derived from a
// connection. It is computed in exactly one place (GetPermissions) and
// re-checked on every data-access path instead of being rebuilt per
// endpoint.
type Permissions struct {
	CanViewSummary   bool `json:"can_view_summary"`
	CanViewCheckins  bool `json:"can_view_checkins"`
	CanViewMoods     bool `json:"can_view_moods"`
	CanExportData    bool `json:"can_export_data"`
	CanReceiveAlerts bool `json:"can_receive_alerts"`
}

// CanAccess reports whether userID may touch this connection's data at all.
// The patient always can; the trusted person only while the connection is
// active.
func CanAccess(conn *models.Connection, userID int64) bool {
	if userID == conn.PatientUserID {
		return true
	}
	return conn.TrustedUserID != nil && *conn.TrustedUserID == userID && conn.IsActive()
}

// GetPermissions is a pure function of (isActive, sharingTier):
//
//	inactive          → nothing
//	active, full      → everything
//	active, data_only → summaries, moods and alerts; no free-text
//	                    check-in content, no export
func GetPermissions(conn *models.Connection) Permissions {
	if !conn.IsActive() {
		return Permissions{}
	}

	switch conn.SharingTier {
	case models.TierFull:
		return Permissions{
			CanViewSummary:   true,
			CanViewCheckins:  true,
			CanViewMoods:     true,
			CanExportData:    true,
			CanReceiveAlerts: true,
		}
	case models.TierDataOnly:
		return Permissions{
			CanViewSummary:   true,
			CanViewMoods:     true,
			CanReceiveAlerts: true,
		}
	default:
		return Permissions{}
	}
}
