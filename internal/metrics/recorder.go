package metrics

import "time"

// Recorder abstracts metric recording so services never depend on
// Prometheus directly. Init returns either the Prometheus implementation or
// a no-op one, and everything downstream takes the interface.
type Recorder interface {
	// Care circle lifecycle
	RecordInvite(result string)                 // "created", "conflict", "rejected", "error"
	RecordTransition(event, result string)      // accept/decline/revoke/tier_change/resend × success/conflict/rejected/error
	RecordExpirySweep(swept int64)

	// Shared data gateway
	RecordSharedDataView(view, result string) // summary/moods/checkins/trends/export × success/forbidden/error

	// Audit pipeline
	RecordAuditLogsWritten(count int)
	RecordAuditLogDropped()

	// Notification dispatch
	RecordNotification(kind string, success bool)

	// HTTP
	RecordHTTPRequest(method, path, status string, duration time.Duration)
}
