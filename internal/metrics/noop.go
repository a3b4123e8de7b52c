package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder, used when
// metrics are disabled and in tests.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordInvite(result string)                 {}
func (n *NoopMetrics) RecordTransition(event, result string)      {}
func (n *NoopMetrics) RecordExpirySweep(swept int64)              {}
func (n *NoopMetrics) RecordSharedDataView(view, result string)   {}
func (n *NoopMetrics) RecordAuditLogsWritten(count int)           {}
func (n *NoopMetrics) RecordAuditLogDropped()                     {}
func (n *NoopMetrics) RecordNotification(kind string, ok bool)    {}
func (n *NoopMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
}
