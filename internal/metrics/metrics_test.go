package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	m := Init(true)
	assert.NotNil(t, m)

	// Type assert to concrete Metrics to access fields
	metrics, ok := m.(*Metrics)
	assert.True(t, ok, "Init(true) should return *Metrics")
	assert.NotNil(t, metrics.InvitesTotal)
	assert.NotNil(t, metrics.TransitionsTotal)
	assert.NotNil(t, metrics.SharedDataViewsTotal)
	assert.NotNil(t, metrics.HTTPRequestsTotal)
}

func TestInitNoop(t *testing.T) {
	m := Init(false)
	assert.NotNil(t, m)

	_, ok := m.(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")
}

func TestInit_ReturnsSameInstance(t *testing.T) {
	m1 := Init(true)
	m2 := Init(true)
	assert.Equal(t, m1, m2, "Init should return the same registered instance")
}

func TestRecorderMethods(t *testing.T) {
	m := Init(true)

	// Prometheus recording never returns errors; exercising every method
	// catches label-count mismatches, which panic.
	m.RecordInvite("created")
	m.RecordTransition("accept", "success")
	m.RecordExpirySweep(3)
	m.RecordExpirySweep(0)
	m.RecordSharedDataView("summary", "forbidden")
	m.RecordAuditLogsWritten(5)
	m.RecordAuditLogDropped()
	m.RecordNotification("invite_created", true)
	m.RecordNotification("invite_created", false)
	m.RecordHTTPRequest(http.MethodGet, "/health", "200", 5*time.Millisecond)
}

func TestNoopRecorderMethods(t *testing.T) {
	m := NewNoopMetrics()

	m.RecordInvite("created")
	m.RecordTransition("revoke", "conflict")
	m.RecordExpirySweep(1)
	m.RecordSharedDataView("export", "success")
	m.RecordAuditLogsWritten(1)
	m.RecordAuditLogDropped()
	m.RecordNotification("invite_declined", true)
	m.RecordHTTPRequest(http.MethodPost, "/checkins", "201", time.Millisecond)
}

func TestConcurrentRecording(t *testing.T) {
	m := Init(true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordInvite("created")
				m.RecordSharedDataView("moods", "success")
			}
		}()
	}
	wg.Wait()
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var (
		gotMethod string
		gotPath   string
		gotStatus string
	)
	recorder := &captureRecorder{record: func(method, path, status string) {
		gotMethod = method
		gotPath = path
		gotStatus = status
	}}

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(recorder))
	r.GET("/care-circle/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/care-circle/abc123", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/care-circle/:id", gotPath, "route template keeps label cardinality bounded")
	assert.Equal(t, "200", gotStatus)

	// Unmatched routes get a fixed label
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/no-such-route", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, "unmatched", gotPath)
}

// captureRecorder is a Recorder that forwards HTTP observations to a
// callback and ignores everything else.
type captureRecorder struct {
	NoopMetrics
	record func(method, path, status string)
}

func (c *captureRecorder) RecordHTTPRequest(method, path, status string, _ time.Duration) {
	c.record(method, path, status)
}
