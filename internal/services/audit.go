package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"
	"github.com/mtconnors79/mindwell-app-sub000/internal/util"

	"github.com/google/uuid"
)

// AuditEntry is the data needed to append one audit log record.
type AuditEntry struct {
	ConnectionID string
	ActorUserID  int64
	ActionType   models.ActionType
	Details      models.AuditDetails
	IPAddress    string
	UserAgent    string
}

// AuditService is the append-only audit writer plus its read accessors.
//
// Writes are best-effort and asynchronous: Log hands the entry to a bounded
// channel drained by a background worker that batches inserts. A full
// buffer drops the entry with an operator log line. Nothing here ever
// propagates a failure to the operation being audited.
type AuditService struct {
	store    *store.Store
	recorder metrics.Recorder
	enabled  bool

	logChan chan *models.AuditLog

	batchBuffer []*models.AuditLog
	batchMutex  sync.Mutex
	batchTicker *time.Ticker

	wg           sync.WaitGroup
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

const auditBatchSize = 100

// NewAuditService creates the audit service and starts its worker when
// enabled.
func NewAuditService(s *store.Store, recorder metrics.Recorder, enabled bool, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	service := &AuditService{
		store:       s,
		recorder:    recorder,
		enabled:     enabled,
		logChan:     make(chan *models.AuditLog, bufferSize),
		batchBuffer: make([]*models.AuditLog, 0, auditBatchSize),
		batchTicker: time.NewTicker(1 * time.Second),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		service.wg.Add(1)
		go service.worker()
		log.Printf("Audit service started with buffer size %d", bufferSize)
	} else {
		log.Println("Audit service is disabled")
	}

	return service
}

func (s *AuditService) worker() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.logChan:
			s.addToBatch(entry)

		case <-s.batchTicker.C:
			s.flushBatch()

		case <-s.shutdownCh:
			// Drain anything still queued, then flush.
			for {
				select {
				case entry := <-s.logChan:
					s.addToBatch(entry)
				default:
					s.flushBatch()
					return
				}
			}
		}
	}
}

func (s *AuditService) addToBatch(entry *models.AuditLog) {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()

	s.batchBuffer = append(s.batchBuffer, entry)
	if len(s.batchBuffer) >= auditBatchSize {
		s.flushBatchUnsafe()
	}
}

func (s *AuditService) flushBatch() {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()
	s.flushBatchUnsafe()
}

// flushBatchUnsafe flushes the batch buffer; caller must hold batchMutex.
func (s *AuditService) flushBatchUnsafe() {
	if len(s.batchBuffer) == 0 {
		return
	}

	toWrite := make([]*models.AuditLog, len(s.batchBuffer))
	copy(toWrite, s.batchBuffer)
	s.batchBuffer = s.batchBuffer[:0]

	if err := s.store.CreateAuditLogBatch(toWrite); err != nil {
		log.Printf("Failed to write audit log batch of %d: %v", len(toWrite), err)
		return
	}
	s.recorder.RecordAuditLogsWritten(len(toWrite))
}

// Log records an audit entry asynchronously. It never blocks and never
// returns an error; when the buffer is full the entry is dropped and
// counted.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) {
	if !s.enabled {
		return
	}

	if entry.IPAddress == "" {
		entry.IPAddress = util.GetIPFromContext(ctx)
	}
	if entry.UserAgent == "" {
		entry.UserAgent = util.GetUserAgentFromContext(ctx)
	}

	record := s.buildRecord(entry)

	select {
	case s.logChan <- record:
	default:
		s.recorder.RecordAuditLogDropped()
		log.Printf("WARNING: Audit log buffer full, dropping %s for connection %s",
			entry.ActionType, entry.ConnectionID)
	}
}

// LogSync writes an entry directly, bypassing the async pipeline. Used by
// tests that need the row visible immediately.
func (s *AuditService) LogSync(ctx context.Context, entry AuditEntry) error {
	if !s.enabled {
		return nil
	}

	if entry.IPAddress == "" {
		entry.IPAddress = util.GetIPFromContext(ctx)
	}
	if entry.UserAgent == "" {
		entry.UserAgent = util.GetUserAgentFromContext(ctx)
	}

	return s.store.CreateAuditLog(s.buildRecord(entry))
}

func (s *AuditService) buildRecord(entry AuditEntry) *models.AuditLog {
	return &models.AuditLog{
		ID:           uuid.New().String(),
		ConnectionID: entry.ConnectionID,
		ActorUserID:  entry.ActorUserID,
		ActionType:   entry.ActionType,
		Details:      maskSensitiveDetails(entry.Details),
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		CreatedAt:    time.Now(),
	}
}

// ConnectionHistory returns the paginated, reverse-chronological audit
// trail for one connection.
func (s *AuditService) ConnectionHistory(
	connectionID string,
	params store.PaginationParams,
) ([]models.AuditLog, store.PaginationResult, error) {
	return s.store.ListConnectionAudit(connectionID, params)
}

// ActorActivity returns an actor's recent entries, optionally filtered to a
// set of action types.
func (s *AuditService) ActorActivity(
	actorID int64,
	actions []models.ActionType,
	limit int,
) ([]models.AuditLog, error) {
	return s.store.ListActorActivity(actorID, actions, limit)
}

// ActionCounts returns per-action-type totals for one connection.
func (s *AuditService) ActionCounts(connectionID string) (map[models.ActionType]int64, error) {
	return s.store.CountConnectionActions(connectionID)
}

// RecentDataAccess returns the latest shared-data reads against any of the
// patient's connections.
func (s *AuditService) RecentDataAccess(patientID int64, limit int) ([]models.AuditLog, error) {
	return s.store.RecentAccessEvents(patientID, limit)
}

// Shutdown stops the worker after flushing whatever is buffered. It is
// safe to call more than once; later calls wait on the same drain.
func (s *AuditService) Shutdown(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.shutdownOnce.Do(func() {
		s.batchTicker.Stop()
		close(s.shutdownCh)
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Audit service shut down gracefully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit service shutdown timeout: %w", ctx.Err())
	}
}

// maskSensitiveDetails partially masks invite tokens that end up in details
// so the audit trail never stores a usable credential.
func maskSensitiveDetails(details models.AuditDetails) models.AuditDetails {
	if details == nil {
		return nil
	}

	masked := make(models.AuditDetails, len(details))
	for key, value := range details {
		if key == "token" || key == "invite_token" {
			if str, ok := value.(string); ok && len(str) > 8 {
				masked[key] = str[:4] + "..." + str[len(str)-4:]
				continue
			}
			masked[key] = "***REDACTED***"
			continue
		}
		masked[key] = value
	}

	return masked
}
