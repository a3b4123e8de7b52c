package store

import (
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
)

// CreateAuditLog appends a single audit entry.
func (s *Store) CreateAuditLog(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

// CreateAuditLogBatch appends a batch of audit entries in one insert.
func (s *Store) CreateAuditLogBatch(entries []*models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.Create(entries).Error
}

// ListConnectionAudit returns the audit history for one connection,
// newest first, paginated.
func (s *Store) ListConnectionAudit(
	connectionID string,
	params PaginationParams,
) ([]models.AuditLog, PaginationResult, error) {
	query := s.db.Model(&models.AuditLog{}).Where("connection_id = ?", connectionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var entries []models.AuditLog
	err := query.
		Order("created_at DESC").
		Offset(params.offset()).
		Limit(params.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return entries, CalculatePagination(total, params.Page, params.PageSize), nil
}

// ListActorActivity returns an actor's audit entries across all
// connections, optionally restricted to a set of action types.
func (s *Store) ListActorActivity(
	actorID int64,
	actions []models.ActionType,
	limit int,
) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.Model(&models.AuditLog{}).Where("actor_user_id = ?", actorID)
	if len(actions) > 0 {
		query = query.Where("action_type IN ?", actions)
	}

	var entries []models.AuditLog
	err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// CountConnectionActions returns per-action-type totals for one connection.
func (s *Store) CountConnectionActions(connectionID string) (map[models.ActionType]int64, error) {
	type row struct {
		ActionType models.ActionType
		Count      int64
	}
	var rows []row
	err := s.db.Model(&models.AuditLog{}).
		Select("action_type, count(*) as count").
		Where("connection_id = ?", connectionID).
		Group("action_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ActionType]int64, len(rows))
	for _, r := range rows {
		counts[r.ActionType] = r.Count
	}
	return counts, nil
}

// RecentAccessEvents returns the latest shared-data reads across every
// connection owned by the patient, for the "who looked at my data"
// dashboard. Only the viewed_*/exported_data kinds qualify.
func (s *Store) RecentAccessEvents(patientID int64, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []models.AuditLog
	err := s.db.Model(&models.AuditLog{}).
		Joins("JOIN care_circle_connections ON care_circle_connections.id = care_circle_audit_logs.connection_id").
		Where("care_circle_connections.patient_user_id = ?", patientID).
		Where("care_circle_audit_logs.action_type IN ?", models.DataAccessActions).
		Order("care_circle_audit_logs.created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
