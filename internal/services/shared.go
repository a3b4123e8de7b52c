package services

import (
	"context"
	"errors"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/metrics"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"
)

// ErrForbidden covers every shared-data refusal: no active connection,
// revoked connection, or insufficient tier. Absence of a connection is
// deliberately not distinguishable from lack of permission, so an
// unauthorized caller learns nothing about whether the patient exists.
var ErrForbidden = errors.New("you do not have access to this data")

// SharedDataService projects a patient's wellness records through the
// permission set of the active connection held by the requesting trusted
// person. Every successful view appends exactly one audit entry.
type SharedDataService struct {
	store    *store.Store
	audit    *AuditService
	recorder metrics.Recorder
}

func NewSharedDataService(s *store.Store, audit *AuditService, recorder metrics.Recorder) *SharedDataService {
	return &SharedDataService{store: s, audit: audit, recorder: recorder}
}

// SharedCheckIn is the full projection of one entry, only visible under
// the full tier.
type SharedCheckIn struct {
	ID          int64       `json:"id"`
	Mood        models.Mood `json:"mood"`
	MoodScore   float64     `json:"mood_score"`
	StressLevel int         `json:"stress_level"`
	Note        string      `json:"note,omitempty"`
	Suggestion  string      `json:"suggestion,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// DailyMood is one calendar-day aggregate bucket.
type DailyMood struct {
	Day           string  `json:"day"` // YYYY-MM-DD
	AverageMood   float64 `json:"average_mood"`
	AverageStress float64 `json:"average_stress"`
	Entries       int     `json:"entries"`
}

// SharedSummary is the at-a-glance view for the trusted person.
type SharedSummary struct {
	PatientUserID int64              `json:"patient_user_id"`
	SharingTier   models.SharingTier `json:"sharing_tier"`
	LatestMood    models.Mood        `json:"latest_mood,omitempty"`
	LatestEntryAt *time.Time         `json:"latest_entry_at,omitempty"`
	CheckInStreak int                `json:"check_in_streak"`
	AverageMood7d float64            `json:"average_mood_7d"`
	TotalCheckIns int64              `json:"total_check_ins"`
}

// SharedTrends is the richer aggregate series over a date range.
type SharedTrends struct {
	From          time.Time   `json:"from"`
	To            time.Time   `json:"to"`
	Days          []DailyMood `json:"days"`
	CheckInStreak int         `json:"check_in_streak"`
	TotalEntries  int         `json:"total_entries"`
}

// SharedExport bundles everything visible under the full tier into one
// payload.
type SharedExport struct {
	ConnectionID string          `json:"connection_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Summary      SharedSummary   `json:"summary"`
	Trends       SharedTrends    `json:"trends"`
	CheckIns     []SharedCheckIn `json:"check_ins"`
}

// resolve finds the unique active connection granting the requester access
// to the patient's data. Any failure mode collapses into ErrForbidden.
func (s *SharedDataService) resolve(trustedID, patientID int64) (*models.Connection, Permissions, error) {
	conn, err := s.store.FindActiveBetween(trustedID, patientID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, Permissions{}, ErrForbidden
		}
		return nil, Permissions{}, err
	}

	perms := GetPermissions(conn)
	if !perms.CanViewSummary {
		return nil, Permissions{}, ErrForbidden
	}
	return conn, perms, nil
}

// Summary returns the at-a-glance view.
func (s *SharedDataService) Summary(
	ctx context.Context,
	trustedID, patientID int64,
) (*SharedSummary, error) {
	conn, _, err := s.resolve(trustedID, patientID)
	if err != nil {
		s.recorder.RecordSharedDataView("summary", viewResult(err))
		return nil, err
	}

	summary, err := s.buildSummary(conn)
	if err != nil {
		s.recorder.RecordSharedDataView("summary", "error")
		return nil, err
	}
	s.recorder.RecordSharedDataView("summary", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  trustedID,
		ActionType:   models.ActionViewedSummary,
	})

	return summary, nil
}

// Moods returns the per-day mood/stress series for the range. Available at
// both tiers; entries carry no free-text fields.
func (s *SharedDataService) Moods(
	ctx context.Context,
	trustedID, patientID int64,
	from, to time.Time,
) ([]DailyMood, error) {
	conn, perms, err := s.resolve(trustedID, patientID)
	if err != nil {
		s.recorder.RecordSharedDataView("moods", viewResult(err))
		return nil, err
	}
	if !perms.CanViewMoods {
		s.recorder.RecordSharedDataView("moods", "forbidden")
		return nil, ErrForbidden
	}

	from, to = normalizeRange(from, to)
	entries, err := s.store.ListCheckIns(patientID, from, to)
	if err != nil {
		s.recorder.RecordSharedDataView("moods", "error")
		return nil, err
	}
	days := dailyBuckets(entries)
	s.recorder.RecordSharedDataView("moods", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  trustedID,
		ActionType:   models.ActionViewedMoods,
		Details: models.AuditDetails{
			"from": from.Format(time.RFC3339),
			"to":   to.Format(time.RFC3339),
			"days": len(days),
		},
	})

	return days, nil
}

// CheckIns returns full entries including free-text notes and suggestions.
// Requires the full tier; a data_only connection gets Forbidden even
// though it is active.
func (s *SharedDataService) CheckIns(
	ctx context.Context,
	trustedID, patientID int64,
	from, to time.Time,
) ([]SharedCheckIn, error) {
	conn, perms, err := s.resolve(trustedID, patientID)
	if err != nil {
		s.recorder.RecordSharedDataView("checkins", viewResult(err))
		return nil, err
	}
	if !perms.CanViewCheckins {
		s.recorder.RecordSharedDataView("checkins", "forbidden")
		return nil, ErrForbidden
	}

	from, to = normalizeRange(from, to)
	entries, err := s.store.ListCheckIns(patientID, from, to)
	if err != nil {
		s.recorder.RecordSharedDataView("checkins", "error")
		return nil, err
	}

	projected := make([]SharedCheckIn, 0, len(entries))
	for _, e := range entries {
		projected = append(projected, SharedCheckIn{
			ID:          e.ID,
			Mood:        e.Mood,
			MoodScore:   e.Mood.Score(),
			StressLevel: e.StressLevel,
			Note:        e.Note,
			Suggestion:  e.Suggestion,
			CreatedAt:   e.CreatedAt,
		})
	}
	s.recorder.RecordSharedDataView("checkins", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  trustedID,
		ActionType:   models.ActionViewedCheckins,
		Details: models.AuditDetails{
			"from":  from.Format(time.RFC3339),
			"to":    to.Format(time.RFC3339),
			"count": len(projected),
		},
	})

	return projected, nil
}

// Trends returns the aggregate series plus streak over a range. Available
// at both tiers.
func (s *SharedDataService) Trends(
	ctx context.Context,
	trustedID, patientID int64,
	from, to time.Time,
) (*SharedTrends, error) {
	conn, perms, err := s.resolve(trustedID, patientID)
	if err != nil {
		s.recorder.RecordSharedDataView("trends", viewResult(err))
		return nil, err
	}
	if !perms.CanViewMoods {
		s.recorder.RecordSharedDataView("trends", "forbidden")
		return nil, ErrForbidden
	}

	from, to = normalizeRange(from, to)
	trends, err := s.buildTrends(patientID, from, to)
	if err != nil {
		s.recorder.RecordSharedDataView("trends", "error")
		return nil, err
	}
	s.recorder.RecordSharedDataView("trends", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  trustedID,
		ActionType:   models.ActionViewedSummary,
		Details: models.AuditDetails{
			"view": "trends",
			"from": from.Format(time.RFC3339),
			"to":   to.Format(time.RFC3339),
		},
	})

	return trends, nil
}

// Export bundles summary, trends and full entries. Requires
// CanExportData, so only full-tier connections can pull it.
func (s *SharedDataService) Export(
	ctx context.Context,
	trustedID, patientID int64,
	from, to time.Time,
) (*SharedExport, error) {
	conn, perms, err := s.resolve(trustedID, patientID)
	if err != nil {
		s.recorder.RecordSharedDataView("export", viewResult(err))
		return nil, err
	}
	if !perms.CanExportData {
		s.recorder.RecordSharedDataView("export", "forbidden")
		return nil, ErrForbidden
	}

	from, to = normalizeRange(from, to)

	summary, err := s.buildSummary(conn)
	if err != nil {
		s.recorder.RecordSharedDataView("export", "error")
		return nil, err
	}
	trends, err := s.buildTrends(patientID, from, to)
	if err != nil {
		s.recorder.RecordSharedDataView("export", "error")
		return nil, err
	}
	entries, err := s.store.ListCheckIns(patientID, from, to)
	if err != nil {
		s.recorder.RecordSharedDataView("export", "error")
		return nil, err
	}

	export := &SharedExport{
		ConnectionID: conn.ID,
		GeneratedAt:  time.Now(),
		Summary:      *summary,
		Trends:       *trends,
		CheckIns:     make([]SharedCheckIn, 0, len(entries)),
	}
	for _, e := range entries {
		export.CheckIns = append(export.CheckIns, SharedCheckIn{
			ID:          e.ID,
			Mood:        e.Mood,
			MoodScore:   e.Mood.Score(),
			StressLevel: e.StressLevel,
			Note:        e.Note,
			Suggestion:  e.Suggestion,
			CreatedAt:   e.CreatedAt,
		})
	}
	s.recorder.RecordSharedDataView("export", "success")

	s.audit.Log(ctx, AuditEntry{
		ConnectionID: conn.ID,
		ActorUserID:  trustedID,
		ActionType:   models.ActionExportedData,
		Details: models.AuditDetails{
			"from":  from.Format(time.RFC3339),
			"to":    to.Format(time.RFC3339),
			"count": len(export.CheckIns),
		},
	})

	return export, nil
}

func (s *SharedDataService) buildSummary(conn *models.Connection) (*SharedSummary, error) {
	patientID := conn.PatientUserID
	now := time.Now()

	summary := &SharedSummary{
		PatientUserID: patientID,
		SharingTier:   conn.SharingTier,
	}

	total, err := s.store.CountCheckIns(patientID)
	if err != nil {
		return nil, err
	}
	summary.TotalCheckIns = total

	latest, err := s.store.LatestCheckIn(patientID)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}
	if latest != nil {
		summary.LatestMood = latest.Mood
		summary.LatestEntryAt = &latest.CreatedAt
	}

	// Streak needs more history than the 7-day average window.
	recent, err := s.store.ListCheckIns(patientID, now.AddDate(0, 0, -90), time.Time{})
	if err != nil {
		return nil, err
	}
	summary.CheckInStreak = checkInStreak(recent, now)

	weekAgo := now.AddDate(0, 0, -7)
	var sum float64
	var count int
	for _, e := range recent {
		if e.CreatedAt.Before(weekAgo) {
			continue
		}
		sum += e.Mood.Score()
		count++
	}
	if count > 0 {
		summary.AverageMood7d = sum / float64(count)
	}

	return summary, nil
}

func (s *SharedDataService) buildTrends(patientID int64, from, to time.Time) (*SharedTrends, error) {
	entries, err := s.store.ListCheckIns(patientID, from, to)
	if err != nil {
		return nil, err
	}

	return &SharedTrends{
		From:          from,
		To:            to,
		Days:          dailyBuckets(entries),
		CheckInStreak: checkInStreak(entries, time.Now()),
		TotalEntries:  len(entries),
	}, nil
}

// dailyBuckets folds entries into calendar-day averages, in chronological
// order.
func dailyBuckets(entries []models.CheckIn) []DailyMood {
	type acc struct {
		mood   float64
		stress int
		count  int
	}
	byDay := make(map[string]*acc)
	var order []string

	loc := time.Local
	for _, e := range entries {
		day := e.Day(loc)
		a, ok := byDay[day]
		if !ok {
			a = &acc{}
			byDay[day] = a
			order = append(order, day)
		}
		a.mood += e.Mood.Score()
		a.stress += e.StressLevel
		a.count++
	}

	days := make([]DailyMood, 0, len(order))
	for _, day := range order {
		a := byDay[day]
		days = append(days, DailyMood{
			Day:           day,
			AverageMood:   a.mood / float64(a.count),
			AverageStress: float64(a.stress) / float64(a.count),
			Entries:       a.count,
		})
	}
	return days
}

// checkInStreak counts consecutive calendar days with at least one entry,
// walking backward from today. A streak still counts when the most recent
// entry was yesterday rather than today (one-day grace window).
func checkInStreak(entries []models.CheckIn, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}

	loc := now.Location()
	days := make(map[string]bool, len(entries))
	for _, e := range entries {
		days[e.Day(loc)] = true
	}

	cursor := now
	if !days[cursor.Format("2006-01-02")] {
		cursor = cursor.AddDate(0, 0, -1)
		if !days[cursor.Format("2006-01-02")] {
			return 0
		}
	}

	streak := 0
	for days[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// normalizeRange fills in defaults: the last 30 days, half-open on the
// right.
func normalizeRange(from, to time.Time) (time.Time, time.Time) {
	now := time.Now()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}

func viewResult(err error) string {
	if errors.Is(err, ErrForbidden) {
		return "forbidden"
	}
	return "error"
}
