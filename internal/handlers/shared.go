package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mtconnors79/mindwell-app-sub000/internal/middleware"
	"github.com/mtconnors79/mindwell-app-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// SharedDataHandler serves the trusted-person view of a patient's data.
// Every route takes the patient's id in the path; the caller is the
// trusted person from the JWT.
type SharedDataHandler struct {
	shared *services.SharedDataService
}

func NewSharedDataHandler(shared *services.SharedDataService) *SharedDataHandler {
	return &SharedDataHandler{shared: shared}
}

// Summary handles GET /shared/:patientId/summary
func (h *SharedDataHandler) Summary(c *gin.Context) {
	trustedID, patientID, ok := h.participants(c)
	if !ok {
		return
	}

	summary, err := h.shared.Summary(c, trustedID, patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Moods handles GET /shared/:patientId/moods
func (h *SharedDataHandler) Moods(c *gin.Context) {
	trustedID, patientID, ok := h.participants(c)
	if !ok {
		return
	}
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	days, err := h.shared.Moods(c, trustedID, patientID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// CheckIns handles GET /shared/:patientId/checkins (full tier only)
func (h *SharedDataHandler) CheckIns(c *gin.Context) {
	trustedID, patientID, ok := h.participants(c)
	if !ok {
		return
	}
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	entries, err := h.shared.CheckIns(c, trustedID, patientID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkins": entries})
}

// Trends handles GET /shared/:patientId/trends
func (h *SharedDataHandler) Trends(c *gin.Context) {
	trustedID, patientID, ok := h.participants(c)
	if !ok {
		return
	}
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	trends, err := h.shared.Trends(c, trustedID, patientID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// Export handles GET /shared/:patientId/export (full tier only)
func (h *SharedDataHandler) Export(c *gin.Context) {
	trustedID, patientID, ok := h.participants(c)
	if !ok {
		return
	}
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	export, err := h.shared.Export(c, trustedID, patientID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, export)
}

// participants pulls the caller from the JWT and the patient from the
// path. A malformed patient id gets the same 403 as a missing
// connection, so route probing reveals nothing.
func (h *SharedDataHandler) participants(c *gin.Context) (trustedID, patientID int64, ok bool) {
	trustedID, authed := middleware.CurrentUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return 0, 0, false
	}

	patientID, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil || patientID <= 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return 0, 0, false
	}
	return trustedID, patientID, true
}

// parseRange reads optional from/to query params as RFC 3339 timestamps
// or bare dates. Zero values let the service apply its defaults.
func parseRange(c *gin.Context) (from, to time.Time, ok bool) {
	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = parseTimeParam(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from parameter"})
			return time.Time{}, time.Time{}, false
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = parseTimeParam(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to parameter"})
			return time.Time{}, time.Time{}, false
		}
	}
	return from, to, true
}

func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
