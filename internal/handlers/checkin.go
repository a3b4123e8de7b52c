package handlers

import (
	"net/http"

	"github.com/mtconnors79/mindwell-app-sub000/internal/middleware"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// CheckInHandler serves the user's own wellness entries.
type CheckInHandler struct {
	checkins *services.CheckInService
}

func NewCheckInHandler(checkins *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkins: checkins}
}

type checkInRequest struct {
	Mood        string `json:"mood" binding:"required"`
	StressLevel int    `json:"stress_level" binding:"required"`
	Note        string `json:"note"`
}

// Create handles POST /checkins
func (h *CheckInHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mood and stress_level are required"})
		return
	}

	entry, err := h.checkins.Create(c, userID, models.Mood(req.Mood), req.StressLevel, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"checkin": entry})
}

// List handles GET /checkins
func (h *CheckInHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	entries, err := h.checkins.ListMine(c, userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkins": entries})
}
