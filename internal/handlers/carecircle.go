package handlers

import (
	"net/http"
	"strconv"

	"github.com/mtconnors79/mindwell-app-sub000/internal/middleware"
	"github.com/mtconnors79/mindwell-app-sub000/internal/models"
	"github.com/mtconnors79/mindwell-app-sub000/internal/services"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"

	"github.com/gin-gonic/gin"
)

// CareCircleHandler serves the connection lifecycle: invites, the public
// token routes, tier changes, revocation and the audit views.
type CareCircleHandler struct {
	invitations *services.InvitationService
	connections *services.ConnectionService
	audit       *services.AuditService
}

func NewCareCircleHandler(
	invitations *services.InvitationService,
	connections *services.ConnectionService,
	audit *services.AuditService,
) *CareCircleHandler {
	return &CareCircleHandler{
		invitations: invitations,
		connections: connections,
		audit:       audit,
	}
}

type inviteRequest struct {
	Email       string `json:"email" binding:"required"`
	Name        string `json:"name"`
	SharingTier string `json:"sharing_tier"`
}

// Invite handles POST /care-circle/invite
func (h *CareCircleHandler) Invite(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	conn, err := h.invitations.Invite(c, userID, req.Email, req.Name,
		models.SharingTier(req.SharingTier))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"connection":     conn,
		"invite_url":     h.invitations.InviteURL(conn),
		"invite_message": h.invitations.InviteMessage(conn),
	})
}

// List handles GET /care-circle. Listing triggers the lazy expiry sweep, so
// expired invites come back already revoked.
func (h *CareCircleHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conns, err := h.connections.ListConnections(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	type listedConnection struct {
		models.Connection
		Permissions services.Permissions `json:"permissions"`
	}
	listed := make([]listedConnection, 0, len(conns))
	for i := range conns {
		listed = append(listed, listedConnection{
			Connection:  conns[i],
			Permissions: services.GetPermissions(&conns[i]),
		})
	}

	c.JSON(http.StatusOK, gin.H{"connections": listed})
}

// PreviewInvite handles GET /care-circle/invite/:token (public)
func (h *CareCircleHandler) PreviewInvite(c *gin.Context) {
	preview, err := h.invitations.PreviewInvite(c, c.Param("token"))
	if err != nil {
		respondPublicTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Accept handles POST /care-circle/accept/:token (authenticated)
func (h *CareCircleHandler) Accept(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, perms, err := h.connections.Accept(c, c.Param("token"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connection":  conn,
		"permissions": perms,
	})
}

// Decline handles POST /care-circle/decline/:token (public; the token is
// the sole credential)
func (h *CareCircleHandler) Decline(c *gin.Context) {
	if err := h.connections.Decline(c, c.Param("token")); err != nil {
		respondPublicTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invitation declined"})
}

type tierRequest struct {
	SharingTier string `json:"sharing_tier" binding:"required"`
}

// ChangeTier handles PUT /care-circle/:id/tier (patient only)
func (h *CareCircleHandler) ChangeTier(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req tierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sharing_tier is required"})
		return
	}

	conn, err := h.connections.ChangeTier(c, c.Param("id"), userID,
		models.SharingTier(req.SharingTier))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connection": conn})
}

// Revoke handles DELETE /care-circle/:id (patient or trusted person)
func (h *CareCircleHandler) Revoke(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := h.connections.Revoke(c, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connection": conn})
}

// Resend handles POST /care-circle/:id/resend (patient only)
func (h *CareCircleHandler) Resend(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := h.invitations.Resend(c, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connection":     conn,
		"invite_url":     h.invitations.InviteURL(conn),
		"invite_message": h.invitations.InviteMessage(conn),
	})
}

// AuditHistory handles GET /care-circle/audit/:connectionID (patient only,
// paginated, newest first). The response carries per-action totals
// alongside the page.
func (h *CareCircleHandler) AuditHistory(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := h.connections.GetForUser(c.Param("connectionID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if conn.PatientUserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the patient may view the audit trail"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params := store.NewPaginationParams(page, pageSize)

	entries, pagination, err := h.audit.ConnectionHistory(conn.ID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	counts, err := h.audit.ActionCounts(conn.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":    entries,
		"pagination": pagination,
		"counts":     counts,
	})
}

// RecentAccess handles GET /care-circle/access-log: the patient's
// dashboard of who read their shared data recently. Only the
// viewed_*/exported_data kinds appear here.
func (h *CareCircleHandler) RecentAccess(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.audit.RecentDataAccess(userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// MyActivity handles GET /care-circle/activity: the caller's own audit
// entries across all connections, optionally filtered by action type.
func (h *CareCircleHandler) MyActivity(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var actions []models.ActionType
	for _, raw := range c.QueryArray("action") {
		actions = append(actions, models.ActionType(raw))
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.audit.ActorActivity(userID, actions, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
