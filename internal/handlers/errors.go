package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/mtconnors79/mindwell-app-sub000/internal/services"
	"github.com/mtconnors79/mindwell-app-sub000/internal/store"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the HTTP error taxonomy for
// authenticated endpoints. No raw internal fault ever reaches the caller.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrSelfInvite),
		errors.Is(err, services.ErrSelfAccept),
		errors.Is(err, services.ErrSameTier),
		errors.Is(err, services.ErrInvalidTier),
		errors.Is(err, services.ErrInvalidMood),
		errors.Is(err, services.ErrInvalidStress),
		errors.Is(err, services.ErrAlreadyProcessed),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrNotPatient),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrConnectionNotActive),
		errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})

	case errors.Is(err, services.ErrDuplicateInvite),
		errors.Is(err, services.ErrAlreadyAccepted),
		errors.Is(err, services.ErrInviteRevoked),
		errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInviteGone):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})

	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondPublicTokenError is the variant for the unauthenticated
// token-credential routes (invite preview, decline). Messages stay generic
// so an invalid token confirms nothing about any specific invitation, and
// expired or already-processed invites read as gone.
func respondPublicTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})

	case errors.Is(err, services.ErrInviteGone),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrAlreadyProcessed):
		c.JSON(http.StatusGone, gin.H{"error": "this invitation is no longer available"})

	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
