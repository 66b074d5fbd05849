package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eternalgy/referral-portal/internal/middleware"
	"github.com/eternalgy/referral-portal/internal/models"
	"github.com/eternalgy/referral-portal/internal/storage"
)

// ReferralHandler serves the dashboard API. Every endpoint resolves the
// caller's referrer account first, so a first-time visitor gets their
// account created lazily on whichever endpoint they hit.
type ReferralHandler struct {
	store storage.Store
}

// NewReferralHandler creates the dashboard API handler.
func NewReferralHandler(store storage.Store) *ReferralHandler {
	return &ReferralHandler{store: store}
}

// respondError maps domain error kinds onto HTTP statuses. Anything that
// is not a domain error surfaces as a generic message only - the cause has
// already been logged where it happened.
func respondError(c *gin.Context, err error) {
	if re, ok := models.AsReferralError(err); ok {
		status := http.StatusBadRequest
		switch re.Kind {
		case models.KindUnauthorized:
			status = http.StatusForbidden
		case models.KindNotFound:
			status = http.StatusNotFound
		case models.KindUnavailable:
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": re.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
}

func (h *ReferralHandler) resolveReferrer(c *gin.Context) *models.ReferrerAccount {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in with WhatsApp to continue."})
		return nil
	}

	referrer, err := h.store.ResolveReferrer(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return nil
	}
	return referrer
}

// Me returns the caller's referrer account, creating it on first visit.
func (h *ReferralHandler) Me(c *gin.Context) {
	referrer := h.resolveReferrer(c)
	if referrer == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"referrer": referrer})
}

// List returns the caller's referrals, newest first.
func (h *ReferralHandler) List(c *gin.Context) {
	referrer := h.resolveReferrer(c)
	if referrer == nil {
		return
	}

	referrals, err := h.store.ListReferrals(c.Request.Context(), referrer.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	if referrals == nil {
		referrals = []models.Referral{}
	}

	c.JSON(http.StatusOK, gin.H{"referrals": referrals})
}

// Create submits a new lead.
func (h *ReferralHandler) Create(c *gin.Context) {
	referrer := h.resolveReferrer(c)
	if referrer == nil {
		return
	}

	var input models.ReferralInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid referral input"})
		return
	}
	input.Relationship = models.NormalizeRelationship(strings.TrimSpace(input.Relationship))

	if err := h.store.CreateReferral(c.Request.Context(), referrer, input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Referral added"})
}

// Update edits one of the caller's referrals. The referral id comes from
// the route, not the body.
func (h *ReferralHandler) Update(c *gin.Context) {
	referrer := h.resolveReferrer(c)
	if referrer == nil {
		return
	}

	var input models.ReferralUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid referral update"})
		return
	}
	input.Relationship = models.NormalizeRelationship(strings.TrimSpace(input.Relationship))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referral id is invalid"})
		return
	}
	input.ReferralID = id

	if err := h.store.UpdateReferral(c.Request.Context(), referrer, input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Referral updated"})
}

// UpdateProfile saves the caller's payout profile.
func (h *ReferralHandler) UpdateProfile(c *gin.Context) {
	referrer := h.resolveReferrer(c)
	if referrer == nil {
		return
	}

	var profile models.ReferrerProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile input"})
		return
	}

	if err := h.store.UpdateReferrerProfile(c.Request.Context(), referrer, profile); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "referrer": referrer})
}
