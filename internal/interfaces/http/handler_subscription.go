package http

import (
	"errors"
	"net/http"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/gin-gonic/gin"
)

// StartTrial begins the one-shot 5-day trial for the current user.
func (h *Handler) StartTrial(c *gin.Context) {
	user := currentUser(c)

	updated, err := h.subscriptions.StartTrial(c.Request.Context(), user.Email)
	if err != nil {
		if errors.Is(err, entities.ErrTrialAlreadyUsed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "TRIAL_ALREADY_USED",
				"message": "Your free trial has already been used. Please upgrade to Pro.",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Your free trial has started!",
		"tier":               entities.TierTrial,
		"trialDaysRemaining": h.subscriptions.TrialDaysRemaining(updated),
		"aiChatsRemaining":   h.subscriptions.AIChatsRemaining(updated),
	})
}

// SubscriptionStatus reports the full subscription view. A lapsed trial is
// written back as EXPIRED on the way through.
func (h *Handler) SubscriptionStatus(c *gin.Context) {
	user := h.subscriptions.ExpireTrialIfEnded(c.Request.Context(), currentUser(c))

	c.JSON(http.StatusOK, gin.H{
		"tier":               h.subscriptions.EffectiveTier(user),
		"status":             user.SubscriptionStatus,
		"trialDaysRemaining": h.subscriptions.TrialDaysRemaining(user),
		"aiChatsRemaining":   h.subscriptions.AIChatsRemaining(user),
		"aiChatDailyLimit":   h.subscriptions.AIChatDailyLimit(user),
		"hasPremiumAccess":   h.subscriptions.HasPremiumAccess(user),
		"trialAlreadyUsed":   user.TrialStartedAt != nil,
	})
}
