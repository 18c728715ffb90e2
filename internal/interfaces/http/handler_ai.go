package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/gin-gonic/gin"
)

// AIChat proxies a chat request to the external AI service with per-user
// daily quota enforcement. The quota is consumed before forwarding; a
// failed forward does not refund it.
func (h *Handler) AIChat(c *gin.Context) {
	user := currentUser(c)

	remaining, err := h.subscriptions.ConsumeAIChat(c.Request.Context(), user.Email)
	if err != nil {
		if errors.Is(err, entities.ErrQuotaExceeded) {
			limit := h.subscriptions.AIChatDailyLimit(user)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      CodeQuotaExceeded,
				"message":    "You've used all your AI chats for today. Resets at midnight.",
				"tier":       h.subscriptions.EffectiveTier(user),
				"dailyLimit": limit,
				"upgradeUrl": "/subscription",
			})
			return
		}
		respondError(c, err)
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, "Invalid request")
		return
	}

	aiResponse, err := h.aiClient.Chat(c.Request.Context(), body)
	if err != nil {
		log.Printf("ai service error for user %s: %v", user.Email, err)
		errorBody(c, http.StatusServiceUnavailable, "AI_SERVICE_UNAVAILABLE",
			"The AI assistant is temporarily unavailable. Please try again shortly.")
		return
	}

	response := gin.H{}
	for k, v := range aiResponse {
		response[k] = v
	}
	response["aiChatsRemaining"] = remaining
	response["aiChatDailyLimit"] = h.subscriptions.AIChatDailyLimit(user)

	c.JSON(http.StatusOK, response)
}
