package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const webhookSignatureHeader = "X-Webhook-Signature"

// paymentWebhookEvent is the payload the payment gateway posts after a
// capture or renewal.
type paymentWebhookEvent struct {
	Event     string `json:"event"` // payment.captured | subscription.renewed
	Email     string `json:"email"`
	PaymentID string `json:"paymentId"`
}

// PaymentWebhook is public but always verifies the HMAC-SHA-256 signature
// of the raw body before touching subscription state.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, "Unreadable body")
		return
	}

	if !h.verifyWebhookSignature(body, c.GetHeader(webhookSignatureHeader)) {
		log.Printf("payment: webhook signature mismatch from %s", c.ClientIP())
		errorBody(c, http.StatusUnauthorized, CodeAuthRequired, "Invalid signature")
		return
	}

	var event paymentWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Email == "" {
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, "Invalid payload")
		return
	}

	switch event.Event {
	case "subscription.renewed":
		_, err = h.subscriptions.Renew(c.Request.Context(), event.Email, event.PaymentID)
	default:
		_, err = h.subscriptions.Activate(c.Request.Context(), event.Email, event.PaymentID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("payment: %s processed for %s", event.Event, event.Email)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PaymentStatus returns the bearer's paid-subscription state.
func (h *Handler) PaymentStatus(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"tier":                  h.subscriptions.EffectiveTier(user),
		"status":                user.SubscriptionStatus,
		"subscriptionExpiresAt": user.SubscriptionExpiresAt,
		"hasPremiumAccess":      h.subscriptions.HasPremiumAccess(user),
	})
}

func (h *Handler) verifyWebhookSignature(body []byte, signature string) bool {
	if h.webhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
