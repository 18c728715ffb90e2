package entities

import "time"

// SubscriptionStatus is the stored subscription state of a user account.
// The effective tier a user gets is derived from this plus the wall clock —
// see usecases.SubscriptionUsecase.
type SubscriptionStatus string

const (
	StatusFree      SubscriptionStatus = "FREE"      // default, permanent free tier
	StatusTrial     SubscriptionStatus = "TRIAL"     // 5-day premium trial, explicitly started
	StatusActive    SubscriptionStatus = "ACTIVE"    // paid subscriber
	StatusExpired   SubscriptionStatus = "EXPIRED"   // trial ended, free-tier limits
	StatusCancelled SubscriptionStatus = "CANCELLED" // was subscriber, free-tier limits
)

// Tier is the effective subscription tier derived from status + clock.
type Tier string

const (
	TierActive Tier = "ACTIVE"
	TierTrial  Tier = "TRIAL"
	TierFree   Tier = "FREE"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`

	SubscriptionStatus      SubscriptionStatus `json:"subscription_status"`
	TrialStartedAt          *time.Time         `json:"trial_started_at"`
	SubscriptionExpiresAt   *time.Time         `json:"subscription_expires_at"`
	ExternalSubscriptionRef string             `json:"-"` // payment gateway reference

	AIChatsUsedToday int        `json:"ai_chats_used_today"`
	AIChatResetDate  *time.Time `json:"ai_chat_reset_date"` // calendar date, midnight UTC
}
