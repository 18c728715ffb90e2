package usecases

import (
	"context"
	"log"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
)

// TierLimits holds the daily AI-chat allowance per effective tier.
type TierLimits struct {
	Active int
	Trial  int
	Free   int
}

// SubscriptionUsecase owns the subscription state machine:
//
//	FREE ──start_trial──▶ TRIAL ──window lapses──▶ EXPIRED
//	  ▲                     │                         │
//	  │                     └──payment──▶ ACTIVE ◀────┘
//	  └───────────cancel◀──────────────────┘
//
// All per-user mutations go through UserStore.UpdateWithLock so concurrent
// requests for the same user are serialized by a row lock.
type SubscriptionUsecase struct {
	users  interfaces.UserStore
	clock  interfaces.Clock
	window time.Duration // trial length
	period time.Duration // paid subscription length
	limits TierLimits
}

func NewSubscriptionUsecase(users interfaces.UserStore, clock interfaces.Clock, trialDays, subscriptionDays int, limits TierLimits) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		users:  users,
		clock:  clock,
		window: time.Duration(trialDays) * 24 * time.Hour,
		period: time.Duration(subscriptionDays) * 24 * time.Hour,
		limits: limits,
	}
}

// TrialDays returns the configured trial length in whole days.
func (s *SubscriptionUsecase) TrialDays() int {
	return int(s.window / (24 * time.Hour))
}

// ── Trial management ──

// StartTrial begins the one-shot trial. A user whose trial_started_at is
// already set gets entities.ErrTrialAlreadyUsed, whatever their status.
func (s *SubscriptionUsecase) StartTrial(ctx context.Context, email string) (*entities.User, error) {
	return s.users.UpdateWithLock(ctx, email, func(u *entities.User) error {
		if u.TrialStartedAt != nil {
			return entities.ErrTrialAlreadyUsed
		}
		now := s.clock.Now()
		u.TrialStartedAt = &now
		u.SubscriptionStatus = entities.StatusTrial
		return nil
	})
}

// ExpireTrialIfEnded writes EXPIRED back for a TRIAL user whose window has
// lapsed. Called from the status endpoint so stored state converges.
func (s *SubscriptionUsecase) ExpireTrialIfEnded(ctx context.Context, u *entities.User) *entities.User {
	if u.SubscriptionStatus != entities.StatusTrial || s.HasPremiumAccess(u) {
		return u
	}
	updated, err := s.users.UpdateWithLock(ctx, u.Email, func(locked *entities.User) error {
		if locked.SubscriptionStatus == entities.StatusTrial {
			locked.SubscriptionStatus = entities.StatusExpired
		}
		return nil
	})
	if err != nil {
		log.Printf("subscription: trial expiry write-back failed for %s: %v", u.Email, err)
		return u
	}
	return updated
}

// ── Activation / renewal / cancellation ──

// Activate marks the user a paid subscriber for one period and records the
// payment gateway reference.
func (s *SubscriptionUsecase) Activate(ctx context.Context, email, externalRef string) (*entities.User, error) {
	return s.users.UpdateWithLock(ctx, email, func(u *entities.User) error {
		expiry := s.clock.Now().Add(s.period)
		u.SubscriptionStatus = entities.StatusActive
		u.SubscriptionExpiresAt = &expiry
		u.ExternalSubscriptionRef = externalRef
		return nil
	})
}

// Renew extends the subscription by one period from the current expiry when
// it is still in the future, otherwise from now.
func (s *SubscriptionUsecase) Renew(ctx context.Context, email, externalRef string) (*entities.User, error) {
	return s.users.UpdateWithLock(ctx, email, func(u *entities.User) error {
		base := s.clock.Now()
		if u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.After(base) {
			base = *u.SubscriptionExpiresAt
		}
		expiry := base.Add(s.period)
		u.SubscriptionStatus = entities.StatusActive
		u.SubscriptionExpiresAt = &expiry
		u.ExternalSubscriptionRef = externalRef
		return nil
	})
}

// Cancel sets CANCELLED and keeps the stored expiry untouched. A CANCELLED
// user has no premium access from then on, whatever the expiry says (see
// HasPremiumAccess and EffectiveTier).
func (s *SubscriptionUsecase) Cancel(ctx context.Context, email string) (*entities.User, error) {
	return s.users.UpdateWithLock(ctx, email, func(u *entities.User) error {
		u.SubscriptionStatus = entities.StatusCancelled
		return nil
	})
}

// ── Derived views (pure functions of the user record + clock) ──

// HasPremiumAccess reports whether the user currently reaches premium
// features: ACTIVE within expiry, or TRIAL within its window.
func (s *SubscriptionUsecase) HasPremiumAccess(u *entities.User) bool {
	now := s.clock.Now()
	switch u.SubscriptionStatus {
	case entities.StatusActive:
		return u.SubscriptionExpiresAt == nil || now.Before(*u.SubscriptionExpiresAt)
	case entities.StatusTrial:
		return u.TrialStartedAt != nil && now.Before(u.TrialStartedAt.Add(s.window))
	default:
		return false
	}
}

// EffectiveTier collapses every non-premium state to FREE: an expired
// ACTIVE user and a CANCELLED user are both effectively free-tier.
func (s *SubscriptionUsecase) EffectiveTier(u *entities.User) entities.Tier {
	now := s.clock.Now()
	switch u.SubscriptionStatus {
	case entities.StatusActive:
		if u.SubscriptionExpiresAt == nil || now.Before(*u.SubscriptionExpiresAt) {
			return entities.TierActive
		}
	case entities.StatusTrial:
		if u.TrialStartedAt != nil && now.Before(u.TrialStartedAt.Add(s.window)) {
			return entities.TierTrial
		}
	}
	return entities.TierFree
}

// TrialDaysRemaining returns ⌈time left / 1 day⌉ clamped to [0, window]
// for TRIAL users, 0 for everyone else.
func (s *SubscriptionUsecase) TrialDaysRemaining(u *entities.User) int {
	if u.SubscriptionStatus != entities.StatusTrial || u.TrialStartedAt == nil {
		return 0
	}
	remaining := u.TrialStartedAt.Add(s.window).Sub(s.clock.Now())
	if remaining <= 0 {
		return 0
	}
	days := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
	if max := s.TrialDays(); days > max {
		return max
	}
	return days
}

// AIChatDailyLimit returns the allowance for the user's effective tier.
func (s *SubscriptionUsecase) AIChatDailyLimit(u *entities.User) int {
	switch s.EffectiveTier(u) {
	case entities.TierActive:
		return s.limits.Active
	case entities.TierTrial:
		return s.limits.Trial
	default:
		return s.limits.Free
	}
}

// AIChatsRemaining returns today's remaining allowance without consuming.
func (s *SubscriptionUsecase) AIChatsRemaining(u *entities.User) int {
	limit := s.AIChatDailyLimit(u)
	if u.AIChatResetDate == nil || !sameDay(*u.AIChatResetDate, s.clock.Now()) {
		return limit // new day, full allowance
	}
	remaining := limit - u.AIChatsUsedToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ── Daily AI-chat quota ──

// ConsumeAIChat atomically spends one chat from the daily quota and returns
// the remaining allowance. Two concurrent requests cannot both succeed when
// a single slot remains — the row lock serializes them.
func (s *SubscriptionUsecase) ConsumeAIChat(ctx context.Context, email string) (int, error) {
	var remaining int
	_, err := s.users.UpdateWithLock(ctx, email, func(u *entities.User) error {
		now := s.clock.Now()
		if u.AIChatResetDate == nil || !sameDay(*u.AIChatResetDate, now) {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			u.AIChatsUsedToday = 0
			u.AIChatResetDate = &today
		}

		limit := s.AIChatDailyLimit(u)
		if u.AIChatsUsedToday >= limit {
			return entities.ErrQuotaExceeded
		}

		u.AIChatsUsedToday++
		remaining = limit - u.AIChatsUsedToday
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
