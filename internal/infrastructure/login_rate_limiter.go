package infrastructure

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginRateLimiter implements per-IP token bucket rate limiting for the two
// authentication endpoints. Separate buckets for login vs register:
//
//	login:    5 attempts per minute per IP
//	register: 3 attempts per 10 minutes per IP
//
// Buckets are created lazily on first use. State is in-memory only; loss on
// restart is acceptable. Cross-replica limiting is out of scope — this is a
// single-process bucket.
type LoginRateLimiter struct {
	mu              sync.Mutex
	loginBuckets    map[string]*rate.Limiter
	registerBuckets map[string]*rate.Limiter

	loginLimit    rate.Limit
	loginBurst    int
	registerLimit rate.Limit
	registerBurst int
}

func NewLoginRateLimiter(loginMax int, loginWindow time.Duration, registerMax int, registerWindow time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		loginBuckets:    make(map[string]*rate.Limiter),
		registerBuckets: make(map[string]*rate.Limiter),
		loginLimit:      rate.Every(loginWindow / time.Duration(loginMax)),
		loginBurst:      loginMax,
		registerLimit:   rate.Every(registerWindow / time.Duration(registerMax)),
		registerBurst:   registerMax,
	}
}

// TryConsumeLogin consumes a login attempt for this IP.
// Returns false if the rate limit is exceeded.
func (l *LoginRateLimiter) TryConsumeLogin(ip string) bool {
	l.mu.Lock()
	limiter, exists := l.loginBuckets[ip]
	if !exists {
		limiter = rate.NewLimiter(l.loginLimit, l.loginBurst)
		l.loginBuckets[ip] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// TryConsumeRegister consumes a register attempt for this IP.
// Returns false if the rate limit is exceeded.
func (l *LoginRateLimiter) TryConsumeRegister(ip string) bool {
	l.mu.Lock()
	limiter, exists := l.registerBuckets[ip]
	if !exists {
		limiter = rate.NewLimiter(l.registerLimit, l.registerBurst)
		l.registerBuckets[ip] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
