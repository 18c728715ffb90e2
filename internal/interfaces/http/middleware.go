package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/usecases"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUser      = "user"
	ctxToken     = "token"
	ctxCompanyID = "company_id"

	tierHeader = "X-Subscription-Tier"
)

// Paths exempt from the subscription gate: auth, payment, trial opt-in,
// health probe.
var gateExemptPrefixes = []string{"/api/v1/auth/", "/api/v1/payment/"}
var gateExemptPaths = []string{"/api/v1/subscription/start-trial", "/health"}

// Path fragments that require a premium tier (report, AI, OCR, forecast).
var premiumFragments = []string{"/reports/", "/ai/", "/ocr", "/forecast"}

// Fully public paths where stage 1 never runs: the login/register handlers
// do their own work and the payment webhook verifies a signed header.
var tokenStageExemptPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
	"/api/v1/payment/webhook",
}

// Middleware implements the three-stage request pipeline: token validation,
// subscription gate, tenant-ownership check. Stages run strictly in that
// order.
type Middleware struct {
	tokens        *usecases.TokenService
	users         interfaces.UserStore
	companies     interfaces.CompanyStore
	subscriptions *usecases.SubscriptionUsecase
	revocation    interfaces.RevocationStore
	corsOrigins   []string
}

func NewMiddleware(tokens *usecases.TokenService, users interfaces.UserStore, companies interfaces.CompanyStore,
	subscriptions *usecases.SubscriptionUsecase, revocation interfaces.RevocationStore, corsOrigins []string) *Middleware {
	return &Middleware{
		tokens:        tokens,
		users:         users,
		companies:     companies,
		subscriptions: subscriptions,
		revocation:    revocation,
		corsOrigins:   corsOrigins,
	}
}

// TokenStage is stage 1. No bearer header passes through as anonymous;
// revoked tokens are treated as anonymous; invalid or expired tokens are a
// hard 401. A valid token resolves the user and attaches it to the context.
func (m *Middleware) TokenStage() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, public := range tokenStageExemptPaths {
			if c.Request.URL.Path == public {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		if m.revocation.IsRevoked(c.Request.Context(), token) {
			c.Next()
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			errorBody(c, http.StatusUnauthorized, CodeAuthRequired, "Invalid or expired token")
			return
		}

		user, err := m.users.FindByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			respondError(c, err)
			return
		}
		if user == nil {
			errorBody(c, http.StatusUnauthorized, CodeAuthRequired, "Invalid or expired token")
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// SubscriptionGate is stage 2. Exempt paths skip the stage entirely and get
// no tier header; on every other path an authenticated response carries the
// effective tier header, and FREE users hitting a premium route get 402 with
// a machine-readable body the frontend routes to the upgrade page.
func (m *Middleware) SubscriptionGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if gateExempt(path) {
			c.Next()
			return
		}

		user := currentUser(c)
		if user == nil {
			c.Next()
			return
		}

		tier := m.subscriptions.EffectiveTier(user)
		c.Writer.Header().Set(tierHeader, string(tier))

		if tier == entities.TierFree && isPremiumPath(path) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":      CodeFeatureLocked,
				"message":    "Upgrade your subscription to use this feature.",
				"tier":       tier,
				"upgradeUrl": "/subscription",
			})
			return
		}

		c.Next()
	}
}

// RequireAuth rejects anonymous requests. Placed on every protected group
// after the token stage.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			errorBody(c, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
			return
		}
		c.Next()
	}
}

// CompanyOwnerRequired is stage 3 for handlers that take a companyId path
// parameter. A user who does not own the referenced company gets a plain
// 403 — the body must not reveal whether the company exists.
func (m *Middleware) CompanyOwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			errorBody(c, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
			return
		}

		companyID, err := strconv.ParseInt(c.Param("companyId"), 10, 64)
		if err != nil {
			errorBody(c, http.StatusForbidden, CodeForbidden, "Access denied")
			return
		}

		owns, err := m.companies.ExistsWithOwner(c.Request.Context(), companyID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !owns {
			errorBody(c, http.StatusForbidden, CodeForbidden, "Access denied")
			return
		}

		c.Set(ctxCompanyID, companyID)
		c.Next()
	}
}

// CORSMiddleware allows Cross-Origin requests from configured origins.
func (m *Middleware) CORSMiddleware() gin.HandlerFunc {
	allowAll := len(m.corsOrigins) == 0
	allowed := make(map[string]bool, len(m.corsOrigins))
	for _, origin := range m.corsOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SecurityHeaders adds security headers to prevent common attacks
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		// Prevent clickjacking
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		// Referrer policy
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}

// RequestID tags every request for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestSizeLimiter limits request body size to prevent DoS
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func currentUser(c *gin.Context) *entities.User {
	value, exists := c.Get(ctxUser)
	if !exists {
		return nil
	}
	user, _ := value.(*entities.User)
	return user
}

func pathCompanyID(c *gin.Context) int64 {
	value, _ := c.Get(ctxCompanyID)
	id, _ := value.(int64)
	return id
}

func gateExempt(path string) bool {
	for _, prefix := range gateExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, exempt := range gateExemptPaths {
		if path == exempt {
			return true
		}
	}
	return false
}

func isPremiumPath(path string) bool {
	for _, fragment := range premiumFragments {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}
