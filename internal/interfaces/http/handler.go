package http

import (
	"net/http"
	"strings"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/infrastructure"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/usecases"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth          *usecases.AuthUsecase
	subscriptions *usecases.SubscriptionUsecase
	transactions  *usecases.TransactionUsecase
	reports       *usecases.ReportingUsecase
	anomalies     interfaces.AnomalyStore
	tokens        *usecases.TokenService
	rateLimiter   *infrastructure.LoginRateLimiter
	aiClient      *infrastructure.AIServiceClient
	webhookSecret string
}

func NewHandler(auth *usecases.AuthUsecase, subscriptions *usecases.SubscriptionUsecase,
	transactions *usecases.TransactionUsecase, reports *usecases.ReportingUsecase,
	anomalies interfaces.AnomalyStore, tokens *usecases.TokenService,
	rateLimiter *infrastructure.LoginRateLimiter, aiClient *infrastructure.AIServiceClient,
	webhookSecret string) *Handler {
	return &Handler{
		auth:          auth,
		subscriptions: subscriptions,
		transactions:  transactions,
		reports:       reports,
		anomalies:     anomalies,
		tokens:        tokens,
		rateLimiter:   rateLimiter,
		aiClient:      aiClient,
		webhookSecret: webhookSecret,
	}
}

// SetupRoutes wires the middleware pipeline and all route groups. The
// three pipeline stages run in order for every request: token validation,
// subscription gate, then per-group ownership checks.
func SetupRoutes(r *gin.Engine, h *Handler, m *Middleware) {
	r.Use(RequestID())
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(10 << 20)) // 10MB max request size
	r.Use(m.CORSMiddleware())
	r.Use(m.TokenStage())
	r.Use(m.SubscriptionGate())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", m.RequireAuth(), h.Me)
	}

	subscription := api.Group("/subscription")
	subscription.Use(m.RequireAuth())
	{
		subscription.POST("/start-trial", h.StartTrial)
		subscription.GET("/status", h.SubscriptionStatus)
	}

	ai := api.Group("/ai")
	ai.Use(m.RequireAuth())
	{
		ai.POST("/chat", h.AIChat)
	}

	payment := api.Group("/payment")
	{
		payment.POST("/webhook", h.PaymentWebhook) // public; verifies its own signature
		payment.GET("/status", m.RequireAuth(), h.PaymentStatus)
	}

	company := api.Group("/:companyId")
	company.Use(m.RequireAuth())
	company.Use(m.CompanyOwnerRequired())
	{
		company.GET("/transactions", h.ListTransactions)
		company.POST("/transactions", h.CreateTransaction)
		company.DELETE("/transactions/:transactionId", h.DeleteTransaction)

		company.GET("/reports/pnl", h.PnLReport)

		company.GET("/anomalies", h.ListAnomalies)
		company.DELETE("/anomalies/:anomalyId", h.DismissAnomaly)
	}
}

// ── Auth endpoints ──

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func authResponse(result *usecases.AuthResult) gin.H {
	return gin.H{
		"token":              result.Token,
		"companyId":          result.CompanyID,
		"email":              result.Email,
		"subscriptionStatus": result.SubscriptionStatus,
		"trialDaysRemaining": result.TrialDaysRemaining,
		"aiChatsRemaining":   result.AIChatsRemaining,
	}
}

func (h *Handler) Register(c *gin.Context) {
	if !h.rateLimiter.TryConsumeRegister(c.ClientIP()) {
		errorBody(c, http.StatusTooManyRequests, CodeRateLimited, "Too many registration attempts. Please wait 10 minutes.")
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, "Invalid request")
		return
	}
	if !ValidEmail(req.Email) {
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, "Invalid email format")
		return
	}
	if !ValidCompanyName(req.CompanyName) {
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, "Company name must be 2-100 characters")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), strings.TrimSpace(req.Email), req.Password, strings.TrimSpace(req.CompanyName))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse(result))
}

func (h *Handler) Login(c *gin.Context) {
	if !h.rateLimiter.TryConsumeLogin(c.ClientIP()) {
		errorBody(c, http.StatusTooManyRequests, CodeRateLimited, "Too many login attempts. Please wait 1 minute.")
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, "Invalid request")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse(result))
}

// Logout revokes the presented token until its natural expiry. Requests
// with no bearer header or an already revoked token still succeed; a
// malformed or expired bearer is answered 401 by the token stage before
// this handler runs.
func (h *Handler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		h.auth.Logout(c.Request.Context(), strings.TrimPrefix(authHeader, "Bearer "))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me answers from token claims without another database read.
func (h *Handler) Me(c *gin.Context) {
	token := c.GetString(ctxToken)
	claims, err := h.tokens.Parse(token)
	if err != nil {
		errorBody(c, http.StatusUnauthorized, CodeAuthRequired, "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":     claims.Email,
		"companyId": claims.CompanyID,
	})
}
