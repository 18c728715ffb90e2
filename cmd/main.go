package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/config"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/infrastructure"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	httpiface "github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces/http"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/repository"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const appName = "AI Finance Assistant"

func main() {
	// Amounts serialize as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true

	// Load .env file (optional — env vars may come from the deployment)
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	clock := infrastructure.SystemClock{}

	// Connect to PostgreSQL
	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	defer pgClient.Close()

	// Token revocation store — no-op without Redis
	var revocation interfaces.RevocationStore = infrastructure.NoopRevocationStore{}
	if cfg.RedisURL != "" {
		redisStore, err := infrastructure.NewRedisRevocationStore(cfg.RedisURL)
		if err != nil {
			log.Printf("warning: redis unavailable (%v) — token revocation disabled", err)
		} else {
			defer redisStore.Close()
			revocation = redisStore
		}
	}

	// Event broker — the app must start without one; publish degrades to a no-op
	var publisher interfaces.EventPublisher = infrastructure.NoopPublisher{}
	var rabbit *infrastructure.RabbitClient
	if cfg.BrokerURL != "" {
		rabbit, err = infrastructure.NewRabbitClient(cfg.BrokerURL)
		if err != nil {
			log.Printf("warning: rabbitmq unavailable (%v) — events disabled", err)
			rabbit = nil
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	// Mail relay — no-op without SMTP config
	var mailer interfaces.Mailer = infrastructure.NoopMailer{}
	if cfg.SMTPHost != "" {
		mailer = infrastructure.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	// Initialize Repositories
	userRepo := repository.NewUserRepository(pgClient.Pool)
	companyRepo := repository.NewCompanyRepository(pgClient.Pool)
	txnRepo := repository.NewTransactionRepository(pgClient.Pool)
	anomalyRepo := repository.NewAnomalyRepository(pgClient.Pool)

	// Initialize Usecases & Services
	tokenService, err := usecases.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, clock)
	if err != nil {
		log.Fatal("token service: ", err)
	}

	subscriptionUsecase := usecases.NewSubscriptionUsecase(userRepo, clock, cfg.TrialDays, cfg.SubscriptionDays,
		usecases.TierLimits{Active: cfg.AIChatLimitActive, Trial: cfg.AIChatLimitTrial, Free: cfg.AIChatLimitFree})
	authUsecase := usecases.NewAuthUsecase(userRepo, companyRepo, tokenService, revocation, subscriptionUsecase, cfg.TenantCurrency)

	reportCache := usecases.NewReportCache()
	reportingUsecase := usecases.NewReportingUsecase(txnRepo, reportCache, clock)
	transactionUsecase := usecases.NewTransactionUsecase(txnRepo, publisher, reportingUsecase)

	notifier := usecases.NewNotifier(companyRepo, userRepo, mailer, appName)
	anomalyLoop := usecases.NewAnomalyLoop(anomalyRepo, notifier, clock)

	rateLimiter := infrastructure.NewLoginRateLimiter(
		cfg.LoginMaxAttempts, time.Duration(cfg.LoginWindowMinutes)*time.Minute,
		cfg.RegisterMaxAttempts, time.Duration(cfg.RegisterWindowMinutes)*time.Minute)

	aiClient := infrastructure.NewAIServiceClient(cfg.AIServiceURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Notifier worker + anomaly result consumer
	notifier.Start(ctx)
	if rabbit != nil {
		go func() {
			if err := rabbit.ConsumeAnomalyResults(ctx, anomalyLoop.HandleMessage); err != nil && ctx.Err() == nil {
				log.Printf("anomaly consumer stopped: %v", err)
			}
		}()
	}

	// Setup HTTP server
	middleware := httpiface.NewMiddleware(tokenService, userRepo, companyRepo, subscriptionUsecase, revocation, cfg.CORSOrigins)
	handler := httpiface.NewHandler(authUsecase, subscriptionUsecase, transactionUsecase, reportingUsecase,
		anomalyRepo, tokenService, rateLimiter, aiClient, cfg.PaymentWebhookSecret)

	r := gin.Default()
	httpiface.SetupRoutes(r, handler, middleware)

	server := &http.Server{Addr: cfg.HTTPAddress(), Handler: r}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server: ", err)
		}
	}()
	log.Printf("%s listening on %s", appName, cfg.HTTPAddress())

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
