package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/config"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/email"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/handler"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs/inmemory"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/middleware"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/receipt"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/repository/postgres"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/repository/storage"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/schedule"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/service"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// @title SpendSmart API
// @version 1.0
// @description Personal finance API: accounts, transactions, recurring transactions and budget alerts.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Auth0 access token, prefixed with "Bearer "
// @securityDefinitions.apikey InternalKey
// @in header
// @name X-Internal-Key
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	ledger := postgres.NewLedgerStore(pool)
	userRepo := postgres.NewUserRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)

	hub := websocket.NewHub()
	location := cfg.Scheduler.Location()

	// Collaborators
	var sender email.Sender
	if cfg.Email.ResendAPIKey != "" {
		sender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set, budget alert emails will only be logged")
		sender = email.NewLogSender(log.Logger)
	}

	var scanner receipt.Scanner
	if cfg.Gemini.APIKey != "" {
		geminiScanner, err := receipt.NewGeminiScanner(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create receipt scanner")
		}
		scanner = geminiScanner
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, receipt scanning disabled")
	}

	var receiptStore storage.ReceiptStore
	if cfg.S3.Bucket != "" {
		s3Store, err := storage.NewS3ReceiptStore(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 receipt store")
		}
		receiptStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	}

	// Work-item queue
	throttle := jobs.NewKeyedThrottle(cfg.Jobs.RecurringThrottlePerMinute)
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(inmemory.Config{
		Workers:        cfg.Jobs.Workers,
		MaxAttempts:    cfg.Jobs.MaxAttempts,
		RetryBaseDelay: cfg.Jobs.RetryBaseDelay,
		Throttle:       throttle,
	}, jobStore, log.Logger)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	accountService := service.NewAccountService(ledger, accountRepo, transactionRepo, hub)
	transactionService := service.NewTransactionService(ledger, transactionRepo, accountRepo, hub)
	receiptService := service.NewReceiptService(scanner, receiptStore)

	processor := service.NewRecurringProcessor(ledger, transactionRepo, hub, log.Logger)
	scheduler := service.NewRecurringScheduler(transactionRepo, queue, log.Logger)
	monitor := service.NewBudgetAlertMonitor(budgetRepo, transactionRepo, sender, hub, log.Logger, service.BudgetAlertConfig{
		Threshold: decimal.NewFromFloat(cfg.Budget.AlertThreshold),
		Location:  location,
	})
	budgetService := service.NewBudgetService(budgetRepo, accountRepo, monitor)

	recurringWorker := service.NewCronWorker(scheduler.Sweep, log.Logger, service.CronWorkerConfig{
		Name:     "recurring_sweep",
		Schedule: mustParseCron("RECURRING_SWEEP_CRON", cfg.Scheduler.RecurringSweepCron),
		Location: location,
	})
	budgetWorker := service.NewCronWorker(monitor.Sweep, log.Logger, service.CronWorkerConfig{
		Name:     "budget_alert_sweep",
		Schedule: mustParseCron("BUDGET_ALERT_CRON", cfg.Scheduler.BudgetAlertCron),
		Location: location,
	})

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if err := queue.Start(workerCtx, processor.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job queue")
	}
	if cfg.Scheduler.Enabled {
		recurringWorker.Start(workerCtx)
		budgetWorker.Start(workerCtx)
	} else {
		log.Info().Msg("Scheduler disabled, sweeps only run through the internal endpoints")
	}

	// Initialize auth
	// One Auth0 validator (and JWKS cache) serves both REST and the websocket
	jwtValidator, err := middleware.NewAuth0Validator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Auth0 validator")
	}
	authMiddleware := middleware.NewAuthMiddlewareWithValidator(jwtValidator, authService)
	wsValidator := websocket.NewAuth0JWTValidator(jwtValidator, authService)
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.TransactionRateLimitPerHour)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Receipt uploads are multipart; leave headroom over the image limit
	e.Use(echomiddleware.BodyLimit("6M"))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, handler.RouteConfig{
		Auth:           authMiddleware,
		RateLimiter:    rateLimiter,
		InternalAPIKey: cfg.InternalAPIKey,
	}, handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Account:     handler.NewAccountHandler(accountService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Budget:      handler.NewBudgetHandler(budgetService),
		Receipt:     handler.NewReceiptHandler(receiptService),
		Internal:    handler.NewInternalHandler(recurringWorker, budgetWorker, queue, jobStore),
		WebSocket:   handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins),
	})

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop triggering sweeps, then let in-flight work items finish
	recurringWorker.Stop()
	budgetWorker.Stop()
	if err := queue.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("Job queue did not drain before shutdown")
	}
	cancelWorkers()
	throttle.Stop()
	rateLimiter.Stop()

	log.Info().Msg("Server exited")
}

func mustParseCron(name, expr string) *schedule.Schedule {
	s, err := schedule.Parse(expr)
	if err != nil {
		log.Fatal().Err(err).Str("setting", name).Str("expr", expr).Msg("Invalid cron expression")
	}
	return s
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
