package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/adapter/cache"
	momo "github.com/evbs/battery-swap-backend/internal/adapter/external/payment"
	"github.com/evbs/battery-swap-backend/internal/adapter/http/fiber/handlers"
	"github.com/evbs/battery-swap-backend/internal/adapter/http/fiber/middleware"
	"github.com/evbs/battery-swap-backend/internal/adapter/queue"
	"github.com/evbs/battery-swap-backend/internal/adapter/storage/postgres"
	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/observability/telemetry"
	"github.com/evbs/battery-swap-backend/internal/ports"
	"github.com/evbs/battery-swap-backend/internal/service/auth"
	"github.com/evbs/battery-swap-backend/internal/service/booking"
	"github.com/evbs/battery-swap-backend/internal/service/email"
	"github.com/evbs/battery-swap-backend/internal/service/payment"
	"github.com/evbs/battery-swap-backend/internal/service/reconciler"
	"github.com/evbs/battery-swap-backend/internal/service/station"
	"github.com/evbs/battery-swap-backend/internal/service/subscription"
	"github.com/evbs/battery-swap-backend/pkg/config"
)

const (
	serviceName    = "battery-swap-backend"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting EV Battery Swap Backend",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to access database pool", zap.Error(err))
	}

	// 5. Initialize Cache (Redis with in-memory fallback)
	var appCache ports.Cache
	if cfg.Redis.Enabled {
		appCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to local cache", zap.Error(err))
			appCache = cache.NewLocalCache(time.Minute, logger)
		}
	} else {
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 6. Initialize Message Queue
	messageQueue, err := queue.New(cfg.Queue.Driver, cfg.Queue.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer messageQueue.Close()

	// 7. Initialize Repositories
	userRepo := postgres.NewUserRepository(db, logger)
	stationRepo := postgres.NewStationRepository(db, logger)
	batteryRepo := postgres.NewBatteryRepository(db, logger)
	batteryTypeRepo := postgres.NewBatteryTypeRepository(db, logger)
	bookingRepo := postgres.NewBookingRepository(db, logger)
	packageRepo := postgres.NewServicePackageRepository(db, logger)
	subscriptionRepo := postgres.NewSubscriptionRepository(db, logger)
	paymentRepo := postgres.NewPaymentRepository(db, logger)
	vehicleRepo := postgres.NewVehicleRepository(db, logger)
	unitOfWork := postgres.NewUnitOfWork(db)

	// 8. Initialize Services
	authService := auth.NewService(userRepo, cfg.JWT.Secret, nil, logger)

	subscriptionService := subscription.NewService(subscriptionRepo, packageRepo, userRepo, unitOfWork, nil, logger)

	momoClient := momo.NewMoMoClient(momo.MoMoConfig{
		PartnerCode: cfg.MoMo.PartnerCode,
		AccessKey:   cfg.MoMo.AccessKey,
		SecretKey:   cfg.MoMo.SecretKey,
		Endpoint:    cfg.MoMo.Endpoint,
		IpnURL:      cfg.MoMo.IPNURL,
		RequestType: cfg.MoMo.RequestType,
	}, logger)

	paymentService := payment.NewService(momoClient, subscriptionService, packageRepo, subscriptionRepo, paymentRepo, nil, logger)

	bookingService := booking.NewService(bookingRepo, batteryRepo, vehicleRepo, stationRepo, subscriptionRepo, unitOfWork, booking.DefaultHoldWindow, nil, logger)

	stationService := station.NewService(stationRepo, batteryRepo, batteryTypeRepo, packageRepo, vehicleRepo, appCache, logger)

	emailService, err := email.NewService(&email.Config{
		Provider:       cfg.Email.Provider,
		FromEmail:      cfg.Email.From,
		FromName:       cfg.Email.FromName,
		SendGridAPIKey: cfg.Email.APIKey,
		SMTPHost:       cfg.Email.SMTPHost,
		SMTPPort:       cfg.Email.SMTPPort,
		SMTPUsername:   cfg.Email.SMTPUser,
		SMTPPassword:   cfg.Email.SMTPPass,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service", zap.Error(err))
	}

	// 9. Start Notification Consumer
	if err := email.StartCancellationConsumer(messageQueue, reconciler.CancellationSubject, emailService, logger); err != nil {
		logger.Fatal("Failed to subscribe to cancellation events", zap.Error(err))
	}

	// 10. Start Reservation Expiry Reconciler
	if cfg.Reconciler.Enabled {
		reconcilerService := reconciler.NewService(batteryRepo, bookingRepo, subscriptionService, messageQueue, nil, logger)
		runner := reconciler.NewRunner(reconcilerService, cfg.Reconciler.Interval, logger)
		if err := runner.Start(); err != nil {
			logger.Fatal("Failed to start expiry reconciler", zap.Error(err))
		}
		defer runner.Stop()
	}

	// 11. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ErrorHandler: middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))

	// Health Check Endpoints
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if err := sqlDB.Ping(); err != nil {
			return c.Status(503).SendString("Database not ready")
		}
		if err := appCache.Ping(); err != nil {
			return c.Status(503).SendString("Cache not ready")
		}
		return c.SendString("Ready")
	})

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		app.Get("/metrics", func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Auth routes (public)
	authHandler := handlers.NewAuthHandler(authService, logger)
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/register", authHandler.Register)

	// Payment callback (public, signature-authenticated)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	v1.Post("/payments/callback", paymentHandler.Callback)

	// Protected routes
	protected := v1.Group("", middleware.AuthRequired(authService))
	adminOnly := middleware.RequireRole(domain.UserRoleAdmin)
	staffOrAdmin := middleware.RequireRole(domain.UserRoleAdmin, domain.UserRoleStaff)

	protected.Get("/auth/me", authHandler.Me)

	// Catalog routes
	stationHandler := handlers.NewStationHandler(stationService, logger)
	protected.Get("/stations", stationHandler.ListStations)
	protected.Get("/stations/:id", stationHandler.GetStation)
	protected.Post("/stations", adminOnly, stationHandler.SaveStation)
	protected.Delete("/stations/:id", adminOnly, stationHandler.DeleteStation)
	protected.Get("/batteries", staffOrAdmin, stationHandler.ListBatteries)
	protected.Post("/batteries", staffOrAdmin, stationHandler.SaveBattery)
	protected.Get("/battery-types", stationHandler.ListBatteryTypes)
	protected.Post("/battery-types", adminOnly, stationHandler.SaveBatteryType)
	protected.Get("/packages", stationHandler.ListPackages)
	protected.Get("/packages/:id", stationHandler.GetPackage)
	protected.Post("/packages", adminOnly, stationHandler.SavePackage)
	protected.Delete("/packages/:id", adminOnly, stationHandler.DeletePackage)
	protected.Get("/vehicles", stationHandler.ListMyVehicles)
	protected.Post("/vehicles", stationHandler.SaveVehicle)

	// Subscription routes
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, logger)
	protected.Get("/subscriptions/me", subscriptionHandler.GetMine)
	protected.Get("/subscriptions", adminOnly, subscriptionHandler.GetAll)
	protected.Post("/subscriptions/evaluate-upgrade", subscriptionHandler.EvaluateUpgrade)
	protected.Post("/subscriptions/evaluate-downgrade", subscriptionHandler.EvaluateDowngrade)
	protected.Post("/subscriptions/downgrade", subscriptionHandler.Downgrade)
	protected.Delete("/subscriptions/:id", adminOnly, subscriptionHandler.Cancel)

	// Payment routes
	protected.Post("/payments", paymentHandler.Create)
	protected.Get("/subscriptions/:id/payments", paymentHandler.GetBySubscription)

	// Booking routes
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	protected.Post("/bookings", bookingHandler.Create)
	protected.Get("/bookings", bookingHandler.GetMine)
	protected.Get("/bookings/:id", bookingHandler.Get)
	protected.Post("/bookings/:id/cancel", bookingHandler.Cancel)

	// 12. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
