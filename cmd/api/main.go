package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"b2bmarket/internal/adapter/api"
	"b2bmarket/internal/adapter/api/handler"
	apimiddleware "b2bmarket/internal/adapter/api/middleware"
	"b2bmarket/internal/adapter/api/router"
	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/service"
	"b2bmarket/internal/infrastructure/firebase"
	"b2bmarket/internal/infrastructure/jwt"
	"b2bmarket/internal/infrastructure/rabbitmq"
	"b2bmarket/internal/infrastructure/ratelimit"
	"b2bmarket/internal/infrastructure/redislock"
	"b2bmarket/internal/infrastructure/websocket"
	"b2bmarket/internal/usecase"
	"b2bmarket/pkg/config"
	"b2bmarket/pkg/logger"
	"b2bmarket/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer st.close()

	healthChecks := map[string]handler.HealthCheck{"storage": st.health}

	// Token verification
	var verifier apimiddleware.TokenVerifier
	switch cfg.Auth.Provider {
	case "jwt":
		tokens := jwt.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
		verifier = tokens
		handler.SetupDevTokenHandler(tokens)
	default:
		firebaseApp, err := firebase.NewApp(ctx, cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient, err := firebase.NewAuthClient(ctx, firebaseApp)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		verifier = authClient
	}

	// Sweep coordination across replicas
	var sweepLock usecase.SweepLock = usecase.NewLocalLock()
	if cfg.Redis.Addr != "" {
		redisClient := redislock.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()
		sweepLock = redislock.NewLocker(redisClient, "b2bmarket:lock:")
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		logger.Info("expiry sweep coordinated through redis at %s", cfg.Redis.Addr)
	}

	// Event fan-out: websocket always, broker when configured
	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	publishers := usecase.MultiPublisher{wsManager}
	if cfg.RabbitMQ.URL != "" {
		rabbitPublisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbitPublisher.Close()
		publishers = append(publishers, rabbitPublisher)
		logger.Info("publishing deal events to exchange %s", cfg.RabbitMQ.Exchange)
	}

	fees, err := service.NewFeePolicy(cfg.Deal.FeeRateBasisPoints)
	if err != nil {
		log.Fatalf("Invalid fee policy: %v", err)
	}
	payments := service.NewPaymentMethodRegistry()

	messageLimiter := ratelimit.NewRateLimiter(cfg.RateLimit.MessagesPerMinute)
	messageLimiter.StartCleanupRoutine(ctx)
	requestLimiter := ratelimit.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)
	requestLimiter.StartCleanupRoutine(ctx)

	expiryUseCase := usecase.NewExpiryUseCase(st.deal, st.rooms, usecase.ExpiryConfig{
		Policy: entity.ExpiryPolicy(cfg.Deal.ExpiryPolicy),
		Batch:  cfg.Deal.SweepBatch,
	}, sweepLock, publishers)
	userUseCase := usecase.NewUserUseCase(st.users, cfg.IsAdmin)
	rfqUseCase := usecase.NewRFQUseCase(st.deal, st.rfqs)
	quoteUseCase := usecase.NewQuoteUseCase(st.deal, st.quotes, st.rfqs, fees, cfg.Deal.ExpiryWindow, publishers)
	chatRoomUseCase := usecase.NewChatRoomUseCase(
		st.deal,
		st.rooms,
		st.rfqs,
		st.quotes,
		st.users,
		st.orders,
		payments,
		expiryUseCase,
		messageLimiter,
		publishers,
	)
	creditUseCase := usecase.NewCreditUseCase(st.deal, st.credit, publishers)

	handler.Setup(userUseCase, rfqUseCase, quoteUseCase, chatRoomUseCase, creditUseCase, expiryUseCase)
	handler.SetupHealthHandler(healthChecks)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.Server.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.AllowedOrigins}))
	} else {
		e.Use(middleware.CORS())
	}
	e.Use(apimiddleware.RateLimit(requestLimiter))

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)
	adminMiddleware := apimiddleware.NewAdminMiddleware(st.users)

	router.Setup(e, authMiddleware, adminMiddleware)
	router.SetupDevRouter(e, cfg.Environment)
	router.SetupWebSocketRouter(e, handler.NewWebSocketHandler(wsManager, cfg.Server.AllowedOrigins), authMiddleware)

	expiryUseCase.StartExpiryJob(ctx, cfg.Deal.SweepInterval)

	go func() {
		logger.Info("Starting server on port %s...", cfg.Server.Port)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
}
