package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	entitlementUC "keygate/internal/application/entitlement/usecases"
	"keygate/internal/application/notification"
	orderUC "keygate/internal/application/order/usecases"
	sessionUC "keygate/internal/application/session/usecases"
	"keygate/internal/infrastructure/auth"
	"keygate/internal/infrastructure/config"
	"keygate/internal/infrastructure/email"
	"keygate/internal/infrastructure/payment"
	"keygate/internal/infrastructure/ratelimit"
	"keygate/internal/infrastructure/repository"
	"keygate/internal/interfaces/http/handlers"
	"keygate/internal/interfaces/http/middleware"
	"keygate/internal/interfaces/http/routes"
	"keygate/internal/shared/db"
	"keygate/internal/shared/logger"
)

// Container wires repositories, use cases, and handlers together and owns
// the resulting gin engine. One container per process.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	orderHandler   *handlers.OrderHandler
	accessHandler  *handlers.AccessHandler
	sessionHandler *handlers.SessionHandler
	adminHandler   *handlers.AdminHandler
	healthHandler  *handlers.HealthHandler

	adminAuth     *middleware.AdminAuthMiddleware
	ipRateLimiter *middleware.IPRateLimiter
}

// NewContainer builds the full dependency graph. redisClient may be nil,
// in which case rate limiting is disabled.
func NewContainer(database *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Container {
	engine := gin.New()

	orderRepo := repository.NewOrderRepository(database)
	keyRepo := repository.NewAccessKeyRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	retryRepo := repository.NewEmailRetryRepository(database)
	txManager := db.NewTransactionManager(database)

	emailService := email.NewSMTPEmailService(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		DownloadURL: cfg.Email.DownloadURL,
	})
	notifier := notification.NewNotifier(emailService, retryRepo, log)

	gw := payment.NewStripeGateway(payment.StripeGatewayConfig{
		APIKey:           cfg.Gateway.APIKey,
		WebhookSecret:    cfg.Gateway.WebhookSecret,
		Endpoint:         cfg.Gateway.Endpoint,
		ToleranceSeconds: cfg.Gateway.ToleranceSeconds,
	}, log)

	issuer := orderUC.NewKeyIssuer(orderRepo, keyRepo, txManager, notifier, cfg.Email.AdminAddress, log)

	createOrderUC := orderUC.NewCreateOrderUseCase(orderRepo, notifier, cfg.Email.AdminAddress, log)
	confirmPaymentUC := orderUC.NewConfirmPaymentUseCase(orderRepo, issuer, log)
	approveOrderUC := orderUC.NewApproveOrderUseCase(orderRepo, issuer, log)
	rejectOrderUC := orderUC.NewRejectOrderUseCase(orderRepo, log)
	reconcileOrdersUC := orderUC.NewReconcileOrdersUseCase(orderRepo, gw, issuer, log)
	listOrdersUC := orderUC.NewListOrdersUseCase(orderRepo)

	gracePeriod := time.Duration(cfg.Entitlement.GracePeriodHours) * time.Hour
	validateKeyUC := entitlementUC.NewValidateKeyUseCase(keyRepo, log)
	evaluateAccessUC := entitlementUC.NewEvaluateAccessUseCase(keyRepo, sessionRepo, gracePeriod, log)
	setPreferredModelUC := entitlementUC.NewSetPreferredModelUseCase(keyRepo, log)
	listKeysUC := entitlementUC.NewListKeysUseCase(keyRepo)
	createKeyUC := entitlementUC.NewCreateKeyUseCase(keyRepo, log)
	revokeKeyUC := entitlementUC.NewRevokeKeyUseCase(keyRepo, sessionRepo, log)

	startSessionUC := sessionUC.NewStartSessionUseCase(keyRepo, sessionRepo, log)
	heartbeatSessionUC := sessionUC.NewHeartbeatSessionUseCase(sessionRepo)
	endSessionUC := sessionUC.NewEndSessionUseCase(sessionRepo)

	hasher := auth.NewBcryptPasswordHasher(0)
	tokens := auth.NewAdminTokenService(cfg.Admin.JWTSecret, cfg.Admin.TokenExpMinutes)

	var (
		keyLimiter    ratelimit.RateLimiter
		ipRateLimiter *middleware.IPRateLimiter
	)
	if redisClient != nil {
		keyLimiter = ratelimit.NewRedisRateLimiter(redisClient)
		ipRateLimiter = middleware.NewIPRateLimiter(redisClient, 60, time.Minute)
	}

	return &Container{
		engine: engine,
		db:     database,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,

		orderHandler: handlers.NewOrderHandler(createOrderUC, confirmPaymentUC, gw, log),
		accessHandler: handlers.NewAccessHandler(
			validateKeyUC, evaluateAccessUC, setPreferredModelUC,
			keyRepo, keyLimiter, cfg.RateLimit.RequestsPerHour, log,
		),
		sessionHandler: handlers.NewSessionHandler(startSessionUC, heartbeatSessionUC, endSessionUC, log),
		adminHandler: handlers.NewAdminHandler(
			hasher, tokens, cfg.Admin.PasswordHash,
			listOrdersUC, approveOrderUC, rejectOrderUC, reconcileOrdersUC,
			listKeysUC, createKeyUC, revokeKeyUC, log,
		),
		healthHandler: handlers.NewHealthHandler(database),

		adminAuth:     middleware.NewAdminAuthMiddleware(tokens),
		ipRateLimiter: ipRateLimiter,
	}
}

// SetupRoutes installs global middleware and registers every route group.
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.Logger(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	routes.SetupPublicRoutes(c.engine, &routes.PublicRouteConfig{
		OrderHandler:   c.orderHandler,
		AccessHandler:  c.accessHandler,
		SessionHandler: c.sessionHandler,
		HealthHandler:  c.healthHandler,
		IPRateLimiter:  c.ipRateLimiter,
	})

	routes.SetupAdminRoutes(c.engine, &routes.AdminRouteConfig{
		AdminHandler:   c.adminHandler,
		AuthMiddleware: c.adminAuth,
	})
}

// Engine returns the configured gin engine.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Shutdown releases container-owned resources.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Errorw("failed to close redis client", "error", err)
			return err
		}
	}
	return nil
}
