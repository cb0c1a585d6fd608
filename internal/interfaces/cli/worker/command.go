package worker

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"keygate/internal/application/notification"
	orderUC "keygate/internal/application/order/usecases"
	sessionUC "keygate/internal/application/session/usecases"
	"keygate/internal/infrastructure/config"
	"keygate/internal/infrastructure/database"
	"keygate/internal/infrastructure/email"
	"keygate/internal/infrastructure/payment"
	"keygate/internal/infrastructure/repository"
	"keygate/internal/infrastructure/scheduler"
	"keygate/internal/shared/db"
	"keygate/internal/shared/logger"
)

var env string

// reconcileInterval is deliberately long; reconciliation is a safety
// net behind webhooks, not the primary confirmation path.
const reconcileInterval = 6 * time.Hour

const emailRetryInterval = time.Hour

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Start the background worker",
		Long:  `Run the periodic jobs: stale session sweep, email retry queue, and order reconciliation.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, env == "development"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.NewLogger()
	log.Infow("starting worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	gormDB := database.Get()
	orderRepo := repository.NewOrderRepository(gormDB)
	keyRepo := repository.NewAccessKeyRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	retryRepo := repository.NewEmailRetryRepository(gormDB)
	txManager := db.NewTransactionManager(gormDB)

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

	heartbeatTimeout := time.Duration(cfg.Session.HeartbeatTimeoutSeconds) * time.Second
	sweepInterval := time.Duration(cfg.Session.SweepIntervalMinutes) * time.Minute

	reclaimUC := sessionUC.NewReclaimStaleUseCase(sessionRepo, heartbeatTimeout, log)
	reconcileUC := orderUC.NewReconcileOrdersUseCase(orderRepo, gw, issuer, log)

	manager, err := scheduler.NewManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := manager.RegisterSessionSweep(sessionUC.NewReclaimStaleJob(reclaimUC), sweepInterval); err != nil {
		return fmt.Errorf("failed to register session sweep: %w", err)
	}
	if err := manager.RegisterEmailRetry(notification.NewRetryJob(notifier, cfg.Email.AdminAddress), emailRetryInterval); err != nil {
		return fmt.Errorf("failed to register email retry: %w", err)
	}
	if err := manager.RegisterOrderReconcile(orderUC.NewReconcileJob(reconcileUC), reconcileInterval); err != nil {
		return fmt.Errorf("failed to register order reconcile: %w", err)
	}

	manager.Start()
	log.Infow("worker started",
		"sweep_interval", sweepInterval.String(),
		"email_retry_interval", emailRetryInterval.String(),
		"reconcile_interval", reconcileInterval.String(),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down worker")

	if err := manager.Stop(); err != nil {
		log.Errorw("failed to stop scheduler", "error", err)
		return err
	}

	log.Infow("worker exited gracefully")
	return nil
}
