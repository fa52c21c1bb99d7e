package bootstrap

import (
	"context"
	"fmt"

	"crm-server/internal/audience"
	authHandler "crm-server/internal/auth/handler"
	authProcessor "crm-server/internal/auth/processor"
	campaignHandler "crm-server/internal/campaign/handler"
	campaignProcessor "crm-server/internal/campaign/processor"
	"crm-server/internal/clients/mail"
	redisClient "crm-server/internal/clients/redis"
	twilioClient "crm-server/internal/clients/twilio"
	"crm-server/internal/clients/whatsapp"
	"crm-server/internal/config"
	"crm-server/internal/dispatch"
	dispatchHandler "crm-server/internal/dispatch/handler"
	"crm-server/internal/distlock"
	"crm-server/internal/email"
	"crm-server/internal/observability"
	"crm-server/internal/store"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  store.Store
	Logger *observability.Logger

	// Dispatch engine
	Dispatcher *dispatch.Dispatcher

	// Handlers
	AuthHandler     authHandler.Handler
	CampaignHandler campaignHandler.Handler
	DispatchHandler dispatchHandler.Handler

	// Redis client (for cleanup); nil when disabled
	Redis *redisClient.Client
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Initialize database store
	var err error
	deps.Store, err = store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize auth processor and handler
	authProc := authProcessor.New(cfg.Auth.JWTSecret, logger)
	deps.AuthHandler = authHandler.New(authProc, logger)

	// Initialize audience resolver, campaign processor and handler
	resolver := audience.New(&deps.Store, logger)
	campaignProc := campaignProcessor.New(&deps.Store, resolver, logger)
	deps.CampaignHandler = campaignHandler.New(&campaignProc, logger)

	// Initialize dispatcher
	gateway, err := newGateway(cfg.Gateway, logger)
	if err != nil {
		deps.Cleanup()
		return nil, err
	}

	deps.Dispatcher = dispatch.New(&deps.Store, gateway, logger, dispatch.Config{
		Location:        cfg.Dispatch.Location(),
		Concurrency:     cfg.Dispatch.Concurrency,
		ClaimTTL:        cfg.Dispatch.ClaimTTL,
		CampaignTimeout: cfg.Dispatch.CampaignTimeout,
	})

	deps.Redis, err = redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		deps.Cleanup()
		return nil, err
	}
	if deps.Redis != nil {
		locker, err := distlock.New(deps.Redis.GetClient(), cfg.Dispatch.LockTTL, logger)
		if err != nil {
			deps.Cleanup()
			return nil, fmt.Errorf("failed to create dispatch lock: %w", err)
		}
		deps.Dispatcher.WithLocker(locker)
	}

	if cfg.Mail.MailEnabled() {
		mailClient, err := mail.NewResendClient(cfg.Mail.ResendAPIKey, logger)
		if err != nil {
			deps.Cleanup()
			return nil, fmt.Errorf("failed to create resend client: %w", err)
		}
		notifier, err := email.New(mailClient, cfg.Mail.Sender, cfg.Mail.NotifyTo, cfg.Dispatch.Location(), logger)
		if err != nil {
			deps.Cleanup()
			return nil, fmt.Errorf("failed to create email service: %w", err)
		}
		deps.Dispatcher.WithNotifier(notifier)
	} else {
		logger.Info(ctx, "Completion emails disabled, mail settings incomplete")
	}

	deps.DispatchHandler = dispatchHandler.New(deps.Dispatcher, logger)

	return deps, nil
}

// newGateway builds the messaging gateway selected by GATEWAY_PROVIDER
func newGateway(cfg config.GatewayConfig, logger *observability.Logger) (dispatch.MessageGateway, error) {
	switch cfg.Provider {
	case config.GatewayProviderWhatsApp:
		return whatsapp.NewClient(cfg.WhatsAppBaseURL, cfg.WhatsAppAPIKey, cfg.Timeout, logger), nil
	case config.GatewayProviderTwilio:
		return twilioClient.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioDefaultFrom, logger), nil
	default:
		return nil, fmt.Errorf("unknown gateway provider %q: %w", cfg.Provider, config.ErrInvalidConfig)
	}
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	ctx := context.Background()
	if err := d.Redis.Close(); err != nil {
		d.Logger.Error(ctx, "failed to close redis", err)
	}
	if err := d.Store.Close(); err != nil {
		d.Logger.Error(ctx, "failed to close database", err)
	}
}
