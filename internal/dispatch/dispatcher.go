// Package dispatch advances running campaigns by at most one recipient per
// campaign per tick. All state lives in the store, so any number of ticks
// may run, crash or overlap without sending a recipient twice.
package dispatch

//go:generate go run go.uber.org/mock/mockgen@latest -source=dispatcher.go -destination=mocks_test.go -package=dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"crm-server/internal/audience"
	"crm-server/internal/campaign/lifecycle"
	"crm-server/internal/observability"
	"crm-server/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrGateway = errors.New("gateway send failed")
	ErrStorage = errors.New("storage failure")
)

const (
	invalidPhoneMessage   = "invalid phone number"
	abandonedClaimMessage = "dispatch attempt abandoned"
	finalizeTimeout       = 10 * time.Second
)

// DispatchStore defines the database operations required by the Dispatcher
type DispatchStore interface {
	ActivateDueCampaigns(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	ListCampaignsByStatus(ctx context.Context, status string) ([]store.Campaign, error)
	ReserveDispatchSlot(ctx context.Context, campaignID uuid.UUID, prev *time.Time, now time.Time) (bool, error)
	ClaimNextRecipient(ctx context.Context, campaignID uuid.UUID, now time.Time) (store.CampaignRecipient, error)
	CountPendingRecipients(ctx context.Context, campaignID uuid.UUID) (int, error)
	FinalizeRecipient(ctx context.Context, params store.FinalizeRecipientParams) (bool, error)
	ExpireStaleClaims(ctx context.Context, campaignID uuid.UUID, cutoff time.Time, message string) (int, error)
	TransitionCampaignStatus(ctx context.Context, campaignID uuid.UUID, from []string, to string) (store.Campaign, error)
}

// Media is an attachment reference sent alongside a caption.
type Media struct {
	Kind string
	URL  string
}

// MessageGateway is the outbound messaging provider. instance is the
// campaign's sending identity, phone is digits only.
type MessageGateway interface {
	SendText(ctx context.Context, instance, phone, text string) (string, error)
	SendMedia(ctx context.Context, instance, phone string, media Media, caption string) (string, error)
}

// Locker guards a campaign step across processes. release must be called
// once when acquired is true.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), acquired bool, err error)
}

// CompletionNotifier is told about campaigns the dispatcher completed.
type CompletionNotifier interface {
	CampaignCompleted(ctx context.Context, campaign store.Campaign) error
}

// Config tunes a Dispatcher
type Config struct {
	Location        *time.Location
	Concurrency     int
	ClaimTTL        time.Duration
	CampaignTimeout time.Duration
}

// TickResult summarizes one tick.
type TickResult struct {
	Processed int `json:"processed"`
	Activated int `json:"activated"`
	Completed int `json:"completed"`
}

type Dispatcher struct {
	store    DispatchStore
	gateway  MessageGateway
	locker   Locker
	notifier CompletionNotifier
	logger   *observability.Logger
	cfg      Config
	now      func() time.Time
}

func New(store DispatchStore, gateway MessageGateway, logger *observability.Logger, cfg Config) *Dispatcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = 10 * time.Minute
	}
	return &Dispatcher{
		store:   store,
		gateway: gateway,
		logger:  logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithLocker adds a cross-process per-campaign lock.
func (d *Dispatcher) WithLocker(l Locker) *Dispatcher {
	d.locker = l
	return d
}

// WithNotifier sets the hook called after a campaign completes.
func (d *Dispatcher) WithNotifier(n CompletionNotifier) *Dispatcher {
	d.notifier = n
	return d
}

// WithClock overrides the dispatcher's time source.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

type stepOutcome struct {
	processed int
	completed bool
}

// Tick activates due scheduled campaigns and then gives every running
// campaign one chance to send. A failing campaign never stops the others;
// only failing to list running campaigns fails the tick.
func (d *Dispatcher) Tick(ctx context.Context) (TickResult, error) {
	now := d.now()
	ctx = observability.WithFields(ctx, observability.Field{Key: "tick_at", Value: now})

	var result TickResult

	activated, err := d.store.ActivateDueCampaigns(ctx, now)
	if err != nil {
		d.logger.Error(ctx, "failed to activate due campaigns", err)
	}
	result.Activated = len(activated)

	campaigns, err := d.store.ListCampaignsByStatus(ctx, string(lifecycle.StatusRunning))
	if err != nil {
		d.logger.Error(ctx, "failed to list running campaigns", err)
		return result, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	var processed, completed atomic.Int64
	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)

	for _, campaign := range campaigns {
		g.Go(func() error {
			campaignCtx := observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaign.ID})
			outcome, err := d.runCampaign(campaignCtx, campaign, now)
			if err != nil {
				d.logger.Error(campaignCtx, "campaign step failed", err)
			}
			processed.Add(int64(outcome.processed))
			if outcome.completed {
				completed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Processed = int(processed.Load())
	result.Completed = int(completed.Load())

	d.logger.Metrics(ctx,
		observability.MetricField{Key: "event", Value: "dispatch_tick"},
		observability.MetricField{Key: "running_campaigns", Value: len(campaigns)},
		observability.MetricField{Key: "processed", Value: result.Processed},
		observability.MetricField{Key: "activated", Value: result.Activated},
		observability.MetricField{Key: "completed", Value: result.Completed},
	)
	return result, nil
}

func (d *Dispatcher) runCampaign(ctx context.Context, campaign store.Campaign, now time.Time) (stepOutcome, error) {
	if d.cfg.CampaignTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.CampaignTimeout)
		defer cancel()
	}

	var outcome stepOutcome

	expired, err := d.store.ExpireStaleClaims(ctx, campaign.ID, now.Add(-d.cfg.ClaimTTL), abandonedClaimMessage)
	if err != nil {
		return outcome, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if expired > 0 {
		d.logger.Warn(ctx, fmt.Sprintf("expired %d abandoned recipient claims", expired))
		outcome.processed += expired
	}

	decision := Evaluate(campaign, now, d.cfg.Location)
	if !decision.Eligible {
		d.logger.Debug(observability.WithFields(ctx, observability.Field{Key: "gate", Value: decision.Reason}), "campaign not eligible this tick")
		return outcome, nil
	}

	if d.locker != nil {
		release, acquired, err := d.locker.TryLock(ctx, "dispatch:campaign:"+campaign.ID.String())
		if err != nil {
			return outcome, fmt.Errorf("failed to acquire campaign lock: %w", err)
		}
		if !acquired {
			d.logger.Debug(ctx, "campaign locked by another dispatcher")
			return outcome, nil
		}
		defer release()
	}

	reserved, err := d.store.ReserveDispatchSlot(ctx, campaign.ID, campaign.LastSentAt, now)
	if err != nil {
		return outcome, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !reserved {
		d.logger.Debug(ctx, "dispatch slot taken by a concurrent tick")
		return outcome, nil
	}

	recipient, err := d.store.ClaimNextRecipient(ctx, campaign.ID, now)
	if errors.Is(err, store.ErrNotFound) {
		done, err := d.completeIfDrained(ctx, campaign)
		outcome.completed = done
		return outcome, err
	}
	if err != nil {
		return outcome, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "recipient_id", Value: recipient.ID})

	status, errMsg := d.deliver(ctx, campaign, recipient)

	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	changed, err := d.store.FinalizeRecipient(finalizeCtx, store.FinalizeRecipientParams{
		CampaignID:   campaign.ID,
		RecipientID:  recipient.ID,
		Status:       status,
		ErrorMessage: errMsg,
		Now:          now,
	})
	if err != nil {
		return outcome, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !changed {
		d.logger.Warn(ctx, "recipient was finalized by another process")
		return outcome, nil
	}

	outcome.processed++
	return outcome, nil
}

// deliver makes the single gateway attempt for recipient and returns its
// terminal status with an optional error detail.
func (d *Dispatcher) deliver(ctx context.Context, campaign store.Campaign, recipient store.CampaignRecipient) (string, *string) {
	if !audience.IsValidPhone(recipient.Phone) {
		msg := invalidPhoneMessage
		d.logger.Warn(ctx, "skipping recipient with invalid phone")
		return store.RecipientStatusSkipped, &msg
	}
	phone := audience.NormalizePhone(recipient.Phone)

	var (
		messageID string
		err       error
	)
	if campaign.HasMedia() {
		messageID, err = d.gateway.SendMedia(ctx, campaign.InstanceID, phone,
			Media{Kind: *campaign.MediaType, URL: *campaign.MediaURL}, recipient.Message)
	} else {
		messageID, err = d.gateway.SendText(ctx, campaign.InstanceID, phone, recipient.Message)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrGateway, err)
		d.logger.InfoWithError(ctx, "recipient send failed", err)
		msg := err.Error()
		return store.RecipientStatusFailed, &msg
	}

	d.logger.Info(observability.WithFields(ctx, observability.Field{Key: "message_id", Value: messageID}), "recipient sent")
	return store.RecipientStatusSent, nil
}

// completeIfDrained completes the campaign when no recipient is pending.
// Pending rows that are merely claimed belong to an in-flight tick.
func (d *Dispatcher) completeIfDrained(ctx context.Context, campaign store.Campaign) (bool, error) {
	pending, err := d.store.CountPendingRecipients(ctx, campaign.ID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if pending > 0 {
		return false, nil
	}

	target, err := lifecycle.Transition(lifecycle.Status(campaign.Status), lifecycle.EventComplete)
	if err != nil {
		return false, err
	}
	completed, err := d.store.TransitionCampaignStatus(ctx, campaign.ID, lifecycle.SourceStrings(lifecycle.EventComplete), string(target))
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	d.logger.Info(ctx, "campaign completed")

	if d.notifier != nil {
		if err := d.notifier.CampaignCompleted(ctx, completed); err != nil {
			d.logger.Error(ctx, "failed to send completion notification", err)
		}
	}
	return true, nil
}
