// Package audience turns a draft campaign's filter into its frozen list of
// recipients with pre-rendered messages.
package audience

//go:generate go run go.uber.org/mock/mockgen@latest -source=resolver.go -destination=mocks_test.go -package=audience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-server/internal/campaign/lifecycle"
	"crm-server/internal/observability"
	"crm-server/internal/store"

	"github.com/google/uuid"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrInvalidState     = errors.New("campaign is not in draft status")
	ErrStorage          = errors.New("storage failure")
)

// AudienceStore defines the database operations required by the Resolver
type AudienceStore interface {
	GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.Campaign, error)
	ListAudienceLeads(ctx context.Context, filter store.AudienceFilter) ([]store.AudienceLead, error)
	ReplaceCampaignRecipients(ctx context.Context, params store.ReplaceCampaignRecipientsParams) (store.Campaign, error)
}

// PrepareResult summarizes a preparation pass.
type PrepareResult struct {
	TotalRecipients int    `json:"total_recipients"`
	Skipped         int    `json:"skipped"`
	Status          string `json:"status"`
}

type Resolver struct {
	store  AudienceStore
	logger *observability.Logger
	now    func() time.Time
}

func New(store AudienceStore, logger *observability.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the resolver's time source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Prepare resolves the campaign audience, renders every message and
// replaces the campaign's recipients in one transaction, moving it out of
// draft into scheduled or running.
func (r *Resolver) Prepare(ctx context.Context, campaignID uuid.UUID) (PrepareResult, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID})

	campaign, err := r.store.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return PrepareResult{}, ErrCampaignNotFound
		}
		r.logger.Error(ctx, "failed to load campaign", err)
		return PrepareResult{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if lifecycle.Status(campaign.Status) != lifecycle.StatusDraft {
		return PrepareResult{}, fmt.Errorf("campaign is %s: %w", campaign.Status, ErrInvalidState)
	}

	leads, err := r.store.ListAudienceLeads(ctx, store.AudienceFilter{
		TenantID:       campaign.TenantID,
		TagIDs:         campaign.FilterTagIDs,
		StageIDs:       campaign.FilterStageIDs,
		ResponsibleIDs: campaign.FilterResponsibleIDs,
	})
	if err != nil {
		r.logger.Error(ctx, "failed to query audience", err)
		return PrepareResult{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	recipients, skipped := BuildRecipients(campaign, leads)

	now := r.now()
	event := lifecycle.EventPrepareImmediate
	if campaign.ScheduledAt != nil && campaign.ScheduledAt.After(now) {
		event = lifecycle.EventPrepareScheduled
	}
	next, err := lifecycle.Transition(lifecycle.StatusDraft, event)
	if err != nil {
		return PrepareResult{}, err
	}

	updated, err := r.store.ReplaceCampaignRecipients(ctx, store.ReplaceCampaignRecipientsParams{
		CampaignID: campaign.ID,
		Recipients: recipients,
		NextStatus: string(next),
		Now:        now,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return PrepareResult{}, ErrCampaignNotFound
		case errors.Is(err, store.ErrStatusConflict):
			return PrepareResult{}, fmt.Errorf("campaign left draft during preparation: %w", ErrInvalidState)
		}
		r.logger.Error(ctx, "failed to persist recipients", err)
		return PrepareResult{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	r.logger.Metrics(ctx,
		observability.MetricField{Key: "event", Value: "campaign_prepared"},
		observability.MetricField{Key: "total_recipients", Value: updated.TotalRecipients},
		observability.MetricField{Key: "skipped", Value: skipped},
		observability.MetricField{Key: "status", Value: updated.Status},
	)

	return PrepareResult{
		TotalRecipients: updated.TotalRecipients,
		Skipped:         skipped,
		Status:          updated.Status,
	}, nil
}

// BuildRecipients validates, de-duplicates and renders leads in order.
// Positions start at 0 and follow the lead order. A lead is skipped when its
// phone has too few digits, or when its normalized phone or lead id was
// already taken by an earlier lead.
func BuildRecipients(campaign store.Campaign, leads []store.AudienceLead) ([]store.NewRecipient, int) {
	recipients := make([]store.NewRecipient, 0, len(leads))
	seenLeads := make(map[uuid.UUID]struct{}, len(leads))
	seenPhones := make(map[string]struct{}, len(leads))
	skipped := 0

	for _, lead := range leads {
		if _, dup := seenLeads[lead.ID]; dup {
			continue
		}
		seenLeads[lead.ID] = struct{}{}

		phone := NormalizePhone(deref(lead.Phone))
		if len(phone) < MinPhoneDigits {
			skipped++
			continue
		}
		if _, dup := seenPhones[phone]; dup {
			skipped++
			continue
		}
		seenPhones[phone] = struct{}{}

		leadID := lead.ID
		recipients = append(recipients, store.NewRecipient{
			CampaignID: campaign.ID,
			LeadID:     &leadID,
			Phone:      phone,
			Message: RenderMessage(campaign.MessageTemplate, Contact{
				Name:    deref(lead.Name),
				Company: deref(lead.Company),
				Phone:   phone,
				Email:   deref(lead.Email),
			}),
			Position: len(recipients),
		})
	}
	return recipients, skipped
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
