package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-server/internal/audience"
	"crm-server/internal/campaign/lifecycle"
	"crm-server/internal/observability"
	"crm-server/internal/store"

	"github.com/google/uuid"
)

// CampaignStore defines the database operations required by CampaignProcessor
type CampaignStore interface {
	CreateCampaign(ctx context.Context, params store.CreateCampaignParams) (store.Campaign, error)
	GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.Campaign, error)
	ListCampaignsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]store.Campaign, error)
	TransitionCampaignStatus(ctx context.Context, campaignID uuid.UUID, from []string, to string) (store.Campaign, error)
	ListRecipients(ctx context.Context, campaignID uuid.UUID, status string, limit, offset int) ([]store.CampaignRecipient, error)
	GetRecipientStats(ctx context.Context, campaignID uuid.UUID) (store.RecipientStats, error)
}

// Preparer freezes a draft campaign's audience
type Preparer interface {
	Prepare(ctx context.Context, campaignID uuid.UUID) (audience.PrepareResult, error)
}

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrInvalidState     = errors.New("operation not allowed in current campaign status")
	ErrValidation       = errors.New("invalid campaign")
	ErrStorage          = errors.New("storage failure")
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type CampaignProcessor struct {
	store    CampaignStore
	preparer Preparer
	logger   *observability.Logger
}

func New(store CampaignStore, preparer Preparer, logger *observability.Logger) CampaignProcessor {
	return CampaignProcessor{
		store:    store,
		preparer: preparer,
		logger:   logger,
	}
}

// CreateCampaignParams represents parameters for creating a campaign
type CreateCampaignParams struct {
	InstanceID           string
	Name                 string
	MessageTemplate      string
	MediaURL             *string
	MediaType            *string
	FilterTagIDs         []uuid.UUID
	FilterStageIDs       []uuid.UUID
	FilterResponsibleIDs []uuid.UUID
	ScheduleStartTime    *string
	ScheduleEndTime      *string
	ScheduleDays         []int
	IntervalSeconds      int
	ScheduledAt          *time.Time
}

// CampaignDetails is a campaign plus its recipient breakdown
type CampaignDetails struct {
	store.Campaign
	Stats store.RecipientStats `json:"stats"`
}

func (p *CampaignProcessor) validate(params CreateCampaignParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if strings.TrimSpace(params.MessageTemplate) == "" {
		return fmt.Errorf("message template is required: %w", ErrValidation)
	}
	if strings.TrimSpace(params.InstanceID) == "" {
		return fmt.Errorf("instance id is required: %w", ErrValidation)
	}
	if (params.MediaURL == nil) != (params.MediaType == nil) {
		return fmt.Errorf("media url and media type must be set together: %w", ErrValidation)
	}
	if params.MediaType != nil && !store.IsValidMediaType(*params.MediaType) {
		return fmt.Errorf("unsupported media type %q: %w", *params.MediaType, ErrValidation)
	}
	for _, tod := range []*string{params.ScheduleStartTime, params.ScheduleEndTime} {
		if tod == nil {
			continue
		}
		if _, err := time.Parse("15:04", *tod); err != nil {
			return fmt.Errorf("time of day %q must be HH:MM: %w", *tod, ErrValidation)
		}
	}
	for _, d := range params.ScheduleDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("schedule day %d out of range 0-6: %w", d, ErrValidation)
		}
	}
	if params.IntervalSeconds < 0 {
		return fmt.Errorf("interval seconds must not be negative: %w", ErrValidation)
	}
	return nil
}

// CreateCampaign creates a draft campaign for the tenant
func (p *CampaignProcessor) CreateCampaign(ctx context.Context, tenantID uuid.UUID, createdBy *uuid.UUID, params CreateCampaignParams) (store.Campaign, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "tenant_id", Value: tenantID})

	if err := p.validate(params); err != nil {
		return store.Campaign{}, err
	}

	days := make([]int64, len(params.ScheduleDays))
	for i, d := range params.ScheduleDays {
		days[i] = int64(d)
	}

	campaign, err := p.store.CreateCampaign(ctx, store.CreateCampaignParams{
		TenantID:             tenantID,
		InstanceID:           params.InstanceID,
		Name:                 params.Name,
		MessageTemplate:      params.MessageTemplate,
		MediaURL:             params.MediaURL,
		MediaType:            params.MediaType,
		FilterTagIDs:         uuidStrings(params.FilterTagIDs),
		FilterStageIDs:       uuidStrings(params.FilterStageIDs),
		FilterResponsibleIDs: uuidStrings(params.FilterResponsibleIDs),
		ScheduleStartTime:    params.ScheduleStartTime,
		ScheduleEndTime:      params.ScheduleEndTime,
		ScheduleDays:         days,
		IntervalSeconds:      params.IntervalSeconds,
		ScheduledAt:          params.ScheduledAt,
		CreatedBy:            createdBy,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to create campaign", err)
		return store.Campaign{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	p.logger.Info(observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaign.ID}), "campaign created")
	return campaign, nil
}

// loadOwned fetches a campaign and hides campaigns of other tenants
func (p *CampaignProcessor) loadOwned(ctx context.Context, tenantID, campaignID uuid.UUID) (store.Campaign, error) {
	campaign, err := p.store.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Campaign{}, ErrCampaignNotFound
		}
		p.logger.Error(ctx, "failed to get campaign", err)
		return store.Campaign{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if campaign.TenantID != tenantID {
		return store.Campaign{}, ErrCampaignNotFound
	}
	return campaign, nil
}

// GetCampaign returns a campaign with its recipient status breakdown
func (p *CampaignProcessor) GetCampaign(ctx context.Context, tenantID, campaignID uuid.UUID) (CampaignDetails, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID})

	campaign, err := p.loadOwned(ctx, tenantID, campaignID)
	if err != nil {
		return CampaignDetails{}, err
	}

	stats, err := p.store.GetRecipientStats(ctx, campaignID)
	if err != nil {
		p.logger.Error(ctx, "failed to get recipient stats", err)
		return CampaignDetails{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return CampaignDetails{Campaign: campaign, Stats: stats}, nil
}

// ListCampaigns returns a page of the tenant's campaigns, newest first
func (p *CampaignProcessor) ListCampaigns(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]store.Campaign, error) {
	limit, offset = clampPage(limit, offset)
	campaigns, err := p.store.ListCampaignsByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		p.logger.Error(ctx, "failed to list campaigns", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return campaigns, nil
}

// ListRecipients returns a page of a campaign's recipients in dispatch order
func (p *CampaignProcessor) ListRecipients(ctx context.Context, tenantID, campaignID uuid.UUID, status string, limit, offset int) ([]store.CampaignRecipient, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID})

	switch status {
	case "", store.RecipientStatusPending, store.RecipientStatusSent, store.RecipientStatusFailed, store.RecipientStatusSkipped:
	default:
		return nil, fmt.Errorf("unknown recipient status %q: %w", status, ErrValidation)
	}

	if _, err := p.loadOwned(ctx, tenantID, campaignID); err != nil {
		return nil, err
	}

	limit, offset = clampPage(limit, offset)
	recipients, err := p.store.ListRecipients(ctx, campaignID, status, limit, offset)
	if err != nil {
		p.logger.Error(ctx, "failed to list recipients", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return recipients, nil
}

// Prepare freezes the audience of a draft campaign owned by the tenant
func (p *CampaignProcessor) Prepare(ctx context.Context, tenantID, campaignID uuid.UUID) (audience.PrepareResult, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID})

	if _, err := p.loadOwned(ctx, tenantID, campaignID); err != nil {
		return audience.PrepareResult{}, err
	}
	return p.preparer.Prepare(ctx, campaignID)
}

// ApplyEvent fires an operator event (start, pause, resume, cancel)
func (p *CampaignProcessor) ApplyEvent(ctx context.Context, tenantID, campaignID uuid.UUID, action string) (store.Campaign, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "campaign_id", Value: campaignID},
		observability.Field{Key: "event", Value: action},
	)

	event, err := lifecycle.ParseOperatorEvent(action)
	if err != nil {
		return store.Campaign{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	campaign, err := p.loadOwned(ctx, tenantID, campaignID)
	if err != nil {
		return store.Campaign{}, err
	}

	to, err := lifecycle.Transition(lifecycle.Status(campaign.Status), event)
	if err != nil {
		return store.Campaign{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	updated, err := p.store.TransitionCampaignStatus(ctx, campaignID, lifecycle.SourceStrings(event), string(to))
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return store.Campaign{}, fmt.Errorf("campaign status changed concurrently: %w", ErrInvalidState)
		}
		p.logger.Error(ctx, "failed to transition campaign", err)
		return store.Campaign{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	p.logger.Info(ctx, fmt.Sprintf("campaign %s -> %s", campaign.Status, updated.Status))
	return updated, nil
}

// DuplicateCampaign copies a campaign's definition into a new draft. It is
// the way to retry failed recipients, which are terminal in their campaign.
func (p *CampaignProcessor) DuplicateCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, createdBy *uuid.UUID) (store.Campaign, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID})

	source, err := p.loadOwned(ctx, tenantID, campaignID)
	if err != nil {
		return store.Campaign{}, err
	}

	days := make([]int64, len(source.ScheduleDays))
	copy(days, source.ScheduleDays)

	duplicate, err := p.store.CreateCampaign(ctx, store.CreateCampaignParams{
		TenantID:             source.TenantID,
		InstanceID:           source.InstanceID,
		Name:                 source.Name + " (copy)",
		MessageTemplate:      source.MessageTemplate,
		MediaURL:             source.MediaURL,
		MediaType:            source.MediaType,
		FilterTagIDs:         append([]string(nil), source.FilterTagIDs...),
		FilterStageIDs:       append([]string(nil), source.FilterStageIDs...),
		FilterResponsibleIDs: append([]string(nil), source.FilterResponsibleIDs...),
		ScheduleStartTime:    source.ScheduleStartTime,
		ScheduleEndTime:      source.ScheduleEndTime,
		ScheduleDays:         days,
		IntervalSeconds:      source.IntervalSeconds,
		CreatedBy:            createdBy,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to duplicate campaign", err)
		return store.Campaign{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return duplicate, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
