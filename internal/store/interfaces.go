package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Storer defines all public methods available on the Store
type Storer interface {
	// Database
	DB() *sqlx.DB
	Ping(ctx context.Context) error

	// Campaign operations
	CreateCampaign(ctx context.Context, params CreateCampaignParams) (Campaign, error)
	GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (Campaign, error)
	ListCampaignsByStatus(ctx context.Context, status string) ([]Campaign, error)
	ListCampaignsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]Campaign, error)
	TransitionCampaignStatus(ctx context.Context, campaignID uuid.UUID, from []string, to string) (Campaign, error)
	ActivateDueCampaigns(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	ReserveDispatchSlot(ctx context.Context, campaignID uuid.UUID, prev *time.Time, now time.Time) (bool, error)

	// Recipient operations
	ReplaceCampaignRecipients(ctx context.Context, params ReplaceCampaignRecipientsParams) (Campaign, error)
	ClaimNextRecipient(ctx context.Context, campaignID uuid.UUID, now time.Time) (CampaignRecipient, error)
	CountPendingRecipients(ctx context.Context, campaignID uuid.UUID) (int, error)
	FinalizeRecipient(ctx context.Context, params FinalizeRecipientParams) (bool, error)
	ExpireStaleClaims(ctx context.Context, campaignID uuid.UUID, cutoff time.Time, message string) (int, error)
	ListRecipients(ctx context.Context, campaignID uuid.UUID, status string, limit, offset int) ([]CampaignRecipient, error)
	GetRecipientStats(ctx context.Context, campaignID uuid.UUID) (RecipientStats, error)

	// Audience operations
	ListAudienceLeads(ctx context.Context, filter AudienceFilter) ([]AudienceLead, error)
}

var _ Storer = (*Store)(nil)
