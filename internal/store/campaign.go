package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Array and time-of-day columns are selected as text so they scan into
// pq arrays and HH:MM strings regardless of the driver's native decoding.
const campaignColumns = `
id, tenant_id, instance_id, name, message_template, media_url, media_type,
filter_tag_ids::text AS filter_tag_ids,
filter_stage_ids::text AS filter_stage_ids,
filter_responsible_ids::text AS filter_responsible_ids,
to_char(schedule_start_time, 'HH24:MI') AS schedule_start_time,
to_char(schedule_end_time, 'HH24:MI') AS schedule_end_time,
schedule_days::text AS schedule_days,
interval_seconds, scheduled_at, status, total_recipients, sent_count, failed_count,
last_sent_at, started_at, completed_at, created_by, created_at, updated_at`

// CreateCampaignParams represents parameters for creating a draft campaign
type CreateCampaignParams struct {
	TenantID             uuid.UUID
	InstanceID           string
	Name                 string
	MessageTemplate      string
	MediaURL             *string
	MediaType            *string
	FilterTagIDs         []string
	FilterStageIDs       []string
	FilterResponsibleIDs []string
	ScheduleStartTime    *string
	ScheduleEndTime      *string
	ScheduleDays         []int64
	IntervalSeconds      int
	ScheduledAt          *time.Time
	CreatedBy            *uuid.UUID
}

const sqlCreateCampaign = `
INSERT INTO campaigns (tenant_id, instance_id, name, message_template, media_url, media_type,
    filter_tag_ids, filter_stage_ids, filter_responsible_ids,
    schedule_start_time, schedule_end_time, schedule_days, interval_seconds, scheduled_at, created_by, status)
VALUES ($1, $2, $3, $4, $5, $6,
    $7::text::uuid[], $8::text::uuid[], $9::text::uuid[],
    $10::time, $11::time, $12::text::int[], $13, $14, $15, 'draft')
RETURNING ` + campaignColumns

// CreateCampaign inserts a new campaign in draft status
func (s *Store) CreateCampaign(ctx context.Context, params CreateCampaignParams) (Campaign, error) {
	var campaign Campaign
	err := s.db.GetContext(ctx, &campaign, sqlCreateCampaign,
		params.TenantID,
		params.InstanceID,
		params.Name,
		params.MessageTemplate,
		params.MediaURL,
		params.MediaType,
		textArray(params.FilterTagIDs),
		textArray(params.FilterStageIDs),
		textArray(params.FilterResponsibleIDs),
		params.ScheduleStartTime,
		params.ScheduleEndTime,
		intArray(params.ScheduleDays),
		params.IntervalSeconds,
		params.ScheduledAt,
		params.CreatedBy)
	if err != nil {
		return Campaign{}, fmt.Errorf("failed to create campaign: %w", err)
	}
	return campaign, nil
}

const sqlGetCampaignByID = `
SELECT ` + campaignColumns + `
FROM campaigns
WHERE id = $1
`

// GetCampaignByID retrieves a campaign by ID
func (s *Store) GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (Campaign, error) {
	var campaign Campaign
	err := s.db.GetContext(ctx, &campaign, sqlGetCampaignByID, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Campaign{}, ErrNotFound
		}
		return Campaign{}, fmt.Errorf("failed to get campaign: %w", err)
	}
	return campaign, nil
}

const sqlListCampaignsByStatus = `
SELECT ` + campaignColumns + `
FROM campaigns
WHERE status = $1
ORDER BY created_at ASC, id ASC
`

// ListCampaignsByStatus retrieves every campaign currently in status
func (s *Store) ListCampaignsByStatus(ctx context.Context, status string) ([]Campaign, error) {
	var campaigns []Campaign
	err := s.db.SelectContext(ctx, &campaigns, sqlListCampaignsByStatus, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns by status: %w", err)
	}
	return campaigns, nil
}

const sqlListCampaignsByTenant = `
SELECT ` + campaignColumns + `
FROM campaigns
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

// ListCampaignsByTenant retrieves a tenant's campaigns with pagination
func (s *Store) ListCampaignsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]Campaign, error) {
	var campaigns []Campaign
	err := s.db.SelectContext(ctx, &campaigns, sqlListCampaignsByTenant, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

const sqlTransitionCampaignStatus = `
UPDATE campaigns
SET status = $3::text,
    started_at = CASE WHEN $3::text = 'running' THEN COALESCE(started_at, $4) ELSE started_at END,
    completed_at = CASE WHEN $3::text IN ('completed', 'canceled') THEN $4 ELSE completed_at END,
    updated_at = $4
WHERE id = $1 AND status = ANY($2::text::text[])
RETURNING ` + campaignColumns

// TransitionCampaignStatus moves a campaign to status `to` only if it is
// currently in one of `from`. ErrStatusConflict means no row matched.
func (s *Store) TransitionCampaignStatus(ctx context.Context, campaignID uuid.UUID, from []string, to string) (Campaign, error) {
	var campaign Campaign
	err := s.db.GetContext(ctx, &campaign, sqlTransitionCampaignStatus,
		campaignID, textArray(from), to, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Campaign{}, ErrStatusConflict
		}
		return Campaign{}, fmt.Errorf("failed to transition campaign status: %w", err)
	}
	return campaign, nil
}

const sqlActivateDueCampaigns = `
UPDATE campaigns
SET status = 'running',
    started_at = COALESCE(started_at, $1),
    updated_at = $1
WHERE status = 'scheduled' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
RETURNING id
`

// ActivateDueCampaigns promotes every scheduled campaign whose scheduled_at has passed
func (s *Store) ActivateDueCampaigns(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, sqlActivateDueCampaigns, now)
	if err != nil {
		return nil, fmt.Errorf("failed to activate due campaigns: %w", err)
	}
	return ids, nil
}

const sqlReserveDispatchSlot = `
UPDATE campaigns
SET last_sent_at = $3, updated_at = $3
WHERE id = $1 AND status = 'running' AND last_sent_at IS NOT DISTINCT FROM $2
`

// ReserveDispatchSlot claims the campaign's next interval slot by moving
// last_sent_at from prev to now. It returns false when another tick already
// moved it or the campaign left running.
func (s *Store) ReserveDispatchSlot(ctx context.Context, campaignID uuid.UUID, prev *time.Time, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, sqlReserveDispatchSlot, campaignID, prev, now)
	if err != nil {
		return false, fmt.Errorf("failed to reserve dispatch slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func textArray(values []string) interface{} {
	if values == nil {
		values = []string{}
	}
	return pq.Array(values)
}

func intArray(values []int64) interface{} {
	if values == nil {
		values = []int64{}
	}
	return pq.Array(values)
}
