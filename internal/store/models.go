package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Campaign is a bulk outbound messaging job: template, audience filter and schedule.
type Campaign struct {
	ID         uuid.UUID `db:"id" json:"id"`
	TenantID   uuid.UUID `db:"tenant_id" json:"tenant_id"`
	InstanceID string    `db:"instance_id" json:"instance_id"`

	Name            string  `db:"name" json:"name"`
	MessageTemplate string  `db:"message_template" json:"message_template"`
	MediaURL        *string `db:"media_url" json:"media_url,omitempty"`
	MediaType       *string `db:"media_type" json:"media_type,omitempty"`

	FilterTagIDs         pq.StringArray `db:"filter_tag_ids" json:"filter_tag_ids"`
	FilterStageIDs       pq.StringArray `db:"filter_stage_ids" json:"filter_stage_ids"`
	FilterResponsibleIDs pq.StringArray `db:"filter_responsible_ids" json:"filter_responsible_ids"`

	// Times of day in HH:MM, interpreted in the dispatch time zone.
	ScheduleStartTime *string       `db:"schedule_start_time" json:"schedule_start_time,omitempty"`
	ScheduleEndTime   *string       `db:"schedule_end_time" json:"schedule_end_time,omitempty"`
	ScheduleDays      pq.Int64Array `db:"schedule_days" json:"schedule_days"`
	IntervalSeconds   int           `db:"interval_seconds" json:"interval_seconds"`
	ScheduledAt       *time.Time    `db:"scheduled_at" json:"scheduled_at,omitempty"`

	Status string `db:"status" json:"status"`

	TotalRecipients int        `db:"total_recipients" json:"total_recipients"`
	SentCount       int        `db:"sent_count" json:"sent_count"`
	FailedCount     int        `db:"failed_count" json:"failed_count"`
	LastSentAt      *time.Time `db:"last_sent_at" json:"last_sent_at,omitempty"`

	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	CreatedBy *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// HasMedia reports whether the campaign carries an attachment.
func (c Campaign) HasMedia() bool {
	return c.MediaURL != nil && *c.MediaURL != "" && c.MediaType != nil && *c.MediaType != ""
}

// CampaignRecipient is one frozen (contact, rendered message) pair of a campaign
type CampaignRecipient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	CampaignID uuid.UUID  `db:"campaign_id" json:"campaign_id"`
	LeadID     *uuid.UUID `db:"lead_id" json:"lead_id,omitempty"`

	Phone    string `db:"phone" json:"phone"`
	Message  string `db:"message" json:"message"`
	Position int    `db:"position" json:"position"`

	Status string `db:"status" json:"status"`

	ClaimedAt    *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
	SentAt       *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AudienceLead is the projection of a CRM lead used to build recipients
type AudienceLead struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Name    *string   `db:"name" json:"name,omitempty"`
	Company *string   `db:"company" json:"company,omitempty"`
	Phone   *string   `db:"phone" json:"phone,omitempty"`
	Email   *string   `db:"email" json:"email,omitempty"`
}

// RecipientStats is the per-status breakdown of a campaign's recipients
type RecipientStats struct {
	Total   int `db:"total" json:"total"`
	Pending int `db:"pending" json:"pending"`
	Sent    int `db:"sent" json:"sent"`
	Failed  int `db:"failed" json:"failed"`
	Skipped int `db:"skipped" json:"skipped"`
}
