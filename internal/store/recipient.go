package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const recipientColumns = `
id, campaign_id, lead_id, phone, message, position, status, claimed_at, sent_at, error_message, created_at, updated_at`

// NewRecipient is one row produced by the audience resolver
type NewRecipient struct {
	CampaignID uuid.UUID  `db:"campaign_id"`
	LeadID     *uuid.UUID `db:"lead_id"`
	Phone      string     `db:"phone"`
	Message    string     `db:"message"`
	Position   int        `db:"position"`
}

// ReplaceCampaignRecipientsParams represents parameters for freezing a campaign audience
type ReplaceCampaignRecipientsParams struct {
	CampaignID uuid.UUID
	Recipients []NewRecipient
	// NextStatus is the status the campaign leaves draft into.
	NextStatus string
	Now        time.Time
}

const (
	sqlLockCampaignStatus = `
SELECT status FROM campaigns WHERE id = $1 FOR UPDATE
`
	sqlDeleteCampaignRecipients = `
DELETE FROM campaign_recipients WHERE campaign_id = $1
`
	sqlInsertCampaignRecipients = `
INSERT INTO campaign_recipients (campaign_id, lead_id, phone, message, position, status)
VALUES (:campaign_id, :lead_id, :phone, :message, :position, 'pending')
`
	sqlFreezeCampaign = `
UPDATE campaigns
SET total_recipients = $2,
    sent_count = 0,
    failed_count = 0,
    last_sent_at = NULL,
    status = $3::text,
    started_at = CASE WHEN $3::text = 'running' THEN $4 ELSE NULL END,
    completed_at = NULL,
    updated_at = $4
WHERE id = $1 AND status = 'draft'
RETURNING ` + campaignColumns
)

// ReplaceCampaignRecipients atomically swaps the recipient set of a draft
// campaign and moves it out of draft. Any failure rolls everything back.
func (s *Store) ReplaceCampaignRecipients(ctx context.Context, params ReplaceCampaignRecipientsParams) (Campaign, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Campaign{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	if err := tx.GetContext(ctx, &status, sqlLockCampaignStatus, params.CampaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Campaign{}, ErrNotFound
		}
		return Campaign{}, fmt.Errorf("failed to lock campaign: %w", err)
	}
	if status != "draft" {
		return Campaign{}, ErrStatusConflict
	}

	if _, err := tx.ExecContext(ctx, sqlDeleteCampaignRecipients, params.CampaignID); err != nil {
		return Campaign{}, fmt.Errorf("failed to delete campaign recipients: %w", err)
	}

	for start := 0; start < len(params.Recipients); start += RecipientInsertBatchSize {
		end := start + RecipientInsertBatchSize
		if end > len(params.Recipients) {
			end = len(params.Recipients)
		}
		if _, err := tx.NamedExecContext(ctx, sqlInsertCampaignRecipients, params.Recipients[start:end]); err != nil {
			return Campaign{}, fmt.Errorf("failed to insert campaign recipients: %w", err)
		}
	}

	var campaign Campaign
	err = tx.GetContext(ctx, &campaign, sqlFreezeCampaign,
		params.CampaignID, len(params.Recipients), params.NextStatus, params.Now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Campaign{}, ErrStatusConflict
		}
		return Campaign{}, fmt.Errorf("failed to update campaign totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Campaign{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return campaign, nil
}

const sqlClaimNextRecipient = `
UPDATE campaign_recipients
SET claimed_at = $2, updated_at = $2
WHERE id = (
    SELECT id FROM campaign_recipients
    WHERE campaign_id = $1 AND status = 'pending' AND claimed_at IS NULL
    ORDER BY position ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
AND status = 'pending' AND claimed_at IS NULL
RETURNING ` + recipientColumns

// ClaimNextRecipient atomically marks the lowest-position unclaimed pending
// recipient as claimed. ErrNotFound means nothing is left to claim.
func (s *Store) ClaimNextRecipient(ctx context.Context, campaignID uuid.UUID, now time.Time) (CampaignRecipient, error) {
	var recipient CampaignRecipient
	err := s.db.GetContext(ctx, &recipient, sqlClaimNextRecipient, campaignID, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CampaignRecipient{}, ErrNotFound
		}
		return CampaignRecipient{}, fmt.Errorf("failed to claim recipient: %w", err)
	}
	return recipient, nil
}

const sqlCountPendingRecipients = `
SELECT COUNT(*)
FROM campaign_recipients
WHERE campaign_id = $1 AND status = 'pending'
`

// CountPendingRecipients counts pending recipients, claimed or not
func (s *Store) CountPendingRecipients(ctx context.Context, campaignID uuid.UUID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, sqlCountPendingRecipients, campaignID)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending recipients: %w", err)
	}
	return count, nil
}

// FinalizeRecipientParams represents the outcome of one dispatch attempt
type FinalizeRecipientParams struct {
	CampaignID   uuid.UUID
	RecipientID  uuid.UUID
	Status       string
	ErrorMessage *string
	Now          time.Time
}

const (
	sqlFinalizeRecipient = `
UPDATE campaign_recipients
SET status = $3::text,
    sent_at = CASE WHEN $3::text = 'sent' THEN $5 ELSE sent_at END,
    error_message = $4,
    updated_at = $5
WHERE id = $1 AND campaign_id = $2 AND status = 'pending'
`
	sqlIncrementSentCount = `
UPDATE campaigns SET sent_count = sent_count + 1, updated_at = $2 WHERE id = $1
`
	sqlIncrementFailedCount = `
UPDATE campaigns SET failed_count = failed_count + 1, updated_at = $2 WHERE id = $1
`
)

// FinalizeRecipient records a dispatch outcome and bumps the matching
// campaign counter in one transaction. Skipped counts as failed. It returns
// false if the recipient was no longer pending.
func (s *Store) FinalizeRecipient(ctx context.Context, params FinalizeRecipientParams) (bool, error) {
	var errMsg *string
	if params.ErrorMessage != nil {
		truncated := TruncateErrorMessage(*params.ErrorMessage)
		errMsg = &truncated
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, sqlFinalizeRecipient,
		params.RecipientID, params.CampaignID, params.Status, errMsg, params.Now)
	if err != nil {
		return false, fmt.Errorf("failed to update recipient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	counterSQL := sqlIncrementFailedCount
	if params.Status == RecipientStatusSent {
		counterSQL = sqlIncrementSentCount
	}
	if _, err := tx.ExecContext(ctx, counterSQL, params.CampaignID, params.Now); err != nil {
		return false, fmt.Errorf("failed to update campaign counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

const (
	sqlExpireStaleClaims = `
UPDATE campaign_recipients
SET status = 'failed', error_message = $3, updated_at = $4
WHERE campaign_id = $1 AND status = 'pending' AND claimed_at IS NOT NULL AND claimed_at < $2
`
	sqlAddFailedCount = `
UPDATE campaigns SET failed_count = failed_count + $2, updated_at = $3 WHERE id = $1
`
)

// ExpireStaleClaims fails recipients whose claim is older than cutoff, i.e.
// whose dispatching tick died between claim and finalize.
func (s *Store) ExpireStaleClaims(ctx context.Context, campaignID uuid.UUID, cutoff time.Time, message string) (int, error) {
	now := time.Now().UTC()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, sqlExpireStaleClaims, campaignID, cutoff, TruncateErrorMessage(message), now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale claims: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx, sqlAddFailedCount, campaignID, rows, now); err != nil {
		return 0, fmt.Errorf("failed to update campaign counters: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(rows), nil
}

const sqlListRecipients = `
SELECT ` + recipientColumns + `
FROM campaign_recipients
WHERE campaign_id = $1 AND ($2::text = '' OR status = $2::text)
ORDER BY position ASC
LIMIT $3 OFFSET $4
`

// ListRecipients retrieves a page of a campaign's recipients, optionally filtered by status
func (s *Store) ListRecipients(ctx context.Context, campaignID uuid.UUID, status string, limit, offset int) ([]CampaignRecipient, error) {
	var recipients []CampaignRecipient
	err := s.db.SelectContext(ctx, &recipients, sqlListRecipients, campaignID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return recipients, nil
}

const sqlGetRecipientStats = `
SELECT
    COUNT(*) AS total,
    COUNT(*) FILTER (WHERE status = 'pending') AS pending,
    COUNT(*) FILTER (WHERE status = 'sent') AS sent,
    COUNT(*) FILTER (WHERE status = 'failed') AS failed,
    COUNT(*) FILTER (WHERE status = 'skipped') AS skipped
FROM campaign_recipients
WHERE campaign_id = $1
`

// GetRecipientStats returns the per-status recipient breakdown of a campaign
func (s *Store) GetRecipientStats(ctx context.Context, campaignID uuid.UUID) (RecipientStats, error) {
	var stats RecipientStats
	err := s.db.GetContext(ctx, &stats, sqlGetRecipientStats, campaignID)
	if err != nil {
		return RecipientStats{}, fmt.Errorf("failed to get recipient stats: %w", err)
	}
	return stats, nil
}
