package store

import (
	"testing"
	"time"

	"crm-server/internal/observability"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// newMockStore returns a Store backed by go-sqlmock. Expectations are
// verified when the test finishes.
func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		db.Close()
	})

	return NewWithDB(sqlx.NewDb(db, "pgx"), observability.NewLogger()), mock
}

var campaignColumnNames = []string{
	"id", "tenant_id", "instance_id", "name", "message_template", "media_url", "media_type",
	"filter_tag_ids", "filter_stage_ids", "filter_responsible_ids",
	"schedule_start_time", "schedule_end_time", "schedule_days",
	"interval_seconds", "scheduled_at", "status", "total_recipients", "sent_count", "failed_count",
	"last_sent_at", "started_at", "completed_at", "created_by", "created_at", "updated_at",
}

func campaignRow(id uuid.UUID, status string) *sqlmock.Rows {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(campaignColumnNames).AddRow(
		id.String(), uuid.New().String(), "instance-1", "Spring promo", "Hi {name}", nil, nil,
		"{}", "{}", "{}",
		"09:00", "18:00", "{1,2,3,4,5}",
		int64(30), nil, status, int64(0), int64(0), int64(0),
		nil, nil, nil, nil, now, now,
	)
}

var recipientColumnNames = []string{
	"id", "campaign_id", "lead_id", "phone", "message", "position", "status",
	"claimed_at", "sent_at", "error_message", "created_at", "updated_at",
}
