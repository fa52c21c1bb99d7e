package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AudienceFilter selects the leads of a tenant a campaign targets.
// Empty slices mean no filter on that dimension.
type AudienceFilter struct {
	TenantID       uuid.UUID
	TagIDs         []string
	StageIDs       []string
	ResponsibleIDs []string
}

// Tag filter is a logical OR: a lead matches when it carries any selected tag.
const sqlListAudienceLeads = `
SELECT l.id, l.name, l.company, l.phone, l.email
FROM leads l
WHERE l.tenant_id = $1
  AND l.status = 'active'
  AND (cardinality($2::text::uuid[]) = 0 OR l.stage_id = ANY($2::text::uuid[]))
  AND (cardinality($3::text::uuid[]) = 0 OR l.responsible_id = ANY($3::text::uuid[]))
  AND (cardinality($4::text::uuid[]) = 0 OR EXISTS (
      SELECT 1 FROM lead_tags lt
      WHERE lt.lead_id = l.id AND lt.tag_id = ANY($4::text::uuid[])
  ))
ORDER BY l.name ASC NULLS LAST, l.id ASC
`

// ListAudienceLeads returns the active leads matching filter in a stable order
func (s *Store) ListAudienceLeads(ctx context.Context, filter AudienceFilter) ([]AudienceLead, error) {
	var leads []AudienceLead
	err := s.db.SelectContext(ctx, &leads, sqlListAudienceLeads,
		filter.TenantID,
		textArray(filter.StageIDs),
		textArray(filter.ResponsibleIDs),
		textArray(filter.TagIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list audience leads: %w", err)
	}
	return leads, nil
}
