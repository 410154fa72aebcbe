package repository

import (
	"context"
	"time"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
)

// EventStatsReader queries aggregated behavioral counts from the columnar
// analytics store. Read-only; the telemetry pipeline owns writes.
type EventStatsReader interface {
	// UserEventStats returns, for each event type the user produced since
	// startDate, the total count and first/last occurrence timestamps.
	UserEventStats(ctx context.Context, userID, orgID string, startDate time.Time) (models.EventStatsMap, error)
}

// OrgRepository lists organizations for the periodic recalculation loop.
type OrgRepository interface {
	// ActiveOrgIDs returns the identifiers of organizations with active
	// campaigns.
	ActiveOrgIDs(ctx context.Context) ([]string, error)
}
