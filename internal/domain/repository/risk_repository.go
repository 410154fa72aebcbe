package repository

import (
	"context"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
)

// RiskRepository is the access contract for the key-value risk store. It is
// the single source of truth for "current" scores; all entries are TTL-bound,
// the store is a working set, not a system of record.
type RiskRepository interface {
	// SaveUserRisk overwrites the user's current risk score (24h TTL) and
	// updates the org-wide ranked set. Last write wins.
	SaveUserRisk(ctx context.Context, score *models.RiskScore) error

	// GetUserRisk retrieves the user's current risk score. Returns
	// errors.ErrNotFound when absent or expired.
	GetUserRisk(ctx context.Context, userID string) (*models.RiskScore, error)

	// SaveCohortRisk overwrites the cohort snapshot (24h TTL).
	SaveCohortRisk(ctx context.Context, cohort *models.CohortRisk) error

	// GetCohortRisk retrieves the cohort snapshot. Returns errors.ErrNotFound
	// when absent or expired.
	GetCohortRisk(ctx context.Context, cohortID string) (*models.CohortRisk, error)

	// AppendTrendHistory pushes a cohort average onto the bounded trend
	// history, evicting the oldest entry beyond the cap.
	AppendTrendHistory(ctx context.Context, cohortID string, average float64) error

	// TrendHistory returns the recorded cohort averages, oldest first.
	TrendHistory(ctx context.Context, cohortID string) ([]float64, error)

	// HighRiskUsers returns user IDs in the org whose score falls within
	// [min,max], highest score first.
	HighRiskUsers(ctx context.Context, orgID string, min, max float64) ([]string, error)

	// TopUsers returns up to limit user IDs from the org ranking, highest
	// score first.
	TopUsers(ctx context.Context, orgID string, limit int) ([]string, error)

	// SetEnhancedMonitoring flags a user for enhanced monitoring with the
	// given payload and a 7-day TTL.
	SetEnhancedMonitoring(ctx context.Context, userID string, payload interface{}) error
}
