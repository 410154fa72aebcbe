package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/repository"
	apperrors "github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/errors"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// OrgRepository lists organizations with running campaigns for the periodic
// recalculation loop.
type OrgRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

var _ repository.OrgRepository = (*OrgRepository)(nil)

// NewOrgRepository creates an OrgRepository on the shared pool.
func NewOrgRepository(pool *pgxpool.Pool, log logger.Logger) *OrgRepository {
	return &OrgRepository{pool: pool, logger: log.WithComponent("OrgRepository")}
}

// ActiveOrgIDs returns the identifiers of organizations that have at least
// one active campaign.
func (r *OrgRepository) ActiveOrgIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT org_id FROM campaigns WHERE status = 'active'`)
	if err != nil {
		return nil, apperrors.ErrInternal.WithCause(err)
	}
	defer rows.Close()

	var orgIDs []string
	for rows.Next() {
		var orgID string
		if err := rows.Scan(&orgID); err != nil {
			return nil, apperrors.ErrInternal.WithCause(err)
		}
		orgIDs = append(orgIDs, orgID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrInternal.WithCause(err)
	}
	return orgIDs, nil
}
