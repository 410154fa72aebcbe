package redis

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/repository"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
	apperrors "github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/errors"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// Key layout. Scores and snapshots are TTL-bound JSON; the org ranking is a
// sorted set and the trend history a bounded list.
const (
	keyUserRisk           = "user_risk:"
	keyOrgRiskScores      = "org_risk_scores:"
	keyCohortRisk         = "cohort_risk:"
	keyCohortRiskHistory  = "cohort_risk_history:"
	keyEnhancedMonitoring = "enhanced_monitoring:"
)

// RiskStore is the Redis-backed implementation of repository.RiskRepository.
// Writes are per-key atomic; concurrent writers for the same user resolve by
// last write wins.
type RiskStore struct {
	rdb    redis.UniversalClient
	logger logger.Logger
}

var _ repository.RiskRepository = (*RiskStore)(nil)

// NewRiskStore creates a RiskStore on top of an established connection.
func NewRiskStore(conn *Connection, log logger.Logger) *RiskStore {
	return &RiskStore{rdb: conn.Client(), logger: log.WithComponent("RiskStore")}
}

// SaveUserRisk overwrites the user's score with a 24h TTL and updates the
// org-wide ranked set.
func (s *RiskStore) SaveUserRisk(ctx context.Context, score *models.RiskScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return apperrors.ErrRiskStore.WithCause(err)
	}
	if err := s.rdb.Set(ctx, keyUserRisk+score.UserID, data, constants.RiskScoreTTL).Err(); err != nil {
		return apperrors.ErrRiskStore.WithCause(err)
	}
	if err := s.rdb.ZAdd(ctx, keyOrgRiskScores+score.OrgID, redis.Z{
		Score:  score.OverallScore,
		Member: score.UserID,
	}).Err(); err != nil {
		return apperrors.ErrRiskStore.WithCause(err)
	}
	return nil
}

// GetUserRisk retrieves the user's current score.
func (s *RiskStore) GetUserRisk(ctx context.Context, userID string) (*models.RiskScore, error) {
	val, err := s.rdb.Get(ctx, keyUserRisk+userID).Result()
	if err == redis.Nil {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}
	var score models.RiskScore
	if err := json.Unmarshal([]byte(val), &score); err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}
	return &score, nil
}

// SaveCohortRisk overwrites the cohort snapshot with a 24h TTL.
func (s *RiskStore) SaveCohortRisk(ctx context.Context, cohort *models.CohortRisk) error {
	data, err := json.Marshal(cohort)
	if err != nil {
		return apperrors.ErrRiskStore.WithCause(err)
	}
	if err := s.rdb.Set(ctx, keyCohortRisk+cohort.CohortID, data, constants.CohortRiskTTL).Err(); err != nil {
		return apperrors.ErrRiskStore.WithCause(err)
	}
	return nil
}

// GetCohortRisk retrieves the cohort snapshot.
func (s *RiskStore) GetCohortRisk(ctx context.Context, cohortID string) (*models.CohortRisk, error) {
	val, err := s.rdb.Get(ctx, keyCohortRisk+cohortID).Result()
	if err == redis.Nil {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}
	var cohort models.CohortRisk
	if err := json.Unmarshal([]byte(val), &cohort); err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}
	return &cohort, nil
}

// AppendTrendHistory pushes a cohort average onto the bounded history list,
// newest at the head, trimmed to the configured size.
func (s *RiskStore) AppendTrendHistory(ctx context.Context, cohortID string, average float64) error {
	key := keyCohortRiskHistory + cohortID
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, strconv.FormatFloat(average, 'f', -1, 64))
	pipe.LTrim(ctx, key, 0, int64(constants.TrendHistorySize-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.ErrRiskStore.WithCause(err)
	}
	return nil
}

// TrendHistory returns the recorded cohort averages, oldest first.
func (s *RiskStore) TrendHistory(ctx context.Context, cohortID string) ([]float64, error) {
	vals, err := s.rdb.LRange(ctx, keyCohortRiskHistory+cohortID, 0, int64(constants.TrendHistorySize-1)).Result()
	if err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}
	// Stored newest-first; reverse into chronological order.
	history := make([]float64, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		f, err := strconv.ParseFloat(vals[i], 64)
		if err != nil {
			s.logger.Warn(ctx, "skipping malformed trend history entry",
				logger.String("cohort_id", cohortID),
				logger.String("value", vals[i]),
			)
			continue
		}
		history = append(history, f)
	}
	return history, nil
}

// HighRiskUsers returns org members scoring within [min,max], highest first.
func (s *RiskStore) HighRiskUsers(ctx context.Context, orgID string, min, max float64) ([]string, error) {
	users, err := s.rdb.ZRevRangeByScore(ctx, keyOrgRiskScores+orgID, &redis.ZRangeBy{
		Min: strconv.FormatFloat(min, 'f', -1, 64),
		Max: strconv.FormatFloat(max, 'f', -1, 64),
	}).Result()
	if err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}
	return users, nil
}

// TopUsers returns up to limit org members, highest score first.
func (s *RiskStore) TopUsers(ctx context.Context, orgID string, limit int) ([]string, error) {
	users, err := s.rdb.ZRevRange(ctx, keyOrgRiskScores+orgID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}
	return users, nil
}

// SetEnhancedMonitoring flags a user for enhanced monitoring for 7 days.
func (s *RiskStore) SetEnhancedMonitoring(ctx context.Context, userID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.ErrRiskStore.WithCause(err)
	}
	if err := s.rdb.Set(ctx, keyEnhancedMonitoring+userID, data, constants.EnhancedMonitoringTTL).Err(); err != nil {
		return apperrors.ErrRiskStore.WithCause(err)
	}
	return nil
}
