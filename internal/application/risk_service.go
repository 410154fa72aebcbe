// Package application orchestrates the risk-calculation pipeline: factor
// fetch, scoring, persistence, and conditional adaptive dispatch. It owns no
// algorithmic logic (domain/service) and no I/O details (infrastructure).
package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/repository"
	domainservice "github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/service"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
	apperrors "github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/errors"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// RiskService is the application service behind every risk.update request
// kind. Safe for concurrent use; same-user concurrent recalculations resolve
// by last write wins in the store.
type RiskService struct {
	events     repository.EventStatsReader
	riskRepo   repository.RiskRepository
	publisher  Publisher
	dispatcher *AdaptiveDispatcher
	logger     logger.Logger
	now        func() time.Time
}

// NewRiskService wires the risk pipeline.
func NewRiskService(
	events repository.EventStatsReader,
	riskRepo repository.RiskRepository,
	publisher Publisher,
	dispatcher *AdaptiveDispatcher,
	log logger.Logger,
) *RiskService {
	return &RiskService{
		events:     events,
		riskRepo:   riskRepo,
		publisher:  publisher,
		dispatcher: dispatcher,
		logger:     log.WithComponent("RiskService"),
		now:        time.Now,
	}
}

// CalculateUserRisk recomputes one user's risk score end to end: factor
// fetch, weighted scoring, store write, and conditional adaptive dispatch.
// The store write is essential; an unreachable event store is not, and
// degrades to all-zero factors.
func (s *RiskService) CalculateUserRisk(ctx context.Context, userID, orgID string) (*models.UserRiskResult, error) {
	if userID == "" || orgID == "" {
		return nil, apperrors.Newf(apperrors.CodeValidation, "user_id and org_id are required")
	}

	now := s.now().UTC()

	stats, err := s.events.UserEventStats(ctx, userID, orgID, now.Add(-constants.FactorLookback))
	if err != nil {
		// Fail soft: scoring proceeds on an empty factor set.
		s.logger.Warn(ctx, "event store unavailable, scoring with empty factors",
			logger.String("user_id", userID),
			logger.String("org_id", orgID),
			logger.Any("error", err.Error()),
		)
		stats = models.EventStatsMap{}
	}

	factors := domainservice.CalculateFactors(stats, now)
	overall := domainservice.Score(factors)
	level := domainservice.LevelForScore(overall)

	previousLevel := constants.RiskLevel("")
	if previous, err := s.riskRepo.GetUserRisk(ctx, userID); err == nil {
		previousLevel = previous.RiskLevel
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn(ctx, "could not read previous risk score",
			logger.String("user_id", userID),
			logger.Any("error", err.Error()),
		)
	}

	score := &models.RiskScore{
		UserID:                 userID,
		OrgID:                  orgID,
		OverallScore:           overall,
		ClickRate:              factors[models.FactorClickRate],
		ReportRate:             factors[models.FactorReportRate],
		TrainingCompletionRate: factors[models.FactorTrainingCompletion],
		RecentIncidents:        int(factors[models.FactorRecentIncidents]),
		RiskLevel:              level,
		Factors:                factors,
		LastUpdated:            now,
	}

	// A risk calculation that cannot persist is not useful; surface the
	// failure to the caller.
	if err := s.riskRepo.SaveUserRisk(ctx, score); err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}

	if s.dispatcher.ShouldDispatch(previousLevel, level) {
		s.dispatcher.Dispatch(ctx, score)
	}

	return &models.UserRiskResult{
		Success:         true,
		UserID:          userID,
		RiskScore:       overall,
		RiskLevel:       string(level),
		Factors:         factors,
		Recommendations: domainservice.UserRecommendations(score),
	}, nil
}

// CalculateCohortRisk recomputes every member through the user pipeline and
// aggregates the results. Per-member failures are logged and excluded; a
// cohort where every member failed is an explicit error, never a zero
// average.
func (s *RiskService) CalculateCohortRisk(ctx context.Context, cohortID, orgID string, userIDs []string) (*models.CohortRiskResult, error) {
	if cohortID == "" || orgID == "" {
		return nil, apperrors.Newf(apperrors.CodeValidation, "cohort_id and org_id are required")
	}
	if len(userIDs) == 0 {
		return nil, apperrors.Newf(apperrors.CodeValidation, "user_ids must not be empty")
	}

	scores := make([]float64, 0, len(userIDs))
	for _, userID := range userIDs {
		result, err := s.CalculateUserRisk(ctx, userID, orgID)
		if err != nil {
			s.logger.Warn(ctx, "failed to calculate risk for cohort member",
				logger.String("cohort_id", cohortID),
				logger.String("user_id", userID),
				logger.Any("error", err.Error()),
			)
			continue
		}
		scores = append(scores, result.RiskScore)
	}

	if len(scores) == 0 {
		return nil, apperrors.Newf(apperrors.CodeInternal, "no valid user risk scores calculated")
	}

	average, highRisk := domainservice.AggregateScores(scores)

	history, err := s.riskRepo.TrendHistory(ctx, cohortID)
	if err != nil {
		s.logger.Warn(ctx, "trend history unavailable, treating as empty",
			logger.String("cohort_id", cohortID),
			logger.Any("error", err.Error()),
		)
		history = nil
	}
	trend := domainservice.ClassifyTrend(history, average)
	if err := s.riskRepo.AppendTrendHistory(ctx, cohortID, average); err != nil {
		s.logger.Warn(ctx, "failed to append trend history",
			logger.String("cohort_id", cohortID),
			logger.Any("error", err.Error()),
		)
	}

	recommendations := domainservice.CohortRecommendations(average, highRisk, len(userIDs), trend)

	cohort := &models.CohortRisk{
		CohortID:           cohortID,
		OrgID:              orgID,
		AverageRiskScore:   average,
		HighRiskUsers:      highRisk,
		TotalUsers:         len(userIDs),
		RiskTrend:          trend,
		RecommendedActions: recommendations,
		LastUpdated:        s.now().UTC(),
	}

	if err := s.riskRepo.SaveCohortRisk(ctx, cohort); err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}

	return &models.CohortRiskResult{
		Success:          true,
		CohortID:         cohortID,
		AverageRiskScore: average,
		HighRiskUsers:    highRisk,
		TotalUsers:       len(userIDs),
		RiskTrend:        string(trend),
		Recommendations:  recommendations,
	}, nil
}

// GetRiskRecommendations derives adaptive campaign planning advice from a
// stored cohort snapshot.
func (s *RiskService) GetRiskRecommendations(ctx context.Context, cohortID string) (*models.RecommendationsResult, error) {
	if cohortID == "" {
		return nil, apperrors.Newf(apperrors.CodeValidation, "cohort_id is required")
	}

	cohort, err := s.riskRepo.GetCohortRisk(ctx, cohortID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "cohort risk data not found")
		}
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}

	return &models.RecommendationsResult{
		Success: true,
		Recommendations: models.CampaignRecommendations{
			CampaignFrequency: domainservice.CampaignFrequency(cohort.AverageRiskScore),
			DifficultyLevel:   domainservice.DifficultyLevel(cohort.AverageRiskScore),
			TargetUsers:       domainservice.TargetUsers(cohort.HighRiskUsers, cohort.TotalUsers),
			TrainingFocus:     domainservice.TrainingFocus(cohort.RecommendedActions),
		},
		CohortRiskSummary: cohort,
	}, nil
}

// TriggerAdaptiveCampaign requests creation of a remedial campaign targeting
// the org's current high-risk users. Fails explicitly when none qualify.
func (s *RiskService) TriggerAdaptiveCampaign(ctx context.Context, orgID, triggerReason string) (*models.AdaptiveCampaignResult, error) {
	if orgID == "" {
		return nil, apperrors.Newf(apperrors.CodeValidation, "org_id is required")
	}
	if triggerReason == "" {
		triggerReason = "high_risk_detected"
	}

	targets, err := s.riskRepo.HighRiskUsers(ctx, orgID, constants.ThresholdHigh, 100)
	if err != nil {
		return nil, apperrors.ErrRiskStore.WithCause(err)
	}
	if len(targets) == 0 {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "no high-risk users found")
	}

	payload := map[string]interface{}{
		"type":           "create_adaptive_campaign",
		"campaign_id":    uuid.NewString(),
		"org_id":         orgID,
		"target_users":   targets,
		"campaign_type":  "email",
		"difficulty":     "beginner",
		"priority":       "high",
		"trigger_reason": triggerReason,
		"auto_generated": true,
	}
	if err := s.publisher.Publish(ctx, constants.TopicCampaignSchedule, payload); err != nil {
		return nil, apperrors.ErrPublish.WithCause(err)
	}

	return &models.AdaptiveCampaignResult{
		Success:      true,
		Message:      "adaptive campaign triggered",
		TargetUsers:  len(targets),
		CampaignType: "email",
	}, nil
}
