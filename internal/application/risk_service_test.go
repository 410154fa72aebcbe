package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
	apperrors "github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/errors"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

var testNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func newTestService(events *fakeEventReader, repo *fakeRiskRepo, pub *fakePublisher, policy TriggerPolicy) *RiskService {
	log := logger.NewNoopLogger()
	dispatcher := NewAdaptiveDispatcher(pub, repo, policy, log)
	svc := NewRiskService(events, repo, pub, dispatcher, log)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCalculateUserRisk_Validation(t *testing.T) {
	svc := newTestService(&fakeEventReader{}, newFakeRiskRepo(), &fakePublisher{}, nil)

	_, err := svc.CalculateUserRisk(context.Background(), "", "org-1")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = svc.CalculateUserRisk(context.Background(), "user-1", "")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestCalculateUserRisk_Pipeline(t *testing.T) {
	click := testNow.Add(-20 * 24 * time.Hour)
	events := &fakeEventReader{stats: map[string]models.EventStatsMap{
		"user-1": {
			constants.EventEmailSent:     {Count: 10},
			constants.EventEmailClicked:  {Count: 4, FirstEvent: click, LastEvent: click},
			constants.EventEmailReported: {Count: 2, FirstEvent: click.Add(30 * time.Minute)},
		},
	}}
	repo := newFakeRiskRepo()
	svc := newTestService(events, repo, &fakePublisher{}, nil)

	result, err := svc.CalculateUserRisk(context.Background(), "user-1", "org-1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "user-1", result.UserID)
	assert.InDelta(t, 40.0, result.Factors[models.FactorClickRate], 1e-9)
	assert.InDelta(t, 20.0, result.Factors[models.FactorReportRate], 1e-9)
	assert.Equal(t, 75.0, result.Factors[models.FactorRepeatOffender])
	assert.Equal(t, 0.0, result.Factors[models.FactorTimeToReport])

	stored, err := repo.GetUserRisk(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, result.RiskScore, stored.OverallScore)
	assert.Equal(t, result.RiskLevel, string(stored.RiskLevel))
	assert.Equal(t, "org-1", stored.OrgID)
	assert.Equal(t, 4, stored.RecentIncidents)
	assert.Equal(t, testNow, stored.LastUpdated)
}

func TestCalculateUserRisk_Idempotent(t *testing.T) {
	events := &fakeEventReader{stats: map[string]models.EventStatsMap{
		"user-1": {
			constants.EventEmailSent:    {Count: 5},
			constants.EventEmailClicked: {Count: 2, LastEvent: testNow.Add(-2 * 24 * time.Hour)},
		},
	}}
	repo := newFakeRiskRepo()
	svc := newTestService(events, repo, &fakePublisher{}, nil)

	first, err := svc.CalculateUserRisk(context.Background(), "user-1", "org-1")
	require.NoError(t, err)
	second, err := svc.CalculateUserRisk(context.Background(), "user-1", "org-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculateUserRisk_EventStoreFailSoft(t *testing.T) {
	events := &fakeEventReader{err: apperrors.ErrEventStore}
	repo := newFakeRiskRepo()
	svc := newTestService(events, repo, &fakePublisher{}, nil)

	result, err := svc.CalculateUserRisk(context.Background(), "user-1", "org-1")
	require.NoError(t, err)

	// Empty factors means only the neutral time-to-report midpoint carries
	// weight: 50 * 0.10.
	assert.InDelta(t, 5.0, result.RiskScore, 1e-9)
	assert.Equal(t, string(constants.RiskLevelLow), result.RiskLevel)
}

func TestCalculateUserRisk_StoreWriteEssential(t *testing.T) {
	repo := newFakeRiskRepo()
	repo.saveErrFor["user-1"] = errors.New("connection refused")
	svc := newTestService(&fakeEventReader{}, repo, &fakePublisher{}, nil)

	_, err := svc.CalculateUserRisk(context.Background(), "user-1", "org-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRiskStore, apperrors.CodeOf(err))
}

func TestCalculateCohortRisk_Validation(t *testing.T) {
	svc := newTestService(&fakeEventReader{}, newFakeRiskRepo(), &fakePublisher{}, nil)

	_, err := svc.CalculateCohortRisk(context.Background(), "", "org-1", []string{"u1"})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = svc.CalculateCohortRisk(context.Background(), "cohort-1", "org-1", nil)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestCalculateCohortRisk_Aggregation(t *testing.T) {
	// Stats tuned so the three members land on distinct scores.
	events := &fakeEventReader{stats: map[string]models.EventStatsMap{
		"u1": {
			constants.EventEmailSent:    {Count: 2},
			constants.EventEmailClicked: {Count: 2, LastEvent: testNow.Add(-24 * time.Hour)},
		},
		"u2": {
			constants.EventEmailSent:    {Count: 10},
			constants.EventEmailClicked: {Count: 2, LastEvent: testNow.Add(-24 * time.Hour)},
		},
	}}
	repo := newFakeRiskRepo()
	svc := newTestService(events, repo, &fakePublisher{}, nil)

	result, err := svc.CalculateCohortRisk(context.Background(), "cohort-1", "org-1", []string{"u1", "u2", "u3"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "cohort-1", result.CohortID)
	assert.Equal(t, 3, result.TotalUsers)
	assert.Equal(t, string(constants.TrendStable), result.RiskTrend)

	// Every member score went through the user pipeline and into the store.
	for _, userID := range []string{"u1", "u2", "u3"} {
		_, err := repo.GetUserRisk(context.Background(), userID)
		assert.NoErrorf(t, err, "user %s", userID)
	}

	s1, _ := repo.GetUserRisk(context.Background(), "u1")
	s2, _ := repo.GetUserRisk(context.Background(), "u2")
	s3, _ := repo.GetUserRisk(context.Background(), "u3")
	expected := (s1.OverallScore + s2.OverallScore + s3.OverallScore) / 3
	assert.InDelta(t, expected, result.AverageRiskScore, 1e-9)
	assert.Equal(t, 0, result.HighRiskUsers)

	// The snapshot and trend history were persisted.
	cohort, err := repo.GetCohortRisk(context.Background(), "cohort-1")
	require.NoError(t, err)
	assert.Equal(t, result.AverageRiskScore, cohort.AverageRiskScore)

	history, err := repo.TrendHistory(context.Background(), "cohort-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, result.AverageRiskScore, history[0], 1e-9)
}

func TestCalculateCohortRisk_PartialFailuresExcluded(t *testing.T) {
	repo := newFakeRiskRepo()
	repo.saveErrFor["broken"] = errors.New("write failed")
	svc := newTestService(&fakeEventReader{}, repo, &fakePublisher{}, nil)

	result, err := svc.CalculateCohortRisk(context.Background(), "cohort-1", "org-1", []string{"ok", "broken"})
	require.NoError(t, err)

	// The failed member is excluded from the average but still counts toward
	// cohort size.
	assert.Equal(t, 2, result.TotalUsers)
	assert.InDelta(t, 5.0, result.AverageRiskScore, 1e-9)
}

func TestCalculateCohortRisk_AllMembersFailed(t *testing.T) {
	repo := newFakeRiskRepo()
	repo.saveErrFor["u1"] = errors.New("write failed")
	repo.saveErrFor["u2"] = errors.New("write failed")
	svc := newTestService(&fakeEventReader{}, repo, &fakePublisher{}, nil)

	_, err := svc.CalculateCohortRisk(context.Background(), "cohort-1", "org-1", []string{"u1", "u2"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "no valid user risk scores calculated")
}

func TestCalculateCohortRisk_TrendFromHistory(t *testing.T) {
	repo := newFakeRiskRepo()
	repo.history["cohort-1"] = []float64{60, 58, 55}
	svc := newTestService(&fakeEventReader{}, repo, &fakePublisher{}, nil)

	// Empty stats put every member at 5.0, far below the recent history.
	result, err := svc.CalculateCohortRisk(context.Background(), "cohort-1", "org-1", []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, string(constants.TrendImproving), result.RiskTrend)

	history, err := repo.TrendHistory(context.Background(), "cohort-1")
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 58, 55, 5}, history)
}

func TestGetRiskRecommendations(t *testing.T) {
	repo := newFakeRiskRepo()
	repo.cohorts["cohort-1"] = &models.CohortRisk{
		CohortID:         "cohort-1",
		OrgID:            "org-1",
		AverageRiskScore: 65,
		HighRiskUsers:    4,
		TotalUsers:       10,
		RiskTrend:        constants.TrendStable,
		RecommendedActions: []string{
			"Increase phishing simulation frequency",
		},
	}
	svc := newTestService(&fakeEventReader{}, repo, &fakePublisher{}, nil)

	result, err := svc.GetRiskRecommendations(context.Background(), "cohort-1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "bi-weekly", result.Recommendations.CampaignFrequency)
	assert.Equal(t, "beginner", result.Recommendations.DifficultyLevel)
	assert.Equal(t, []string{"high_risk_users_only"}, result.Recommendations.TargetUsers)
	assert.Equal(t, repo.cohorts["cohort-1"], result.CohortRiskSummary)
}

func TestGetRiskRecommendations_NotFound(t *testing.T) {
	svc := newTestService(&fakeEventReader{}, newFakeRiskRepo(), &fakePublisher{}, nil)

	_, err := svc.GetRiskRecommendations(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestTriggerAdaptiveCampaign(t *testing.T) {
	repo := newFakeRiskRepo()
	repo.ranking["org-1"] = []string{"u1", "u2"}
	repo.users["u1"] = &models.RiskScore{UserID: "u1", OverallScore: 92}
	repo.users["u2"] = &models.RiskScore{UserID: "u2", OverallScore: 80}
	pub := &fakePublisher{}
	svc := newTestService(&fakeEventReader{}, repo, pub, nil)

	result, err := svc.TriggerAdaptiveCampaign(context.Background(), "org-1", "")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TargetUsers)
	assert.Equal(t, "email", result.CampaignType)

	published := pub.byTopic(constants.TopicCampaignSchedule)
	require.Len(t, published, 1)
	payload := published[0].Payload
	assert.Equal(t, "create_adaptive_campaign", payload["type"])
	assert.Equal(t, "org-1", payload["org_id"])
	assert.Equal(t, "high_risk_detected", payload["trigger_reason"])
	assert.Equal(t, true, payload["auto_generated"])
	assert.NotEmpty(t, payload["campaign_id"])
}

func TestTriggerAdaptiveCampaign_NoHighRiskUsers(t *testing.T) {
	repo := newFakeRiskRepo()
	repo.ranking["org-1"] = []string{"u1"}
	repo.users["u1"] = &models.RiskScore{UserID: "u1", OverallScore: 40}
	svc := newTestService(&fakeEventReader{}, repo, &fakePublisher{}, nil)

	_, err := svc.TriggerAdaptiveCampaign(context.Background(), "org-1", "quarterly_review")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "no high-risk users found")
}
