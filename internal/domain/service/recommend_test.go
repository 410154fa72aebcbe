package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
)

func TestUserRecommendations_RuleTable(t *testing.T) {
	cases := []struct {
		name  string
		score models.RiskScore
		want  []string
	}{
		{
			name: "model citizen",
			score: models.RiskScore{
				ClickRate:              5,
				ReportRate:             60,
				TrainingCompletionRate: 100,
				RecentIncidents:        0,
				RiskLevel:              constants.RiskLevelLow,
			},
			want: []string{},
		},
		{
			name: "frequent clicker",
			score: models.RiskScore{
				ClickRate:              45,
				ReportRate:             60,
				TrainingCompletionRate: 100,
				RiskLevel:              constants.RiskLevelMedium,
			},
			want: []string{"Complete advanced phishing identification training"},
		},
		{
			name: "all rules fire",
			score: models.RiskScore{
				ClickRate:              80,
				ReportRate:             0,
				TrainingCompletionRate: 10,
				RecentIncidents:        5,
				RiskLevel:              constants.RiskLevelCritical,
			},
			want: []string{
				"Complete advanced phishing identification training",
				"Learn how to properly report suspicious emails",
				"Complete pending security awareness training",
				"Schedule one-on-one security coaching session",
				"Mandatory security briefing with IT team",
			},
		},
		{
			name: "high level alone triggers briefing",
			score: models.RiskScore{
				ClickRate:              10,
				ReportRate:             50,
				TrainingCompletionRate: 95,
				RiskLevel:              constants.RiskLevelHigh,
			},
			want: []string{"Mandatory security briefing with IT team"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UserRecommendations(&tc.score))
		})
	}
}

func TestUserRecommendations_Capped(t *testing.T) {
	score := models.RiskScore{
		ClickRate:              100,
		ReportRate:             0,
		TrainingCompletionRate: 0,
		RecentIncidents:        10,
		RiskLevel:              constants.RiskLevelCritical,
	}
	assert.Len(t, UserRecommendations(&score), maxRecommendations)
}

func TestCohortRecommendations(t *testing.T) {
	cases := []struct {
		name          string
		averageRisk   float64
		highRiskUsers int
		totalUsers    int
		trend         constants.RiskTrend
		want          []string
	}{
		{
			name: "healthy cohort", averageRisk: 30, highRiskUsers: 1, totalUsers: 50,
			trend: constants.TrendStable,
			want:  []string{},
		},
		{
			name: "high percentage of risky users", averageRisk: 40, highRiskUsers: 4, totalUsers: 10,
			trend: constants.TrendStable,
			want:  []string{"Implement organization-wide security awareness campaign"},
		},
		{
			name: "declining adds two entries", averageRisk: 40, highRiskUsers: 0, totalUsers: 10,
			trend: constants.TrendDeclining,
			want: []string{
				"Review and update security training content",
				"Conduct security culture assessment",
			},
		},
		{
			name: "everything fires and caps at five", averageRisk: 80, highRiskUsers: 15, totalUsers: 20,
			trend: constants.TrendDeclining,
			want: []string{
				"Implement organization-wide security awareness campaign",
				"Increase phishing simulation frequency",
				"Review and update security training content",
				"Conduct security culture assessment",
				"Create targeted training program for high-risk users",
			},
		},
		{
			name: "zero total users", averageRisk: 65, highRiskUsers: 0, totalUsers: 0,
			trend: constants.TrendStable,
			want:  []string{"Increase phishing simulation frequency"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CohortRecommendations(tc.averageRisk, tc.highRiskUsers, tc.totalUsers, tc.trend)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len(got), maxRecommendations)
		})
	}
}

func TestManagerRecommendations_EmbedsLevel(t *testing.T) {
	recs := ManagerRecommendations(&models.RiskScore{RiskLevel: constants.RiskLevelCritical})
	assert.Len(t, recs, 5)
	assert.Equal(t, "User has critical security risk level", recs[0])
}

func TestCampaignFrequency(t *testing.T) {
	cases := []struct {
		averageRisk float64
		want        string
	}{
		{85, "weekly"},
		{70, "weekly"},
		{69.9, "bi-weekly"},
		{50, "bi-weekly"},
		{49.9, "monthly"},
		{30, "monthly"},
		{29.9, "quarterly"},
		{0, "quarterly"},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CampaignFrequency(tc.averageRisk), "averageRisk %v", tc.averageRisk)
	}
}

func TestDifficultyLevel(t *testing.T) {
	cases := []struct {
		averageRisk float64
		want        string
	}{
		{75, "beginner"},
		{60, "beginner"},
		{59.9, "intermediate"},
		{40, "intermediate"},
		{39.9, "advanced"},
		{0, "advanced"},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, DifficultyLevel(tc.averageRisk), "averageRisk %v", tc.averageRisk)
	}
}

func TestTargetUsers(t *testing.T) {
	assert.Equal(t, []string{"high_risk_users_only"}, TargetUsers(4, 10))
	assert.Equal(t, []string{"high_risk_users", "random_sample"}, TargetUsers(2, 10))
	assert.Equal(t, []string{"all_users"}, TargetUsers(1, 10))
	assert.Equal(t, []string{"all_users"}, TargetUsers(0, 0))
}

func TestTrainingFocus(t *testing.T) {
	actions := []string{
		"Review and update security training content",
		"Complete advanced phishing identification training",
		"Conduct security culture assessment",
	}
	assert.Equal(t,
		[]string{"general_security_awareness", "phishing_identification"},
		TrainingFocus(actions))

	assert.Equal(t, []string{"general_security_awareness"}, TrainingFocus(nil))
	assert.Equal(t, []string{"general_security_awareness"},
		TrainingFocus([]string{"Conduct security culture assessment"}))
}
