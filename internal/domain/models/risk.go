package models

import (
	"time"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
)

// RiskScore is the latest computed risk assessment for a user within an
// organization. The store holds exactly one per user; every recalculation
// overwrites the previous value.
type RiskScore struct {
	UserID                 string              `json:"user_id"`
	OrgID                  string              `json:"org_id"`
	OverallScore           float64             `json:"overall_score"`
	ClickRate              float64             `json:"click_rate"`
	ReportRate             float64             `json:"report_rate"`
	TrainingCompletionRate float64             `json:"training_completion_rate"`
	RecentIncidents        int                 `json:"recent_incidents"`
	RiskLevel              constants.RiskLevel `json:"risk_level"`
	Factors                map[string]float64  `json:"factors"`
	LastUpdated            time.Time           `json:"last_updated"`
}

// CohortRisk is a read-time aggregation over a set of user RiskScores.
type CohortRisk struct {
	CohortID           string              `json:"cohort_id"`
	OrgID              string              `json:"org_id"`
	AverageRiskScore   float64             `json:"average_risk_score"`
	HighRiskUsers      int                 `json:"high_risk_users"`
	TotalUsers         int                 `json:"total_users"`
	RiskTrend          constants.RiskTrend `json:"risk_trend"`
	RecommendedActions []string            `json:"recommended_actions"`
	LastUpdated        time.Time           `json:"last_updated"`
}

// Factor names used as keys in RiskScore.Factors and by the scorer's weight
// table.
const (
	FactorClickRate          = "click_rate"
	FactorReportRate         = "report_rate"
	FactorTrainingCompletion = "training_completion"
	FactorRecentIncidents    = "recent_incidents"
	FactorTimeToReport       = "time_to_report"
	FactorRepeatOffender     = "repeat_offender"
)
