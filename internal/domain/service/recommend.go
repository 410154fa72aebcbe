package service

import (
	"strings"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
)

// maxRecommendations caps every generated recommendation list. Entries keep
// rule evaluation order, not severity order.
const maxRecommendations = 5

// UserRecommendations generates personalized recommendations from a user's
// risk score.
func UserRecommendations(score *models.RiskScore) []string {
	recs := make([]string, 0, maxRecommendations)

	if score.ClickRate > 20 {
		recs = append(recs, "Complete advanced phishing identification training")
	}
	if score.ReportRate < 10 {
		recs = append(recs, "Learn how to properly report suspicious emails")
	}
	if score.TrainingCompletionRate < 80 {
		recs = append(recs, "Complete pending security awareness training")
	}
	if score.RecentIncidents > 2 {
		recs = append(recs, "Schedule one-on-one security coaching session")
	}
	if score.RiskLevel == constants.RiskLevelHigh || score.RiskLevel == constants.RiskLevelCritical {
		recs = append(recs, "Mandatory security briefing with IT team")
	}

	return capList(recs)
}

// CohortRecommendations generates recommended actions for a cohort from its
// aggregate metrics.
func CohortRecommendations(averageRisk float64, highRiskUsers, totalUsers int, trend constants.RiskTrend) []string {
	recs := make([]string, 0, maxRecommendations)

	highRiskPct := 0.0
	if totalUsers > 0 {
		highRiskPct = float64(highRiskUsers) / float64(totalUsers) * 100
	}

	if highRiskPct > 25 {
		recs = append(recs, "Implement organization-wide security awareness campaign")
	}
	if averageRisk > 60 {
		recs = append(recs, "Increase phishing simulation frequency")
	}
	if trend == constants.TrendDeclining {
		recs = append(recs, "Review and update security training content")
		recs = append(recs, "Conduct security culture assessment")
	}
	if highRiskUsers > 10 {
		recs = append(recs, "Create targeted training program for high-risk users")
	}

	return capList(recs)
}

// ManagerRecommendations generates guidance sent alongside a high-risk user
// alert.
func ManagerRecommendations(score *models.RiskScore) []string {
	return []string{
		"User has " + string(score.RiskLevel) + " security risk level",
		"Consider additional security training",
		"Monitor for suspicious email activity",
		"Provide coaching on security best practices",
		"Review user's access permissions if necessary",
	}
}

// CampaignFrequency recommends how often to run simulations against a cohort.
func CampaignFrequency(averageRisk float64) string {
	switch {
	case averageRisk >= 70:
		return "weekly"
	case averageRisk >= 50:
		return "bi-weekly"
	case averageRisk >= 30:
		return "monthly"
	default:
		return "quarterly"
	}
}

// DifficultyLevel recommends simulation difficulty. Inverted relative to
// risk: higher-risk cohorts get easier simulations to rebuild confidence.
func DifficultyLevel(averageRisk float64) string {
	switch {
	case averageRisk >= 60:
		return "beginner"
	case averageRisk >= 40:
		return "intermediate"
	default:
		return "advanced"
	}
}

// TargetUsers recommends which user slice the next campaign should reach.
func TargetUsers(highRiskUsers, totalUsers int) []string {
	if totalUsers > 0 {
		ratio := float64(highRiskUsers) / float64(totalUsers)
		if ratio > 0.3 {
			return []string{"high_risk_users_only"}
		}
		if ratio > 0.1 {
			return []string{"high_risk_users", "random_sample"}
		}
	}
	return []string{"all_users"}
}

// TrainingFocus maps a cohort's recommended actions onto training focus
// areas.
func TrainingFocus(recommendedActions []string) []string {
	focus := make([]string, 0, len(recommendedActions))
	for _, rec := range recommendedActions {
		lower := strings.ToLower(rec)
		if !strings.Contains(lower, "training") {
			continue
		}
		switch {
		case strings.Contains(lower, "phishing"):
			focus = append(focus, "phishing_identification")
		case strings.Contains(lower, "reporting"):
			focus = append(focus, "incident_reporting")
		default:
			focus = append(focus, "general_security_awareness")
		}
	}
	if len(focus) == 0 {
		return []string{"general_security_awareness"}
	}
	return focus
}

func capList(recs []string) []string {
	if len(recs) > maxRecommendations {
		return recs[:maxRecommendations]
	}
	return recs
}
