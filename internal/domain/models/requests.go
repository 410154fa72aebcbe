package models

// RequestKind discriminates inbound risk.update requests. The set is closed;
// the consumer switches exhaustively over it and answers unknown kinds with a
// structured failure instead of panicking.
type RequestKind string

const (
	KindCalculateUserRisk       RequestKind = "calculate_user_risk"
	KindCalculateCohortRisk     RequestKind = "calculate_cohort_risk"
	KindGetRiskRecommendations  RequestKind = "get_risk_recommendations"
	KindTriggerAdaptiveCampaign RequestKind = "trigger_adaptive_campaign"
)

// Known reports whether the kind is one of the supported request types.
func (k RequestKind) Known() bool {
	switch k {
	case KindCalculateUserRisk, KindCalculateCohortRisk,
		KindGetRiskRecommendations, KindTriggerAdaptiveCampaign:
		return true
	}
	return false
}

// RiskRequest is the JSON envelope consumed from the risk.update topic.
// The `type` field carries the kind for wire compatibility with other
// producers in the platform.
type RiskRequest struct {
	Kind          RequestKind `json:"type"`
	RequestID     string      `json:"request_id,omitempty"`
	OrgID         string      `json:"org_id"`
	UserID        string      `json:"user_id,omitempty"`
	CohortID      string      `json:"cohort_id,omitempty"`
	UserIDs       []string    `json:"user_ids,omitempty"`
	TriggerReason string      `json:"trigger_reason,omitempty"`
	ReplyTo       string      `json:"reply_to,omitempty"`
}

// UserRiskResult is the success payload for calculate_user_risk.
type UserRiskResult struct {
	Success         bool               `json:"success"`
	UserID          string             `json:"user_id"`
	RiskScore       float64            `json:"risk_score"`
	RiskLevel       string             `json:"risk_level"`
	Factors         map[string]float64 `json:"factors"`
	Recommendations []string           `json:"recommendations"`
}

// CohortRiskResult is the success payload for calculate_cohort_risk.
type CohortRiskResult struct {
	Success          bool     `json:"success"`
	CohortID         string   `json:"cohort_id"`
	AverageRiskScore float64  `json:"average_risk_score"`
	HighRiskUsers    int      `json:"high_risk_users"`
	TotalUsers       int      `json:"total_users"`
	RiskTrend        string   `json:"risk_trend"`
	Recommendations  []string `json:"recommendations"`
}

// CampaignRecommendations is the adaptive planning block returned by
// get_risk_recommendations.
type CampaignRecommendations struct {
	CampaignFrequency string   `json:"campaign_frequency"`
	DifficultyLevel   string   `json:"difficulty_level"`
	TargetUsers       []string `json:"target_users"`
	TrainingFocus     []string `json:"training_focus"`
}

// RecommendationsResult is the success payload for get_risk_recommendations.
type RecommendationsResult struct {
	Success           bool                    `json:"success"`
	Recommendations   CampaignRecommendations `json:"recommendations"`
	CohortRiskSummary *CohortRisk             `json:"cohort_risk_summary,omitempty"`
}

// AdaptiveCampaignResult is the success payload for trigger_adaptive_campaign.
type AdaptiveCampaignResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	TargetUsers  int    `json:"target_users"`
	CampaignType string `json:"campaign_type"`
}

// FailureResult is the generic failure payload returned to synchronous
// callers; no error ever crosses the subsystem boundary unhandled.
type FailureResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewFailure builds a failure payload from an error.
func NewFailure(err error) FailureResult {
	return FailureResult{Success: false, Error: err.Error()}
}
