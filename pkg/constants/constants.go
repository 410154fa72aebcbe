// Package constants defines system-wide constants for the risk engine.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Risk Level Constants
// ================================================================================

// RiskLevel represents the coarse risk bucket derived from an overall score.
type RiskLevel string

const (
	// RiskLevelLow indicates a score below the medium threshold
	RiskLevelLow RiskLevel = "low"

	// RiskLevelMedium indicates a score of at least 50
	RiskLevelMedium RiskLevel = "medium"

	// RiskLevelHigh indicates a score of at least 75
	RiskLevelHigh RiskLevel = "high"

	// RiskLevelCritical indicates a score of at least 90
	RiskLevelCritical RiskLevel = "critical"
)

// Risk level thresholds, evaluated highest-first against the overall score.
const (
	ThresholdMedium   = 50.0
	ThresholdHigh     = 75.0
	ThresholdCritical = 90.0
)

// ================================================================================
// Risk Trend Constants
// ================================================================================

// RiskTrend represents the direction of change in a cohort's average risk.
type RiskTrend string

const (
	// TrendImproving means the average risk score decreased (lower risk)
	TrendImproving RiskTrend = "improving"

	// TrendStable means no significant movement, or insufficient history
	TrendStable RiskTrend = "stable"

	// TrendDeclining means the average risk score increased (higher risk)
	TrendDeclining RiskTrend = "declining"
)

// ================================================================================
// Event Type Constants
// ================================================================================

// EventType identifies a behavioral event recorded by the telemetry pipeline.
type EventType string

const (
	EventEmailSent            EventType = "email_sent"
	EventSMSSent              EventType = "sms_sent"
	EventEmailClicked         EventType = "email_clicked"
	EventSMSClicked           EventType = "sms_clicked"
	EventEmailReported        EventType = "email_reported"
	EventSMSReported          EventType = "sms_reported"
	EventTrainingStarted      EventType = "training_started"
	EventTrainingCompleted    EventType = "training_completed"
	EventLandingFormSubmitted EventType = "landing_form_submitted"
)

// IncidentEventTypes are the event types counted as security incidents.
var IncidentEventTypes = []EventType{
	EventEmailClicked,
	EventSMSClicked,
	EventLandingFormSubmitted,
}

// ================================================================================
// Message Bus Topics
// ================================================================================

const (
	// TopicRiskUpdate is the inbound request topic, consumed via a
	// competing-consumers group.
	TopicRiskUpdate = "risk.update"

	// TopicCoachSend receives training assignments and coaching triggers.
	TopicCoachSend = "coach.send"

	// TopicManagerNotifications receives high-risk user alerts for managers.
	TopicManagerNotifications = "notifications.manager"

	// TopicCampaignSchedule receives adaptive campaign creation requests.
	TopicCampaignSchedule = "campaign.schedule"
)

// ConsumerGroupID is the shared group for risk worker instances.
const ConsumerGroupID = "risk-workers"

// ================================================================================
// Lookback Windows and TTLs
// ================================================================================

const (
	// FactorLookback is the trailing window for most risk factors.
	FactorLookback = 90 * 24 * time.Hour

	// IncidentLookback is the trailing window for the recent-incident factor.
	IncidentLookback = 30 * 24 * time.Hour

	// RiskScoreTTL bounds the lifetime of a stored user risk score.
	RiskScoreTTL = 24 * time.Hour

	// CohortRiskTTL bounds the lifetime of a stored cohort snapshot.
	CohortRiskTTL = 24 * time.Hour

	// EnhancedMonitoringTTL is how long the enhanced-monitoring flag persists.
	EnhancedMonitoringTTL = 7 * 24 * time.Hour

	// TrendHistorySize is the number of cohort averages kept for trend detection.
	TrendHistorySize = 5
)

// ================================================================================
// Scheduler Intervals
// ================================================================================

const (
	// RecalcInterval is the normal cadence of the periodic recalculation loop.
	RecalcInterval = time.Hour

	// RecalcRetryInterval is the shortened backoff after a failed cycle.
	RecalcRetryInterval = 5 * time.Minute
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is a typed key for context values.
type ContextKey string

const (
	// ContextKeyRequestID carries the inbound request identifier.
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyOrgID carries the organization identifier.
	ContextKeyOrgID ContextKey = "org_id"
)
