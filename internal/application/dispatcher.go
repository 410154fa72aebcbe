package application

import (
	"context"
	"time"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/repository"
	domainservice "github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/service"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// Publisher sends fire-and-forget JSON payloads to downstream topics. The
// dispatcher never waits for or verifies consumption; delivery relies on the
// bus's own at-least-once guarantee.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// TriggerPolicy decides whether a freshly evaluated level fires the adaptive
// action set, given the previous stored level (empty when none existed).
type TriggerPolicy func(previous, current constants.RiskLevel) bool

// TriggerAlways fires on every evaluation that lands on high or critical,
// repeats included. Re-assigning training twice is acceptable; all actions
// are idempotent downstream.
func TriggerAlways(_, current constants.RiskLevel) bool {
	return current == constants.RiskLevelHigh || current == constants.RiskLevelCritical
}

// TriggerOnIncrease fires only when the level rose into high or critical,
// suppressing repeat evaluations at the same level.
func TriggerOnIncrease(previous, current constants.RiskLevel) bool {
	if current != constants.RiskLevelHigh && current != constants.RiskLevelCritical {
		return false
	}
	return levelRank(current) > levelRank(previous)
}

func levelRank(level constants.RiskLevel) int {
	switch level {
	case constants.RiskLevelLow:
		return 0
	case constants.RiskLevelMedium:
		return 1
	case constants.RiskLevelHigh:
		return 2
	case constants.RiskLevelCritical:
		return 3
	default:
		return -1
	}
}

// Adaptive action identifiers emitted with each escalation.
const (
	ActionUrgentTraining       = "immediate_additional_training"
	ActionManagerNotification  = "manager_notification"
	ActionEnhancedMonitoring   = "enhanced_monitoring"
	ActionMandatoryBriefing    = "mandatory_security_briefing"
	ActionAdditionalTraining   = "additional_training"
	ActionIncreasedSimulations = "increased_simulation_frequency"
	ActionCoachingSession      = "coaching_session"
)

// AdaptiveDispatcher fans a qualifying risk evaluation out into escalation
// actions: training assignments, manager alerts, monitoring flags, and
// campaign adjustments, each an independent emission.
type AdaptiveDispatcher struct {
	publisher Publisher
	riskRepo  repository.RiskRepository
	policy    TriggerPolicy
	logger    logger.Logger
}

// NewAdaptiveDispatcher creates a dispatcher with the given trigger policy.
// A nil policy defaults to TriggerAlways.
func NewAdaptiveDispatcher(publisher Publisher, riskRepo repository.RiskRepository, policy TriggerPolicy, log logger.Logger) *AdaptiveDispatcher {
	if policy == nil {
		policy = TriggerAlways
	}
	return &AdaptiveDispatcher{
		publisher: publisher,
		riskRepo:  riskRepo,
		policy:    policy,
		logger:    log.WithComponent("AdaptiveDispatcher"),
	}
}

// ShouldDispatch applies the trigger policy to a level transition.
func (d *AdaptiveDispatcher) ShouldDispatch(previous, current constants.RiskLevel) bool {
	return d.policy(previous, current)
}

// Dispatch emits the full action set for the score's level. Individual
// publish failures are logged and do not stop the remaining actions; a risk
// evaluation must never be lost to a single downstream hiccup.
func (d *AdaptiveDispatcher) Dispatch(ctx context.Context, score *models.RiskScore) {
	var actions []string
	switch score.RiskLevel {
	case constants.RiskLevelCritical:
		actions = []string{
			ActionUrgentTraining,
			ActionManagerNotification,
			ActionEnhancedMonitoring,
			ActionMandatoryBriefing,
		}
	case constants.RiskLevelHigh:
		actions = []string{
			ActionAdditionalTraining,
			ActionIncreasedSimulations,
			ActionCoachingSession,
		}
	default:
		return
	}

	for _, action := range actions {
		if err := d.execute(ctx, score, action); err != nil {
			d.logger.Error(ctx, "adaptive action failed", err,
				logger.String("action", action),
				logger.String("user_id", score.UserID),
			)
			continue
		}
		d.logger.Info(ctx, "executed adaptive action",
			logger.String("action", action),
			logger.String("user_id", score.UserID),
			logger.String("risk_level", string(score.RiskLevel)),
		)
	}
}

func (d *AdaptiveDispatcher) execute(ctx context.Context, score *models.RiskScore, action string) error {
	switch action {
	case ActionUrgentTraining:
		return d.publisher.Publish(ctx, constants.TopicCoachSend, map[string]interface{}{
			"type":             "assign_urgent_training",
			"user_id":          score.UserID,
			"org_id":           score.OrgID,
			"training_modules": []string{"advanced_phishing_detection", "incident_response"},
			"priority":         "high",
		})

	case ActionManagerNotification:
		return d.publisher.Publish(ctx, constants.TopicManagerNotifications, map[string]interface{}{
			"type":                "high_risk_user_alert",
			"user_id":             score.UserID,
			"org_id":              score.OrgID,
			"risk_level":          string(score.RiskLevel),
			"recommended_actions": domainservice.ManagerRecommendations(score),
		})

	case ActionEnhancedMonitoring:
		return d.riskRepo.SetEnhancedMonitoring(ctx, score.UserID, map[string]interface{}{
			"action":     action,
			"user_id":    score.UserID,
			"org_id":     score.OrgID,
			"risk_score": score.OverallScore,
			"risk_level": string(score.RiskLevel),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})

	case ActionMandatoryBriefing:
		return d.publisher.Publish(ctx, constants.TopicCoachSend, map[string]interface{}{
			"type":     "schedule_mandatory_briefing",
			"user_id":  score.UserID,
			"org_id":   score.OrgID,
			"priority": "high",
		})

	case ActionAdditionalTraining:
		return d.publisher.Publish(ctx, constants.TopicCoachSend, map[string]interface{}{
			"type":             "assign_training",
			"user_id":          score.UserID,
			"org_id":           score.OrgID,
			"training_modules": []string{"phishing_identification"},
			"priority":         "normal",
		})

	case ActionIncreasedSimulations:
		return d.publisher.Publish(ctx, constants.TopicCampaignSchedule, map[string]interface{}{
			"type":       "adjust_simulation_frequency",
			"user_id":    score.UserID,
			"org_id":     score.OrgID,
			"adjustment": "increase",
			"reason":     "high_risk_user",
		})

	case ActionCoachingSession:
		return d.publisher.Publish(ctx, constants.TopicCoachSend, map[string]interface{}{
			"type":    "trigger_coaching_session",
			"user_id": score.UserID,
			"org_id":  score.OrgID,
		})
	}

	return nil
}
