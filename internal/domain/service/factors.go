package service

import (
	"time"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
)

// Bounds for normalizing the click-to-report delay into a 0-100 factor.
const (
	timeToReportNeutral = 50.0
	timeToReportFloor   = time.Hour
	timeToReportCeil    = 7 * 24 * time.Hour
)

// CalculateFactors derives the normalized risk factors from a user's event
// aggregates. All rate factors land in [0,100] by construction; ratios with a
// zero denominator report 0.
func CalculateFactors(stats models.EventStatsMap, now time.Time) map[string]float64 {
	factors := make(map[string]float64, 6)

	totalSent := stats.TotalSent()
	if totalSent > 0 {
		factors[models.FactorClickRate] = float64(stats.TotalClicked()) / float64(totalSent) * 100
		factors[models.FactorReportRate] = float64(stats.TotalReported()) / float64(totalSent) * 100
	} else {
		factors[models.FactorClickRate] = 0
		factors[models.FactorReportRate] = 0
	}

	started := stats.Count(constants.EventTrainingStarted)
	if started > 0 {
		factors[models.FactorTrainingCompletion] = float64(stats.Count(constants.EventTrainingCompleted)) / float64(started) * 100
	} else {
		factors[models.FactorTrainingCompletion] = 0
	}

	factors[models.FactorRecentIncidents] = float64(recentIncidents(stats, now))
	factors[models.FactorTimeToReport] = timeToReport(stats)
	factors[models.FactorRepeatOffender] = repeatOffenderScore(stats.TotalIncidents())

	return factors
}

// recentIncidents counts incident events whose last occurrence falls within
// the trailing 30 days. When it does, the type's full window total is
// counted, not only the occurrences inside the 30-day window - a known
// approximation, kept deliberately.
func recentIncidents(stats models.EventStatsMap, now time.Time) int {
	cutoff := now.Add(-constants.IncidentLookback)
	total := 0
	for _, eventType := range constants.IncidentEventTypes {
		s, ok := stats[eventType]
		if !ok {
			continue
		}
		if !s.LastEvent.IsZero() && !s.LastEvent.Before(cutoff) {
			total += s.Count
		}
	}
	return total
}

// timeToReport maps the delay between the user's first click and first report
// into [0,100]: a report within an hour scores 0, a week or longer scores 100,
// linear in between. Without both a click and a subsequent report the factor
// defaults to the neutral midpoint.
func timeToReport(stats models.EventStatsMap) float64 {
	firstClick := earliest(stats, constants.EventEmailClicked, constants.EventSMSClicked)
	firstReport := earliest(stats, constants.EventEmailReported, constants.EventSMSReported)

	if firstClick.IsZero() || firstReport.IsZero() || !firstReport.After(firstClick) {
		return timeToReportNeutral
	}

	elapsed := firstReport.Sub(firstClick)
	if elapsed <= timeToReportFloor {
		return 0
	}
	if elapsed >= timeToReportCeil {
		return 100
	}
	return float64(elapsed-timeToReportFloor) / float64(timeToReportCeil-timeToReportFloor) * 100
}

// repeatOffenderScore is a step function of the total incident count.
func repeatOffenderScore(totalIncidents int) float64 {
	switch {
	case totalIncidents >= 5:
		return 100
	case totalIncidents >= 3:
		return 75
	case totalIncidents >= 1:
		return 50
	default:
		return 0
	}
}

func earliest(stats models.EventStatsMap, types ...constants.EventType) time.Time {
	var t time.Time
	for _, eventType := range types {
		s, ok := stats[eventType]
		if !ok || s.FirstEvent.IsZero() {
			continue
		}
		if t.IsZero() || s.FirstEvent.Before(t) {
			t = s.FirstEvent
		}
	}
	return t
}
