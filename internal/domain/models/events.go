package models

import (
	"time"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
)

// EventStats holds the aggregate for one event type over the lookback window:
// total count plus the first and last occurrence timestamps.
type EventStats struct {
	Count      int
	FirstEvent time.Time
	LastEvent  time.Time
}

// EventStatsMap maps event types to their aggregates for one user.
type EventStatsMap map[constants.EventType]EventStats

// Count returns the count for an event type, zero when absent.
func (m EventStatsMap) Count(t constants.EventType) int {
	return m[t].Count
}

// TotalSent is the combined number of simulated messages delivered to the user.
func (m EventStatsMap) TotalSent() int {
	return m.Count(constants.EventEmailSent) + m.Count(constants.EventSMSSent)
}

// TotalClicked is the combined number of simulated lures the user clicked.
func (m EventStatsMap) TotalClicked() int {
	return m.Count(constants.EventEmailClicked) + m.Count(constants.EventSMSClicked)
}

// TotalReported is the combined number of simulations the user reported.
func (m EventStatsMap) TotalReported() int {
	return m.Count(constants.EventEmailReported) + m.Count(constants.EventSMSReported)
}

// TotalIncidents sums the counts of all incident event types.
func (m EventStatsMap) TotalIncidents() int {
	total := 0
	for _, t := range constants.IncidentEventTypes {
		total += m.Count(t)
	}
	return total
}
