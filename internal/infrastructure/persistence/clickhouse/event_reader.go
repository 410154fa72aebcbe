package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sony/gobreaker"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/repository"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
	apperrors "github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/errors"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

const userEventStatsQuery = `
SELECT
    event_type,
    count() AS count,
    min(timestamp) AS first_event,
    max(timestamp) AS last_event
FROM events
WHERE user_id = ? AND org_id = ? AND timestamp >= ?
GROUP BY event_type`

// EventReader queries behavioral event aggregates. Every query runs under a
// bounded timeout and behind a circuit breaker so that an unhealthy analytics
// store degrades calls quickly instead of tying up workers.
type EventReader struct {
	conn    driver.Conn
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  logger.Logger
}

var _ repository.EventStatsReader = (*EventReader)(nil)

// NewEventReader creates an EventReader with the given per-query timeout.
func NewEventReader(conn driver.Conn, timeout time.Duration, log logger.Logger) *EventReader {
	componentLog := log.WithComponent("EventReader")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "clickhouse-events",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			componentLog.Warn(context.Background(), "event store circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return &EventReader{
		conn:    conn,
		breaker: breaker,
		timeout: timeout,
		logger:  componentLog,
	}
}

// UserEventStats returns per-event-type aggregates for the user since
// startDate.
func (r *EventReader) UserEventStats(ctx context.Context, userID, orgID string, startDate time.Time) (models.EventStatsMap, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		queryCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.query(queryCtx, userID, orgID, startDate)
	})
	if err != nil {
		return nil, apperrors.ErrEventStore.WithCause(err)
	}
	return result.(models.EventStatsMap), nil
}

func (r *EventReader) query(ctx context.Context, userID, orgID string, startDate time.Time) (models.EventStatsMap, error) {
	rows, err := r.conn.Query(ctx, userEventStatsQuery, userID, orgID, startDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(models.EventStatsMap)
	for rows.Next() {
		var (
			eventType string
			count     uint64
			first     time.Time
			last      time.Time
		)
		if err := rows.Scan(&eventType, &count, &first, &last); err != nil {
			return nil, err
		}
		stats[constants.EventType(eventType)] = models.EventStats{
			Count:      int(count),
			FirstEvent: first,
			LastEvent:  last,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
