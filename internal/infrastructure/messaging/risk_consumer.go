package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/application"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/config"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/infrastructure/monitoring"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
	apperrors "github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/errors"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// RiskConsumer subscribes to the risk.update topic within a shared consumer
// group, so each request is handled by exactly one worker instance
// cluster-wide. A single fetch loop feeds a bounded pool of handler workers;
// messages are committed after handling (at-least-once).
type RiskConsumer struct {
	reader  *kafka.Reader
	risk    *application.RiskService
	replies application.Publisher
	metrics *monitoring.Metrics
	logger  logger.Logger
	workers int
}

// NewRiskConsumer creates the risk.update consumer.
func NewRiskConsumer(
	cfg config.KafkaConfig,
	risk *application.RiskService,
	replies application.Publisher,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *RiskConsumer {
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = constants.ConsumerGroupID
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          constants.TopicRiskUpdate,
		GroupID:        groupID,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	return &RiskConsumer{
		reader:  reader,
		risk:    risk,
		replies: replies,
		metrics: metrics,
		logger:  log.WithComponent("RiskConsumer"),
		workers: workers,
	}
}

// fetchRetryDelay spaces out retries after a transient fetch failure so an
// unhealthy broker does not spin the fetch loop.
const fetchRetryDelay = time.Second

// terminalFetchError reports whether a fetch failure ends the loop: context
// cancellation, or io.EOF from a closed reader.
func terminalFetchError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF)
}

// Run blocks until ctx is cancelled, fetching messages and dispatching them
// to the worker pool.
func (c *RiskConsumer) Run(ctx context.Context) error {
	c.logger.Info(ctx, "risk consumer started",
		logger.String("topic", constants.TopicRiskUpdate),
		logger.Int("workers", c.workers),
	)

	messages := make(chan kafka.Message, c.workers)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(messages)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if terminalFetchError(err) {
					return nil
				}
				c.logger.Error(ctx, "failed to fetch message", err)
				select {
				case <-time.After(fetchRetryDelay):
				case <-ctx.Done():
					return nil
				}
				continue
			}
			select {
			case messages <- msg:
			case <-ctx.Done():
				return nil
			}
		}
	})

	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for msg := range messages {
				c.handleMessage(ctx, msg)
				if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
					c.logger.Error(ctx, "failed to commit message", err)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	c.logger.Info(ctx, "risk consumer stopped")
	return err
}

// Close shuts down the underlying reader.
func (c *RiskConsumer) Close() error {
	return c.reader.Close()
}

// handleMessage decodes one request and routes it. Every outcome, including
// a malformed payload, produces either a reply or a log line; nothing
// escapes as a panic or lost message.
func (c *RiskConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	var req models.RiskRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.Error(ctx, "discarding malformed risk request", err,
			logger.String("payload", string(msg.Value)),
		)
		c.metrics.RecordRequest("malformed", "error", 0)
		return
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	ctx = context.WithValue(ctx, constants.ContextKeyRequestID, req.RequestID)
	ctx = context.WithValue(ctx, constants.ContextKeyOrgID, req.OrgID)

	started := time.Now()
	response, err := c.route(ctx, &req)
	elapsed := time.Since(started)

	result := "ok"
	if err != nil {
		result = string(apperrors.CodeOf(err))
		c.logger.Warn(ctx, "risk request failed",
			logger.String("kind", string(req.Kind)),
			logger.Any("error", err.Error()),
		)
		response = models.NewFailure(err)
	}
	c.metrics.RecordRequest(string(req.Kind), result, elapsed)

	if req.ReplyTo != "" {
		if err := c.replies.Publish(ctx, req.ReplyTo, response); err != nil {
			// Reply delivery is best-effort.
			c.logger.Error(ctx, "failed to publish reply", err,
				logger.String("reply_to", req.ReplyTo),
			)
		}
	}
}

// route dispatches on the closed request kind set.
func (c *RiskConsumer) route(ctx context.Context, req *models.RiskRequest) (interface{}, error) {
	switch req.Kind {
	case models.KindCalculateUserRisk:
		result, err := c.risk.CalculateUserRisk(ctx, req.UserID, req.OrgID)
		if err != nil {
			return nil, err
		}
		c.metrics.RecordScore(result.RiskLevel)
		return result, nil

	case models.KindCalculateCohortRisk:
		return c.risk.CalculateCohortRisk(ctx, req.CohortID, req.OrgID, req.UserIDs)

	case models.KindGetRiskRecommendations:
		return c.risk.GetRiskRecommendations(ctx, req.CohortID)

	case models.KindTriggerAdaptiveCampaign:
		return c.risk.TriggerAdaptiveCampaign(ctx, req.OrgID, req.TriggerReason)

	default:
		return nil, apperrors.Newf(apperrors.CodeValidation, "unknown risk request type: %q", string(req.Kind))
	}
}
