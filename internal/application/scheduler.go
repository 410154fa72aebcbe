package application

import (
	"context"
	"time"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/repository"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// Scheduler periodically re-evaluates risk across the active population,
// independent of inbound request traffic. A failed cycle shortens the next
// wake to the retry interval; no failure terminates the loop.
type Scheduler struct {
	orgs          repository.OrgRepository
	riskRepo      repository.RiskRepository
	risk          *RiskService
	logger        logger.Logger
	interval      time.Duration
	retryInterval time.Duration
	topUsers      int

	// CycleHook, when set, observes the outcome of each cycle.
	CycleHook func(failed bool)
}

// NewScheduler creates the periodic recalculation loop. Zero-valued intervals
// fall back to the hourly cadence and 5-minute retry.
func NewScheduler(
	orgs repository.OrgRepository,
	riskRepo repository.RiskRepository,
	risk *RiskService,
	interval, retryInterval time.Duration,
	topUsers int,
	log logger.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = constants.RecalcInterval
	}
	if retryInterval <= 0 {
		retryInterval = constants.RecalcRetryInterval
	}
	if topUsers <= 0 {
		topUsers = 100
	}
	return &Scheduler{
		orgs:          orgs,
		riskRepo:      riskRepo,
		risk:          risk,
		logger:        log.WithComponent("RiskScheduler"),
		interval:      interval,
		retryInterval: retryInterval,
		topUsers:      topUsers,
	}
}

// Run blocks until ctx is cancelled. The sleep between cycles is itself the
// cancellation point: shutdown exits at the next wake rather than killing a
// cycle midway.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info(ctx, "periodic risk recalculation started",
		logger.Duration("interval", s.interval),
		logger.Duration("retry_interval", s.retryInterval),
	)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "periodic risk recalculation stopped")
			return
		case <-timer.C:
		}

		wait := s.interval
		err := s.runCycle(ctx)
		if err != nil {
			s.logger.Error(ctx, "risk recalculation cycle failed", err)
			wait = s.retryInterval
		}
		if s.CycleHook != nil {
			s.CycleHook(err != nil)
		}
		timer.Reset(wait)
	}
}

// runCycle re-scores the ranked users of every active organization. Per-org
// and per-user failures are logged and skipped; any failure marks the cycle
// failed so the caller backs off.
func (s *Scheduler) runCycle(ctx context.Context) error {
	s.logger.Info(ctx, "starting periodic risk calculation")
	started := time.Now()

	orgIDs, err := s.orgs.ActiveOrgIDs(ctx)
	if err != nil {
		return err
	}

	var cycleErr error
	users := 0
	for _, orgID := range orgIDs {
		userIDs, err := s.riskRepo.TopUsers(ctx, orgID, s.topUsers)
		if err != nil {
			s.logger.Warn(ctx, "could not list ranked users for org",
				logger.String("org_id", orgID),
				logger.Any("error", err.Error()),
			)
			cycleErr = err
			continue
		}
		for _, userID := range userIDs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if _, err := s.risk.CalculateUserRisk(ctx, userID, orgID); err != nil {
				s.logger.Warn(ctx, "periodic recalculation failed for user",
					logger.String("org_id", orgID),
					logger.String("user_id", userID),
					logger.Any("error", err.Error()),
				)
				cycleErr = err
				continue
			}
			users++
		}
	}

	s.logger.Info(ctx, "periodic risk calculation finished",
		logger.Int("orgs", len(orgIDs)),
		logger.Int("users", users),
		logger.Duration("elapsed", time.Since(started)),
	)
	return cycleErr
}
