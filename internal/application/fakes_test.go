package application

import (
	"context"
	"sync"
	"time"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
	apperrors "github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/errors"
)

// fakeEventReader serves canned per-user event aggregates.
type fakeEventReader struct {
	stats map[string]models.EventStatsMap
	err   error
}

func (f *fakeEventReader) UserEventStats(_ context.Context, userID, _ string, _ time.Time) (models.EventStatsMap, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.stats[userID]; ok {
		return s, nil
	}
	return models.EventStatsMap{}, nil
}

// fakeRiskRepo is an in-memory RiskRepository. saveErrFor lets a test make
// the write path fail for specific users.
type fakeRiskRepo struct {
	mu         sync.Mutex
	users      map[string]*models.RiskScore
	cohorts    map[string]*models.CohortRisk
	history    map[string][]float64
	ranking    map[string][]string
	monitoring map[string]interface{}
	saveErrFor map[string]error
}

func newFakeRiskRepo() *fakeRiskRepo {
	return &fakeRiskRepo{
		users:      make(map[string]*models.RiskScore),
		cohorts:    make(map[string]*models.CohortRisk),
		history:    make(map[string][]float64),
		ranking:    make(map[string][]string),
		monitoring: make(map[string]interface{}),
		saveErrFor: make(map[string]error),
	}
}

func (f *fakeRiskRepo) SaveUserRisk(_ context.Context, score *models.RiskScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.saveErrFor[score.UserID]; ok {
		return err
	}
	f.users[score.UserID] = score
	return nil
}

func (f *fakeRiskRepo) GetUserRisk(_ context.Context, userID string) (*models.RiskScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.users[userID]; ok {
		return s, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeRiskRepo) SaveCohortRisk(_ context.Context, cohort *models.CohortRisk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cohorts[cohort.CohortID] = cohort
	return nil
}

func (f *fakeRiskRepo) GetCohortRisk(_ context.Context, cohortID string) (*models.CohortRisk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cohorts[cohortID]; ok {
		return c, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeRiskRepo) AppendTrendHistory(_ context.Context, cohortID string, average float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := append(f.history[cohortID], average)
	if len(h) > constants.TrendHistorySize {
		h = h[len(h)-constants.TrendHistorySize:]
	}
	f.history[cohortID] = h
	return nil
}

func (f *fakeRiskRepo) TrendHistory(_ context.Context, cohortID string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.history[cohortID]...), nil
}

func (f *fakeRiskRepo) HighRiskUsers(_ context.Context, orgID string, min, max float64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, userID := range f.ranking[orgID] {
		s, ok := f.users[userID]
		if ok && s.OverallScore >= min && s.OverallScore <= max {
			out = append(out, userID)
		}
	}
	return out, nil
}

func (f *fakeRiskRepo) TopUsers(_ context.Context, orgID string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := f.ranking[orgID]
	if len(users) > limit {
		users = users[:limit]
	}
	return append([]string(nil), users...), nil
}

func (f *fakeRiskRepo) SetEnhancedMonitoring(_ context.Context, userID string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.monitoring[userID] = payload
	return nil
}

// publishedMessage records one fake Publish call.
type publishedMessage struct {
	Topic   string
	Payload map[string]interface{}
}

// fakePublisher records every published payload.
type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	m, _ := payload.(map[string]interface{})
	f.messages = append(f.messages, publishedMessage{Topic: topic, Payload: m})
	return nil
}

func (f *fakePublisher) byTopic(topic string) []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedMessage
	for _, m := range f.messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// fakeOrgRepo lists a fixed set of active orgs.
type fakeOrgRepo struct {
	orgs []string
	err  error
}

func (f *fakeOrgRepo) ActiveOrgIDs(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orgs, nil
}
