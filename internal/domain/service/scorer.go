// Package service contains the pure domain logic of the risk engine: factor
// derivation, weighted scoring, trend classification, and recommendation
// generation. Nothing in this package performs I/O; every function is
// deterministic for identical inputs.
package service

import (
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/domain/models"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
)

// riskWeights is the fixed signed weight table combining normalized factors
// into the overall score. The weights do not sum to 1; the result is clamped,
// not normalized. The slice order is the summation order: float addition is
// not associative, so iterating the factor map directly would let Go's
// randomized map order produce different sums for identical inputs.
var riskWeights = []struct {
	name   string
	weight float64
}{
	{models.FactorClickRate, 0.35},
	{models.FactorReportRate, -0.25},
	{models.FactorTrainingCompletion, -0.20},
	{models.FactorRecentIncidents, 0.15},
	{models.FactorTimeToReport, 0.10},
	{models.FactorRepeatOffender, 0.05},
}

// Score combines the factor map into a single weighted score in [0,100].
// Each factor value is clamped to [0,100] before weighting; factors absent
// from the map contribute nothing, and factors outside the weight table are
// ignored. Identical factor maps always yield identical scores.
func Score(factors map[string]float64) float64 {
	total := 0.0
	for _, w := range riskWeights {
		value, ok := factors[w.name]
		if !ok {
			continue
		}
		total += clamp(value, 0, 100) * w.weight
	}
	return clamp(total, 0, 100)
}

// LevelForScore classifies a score into a risk level, thresholds evaluated
// highest-first.
func LevelForScore(score float64) constants.RiskLevel {
	switch {
	case score >= constants.ThresholdCritical:
		return constants.RiskLevelCritical
	case score >= constants.ThresholdHigh:
		return constants.RiskLevelHigh
	case score >= constants.ThresholdMedium:
		return constants.RiskLevelMedium
	default:
		return constants.RiskLevelLow
	}
}

// AggregateScores reduces a cohort's member scores to their mean and the
// count meeting the high-risk threshold. An empty slice aggregates to zero;
// callers distinguish that from a real zero average before calling.
func AggregateScores(scores []float64) (average float64, highRisk int) {
	if len(scores) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, score := range scores {
		sum += score
		if score >= constants.ThresholdHigh {
			highRisk++
		}
	}
	return sum / float64(len(scores)), highRisk
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
