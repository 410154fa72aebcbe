package service

import (
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/constants"
)

// trendDelta is the minimum two-step movement that counts as a trend.
const trendDelta = 5.0

// ClassifyTrend derives a cohort's risk trend from its recorded averages
// (oldest first) and the freshly computed current average. The current value
// is appended and compared against the value two steps back; a decrease
// larger than trendDelta is improving (lower risk), an increase larger than
// trendDelta is declining. Fewer than two historical points is insufficient
// data and reads as stable.
func ClassifyTrend(history []float64, current float64) constants.RiskTrend {
	if len(history) < 2 {
		return constants.TrendStable
	}

	scores := make([]float64, 0, len(history)+1)
	scores = append(scores, history...)
	scores = append(scores, current)

	if len(scores) >= 3 {
		delta := scores[len(scores)-1] - scores[len(scores)-3]
		if delta < -trendDelta {
			return constants.TrendImproving
		}
		if delta > trendDelta {
			return constants.TrendDeclining
		}
	}

	return constants.TrendStable
}
