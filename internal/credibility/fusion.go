package credibility

import (
	"math"

	"NewsChecker/internal/domain"
)

const (
	minScore = 0
	maxScore = 100

	clickbaitPenalty   = 15
	exclamationPenalty = 10
	capitalsPenalty    = 5
	sourcesBonus       = 10
)

// FuseScore combines the classifier's real-class probability with the heuristic
// flags. The base is truncated, not rounded, and every adjustment clamps before
// the next one is applied.
func FuseScore(probReal float64, flags domain.IndicatorFlags) int {
	score := baseScore(probReal)

	if flags.HasClickbait {
		score = max(minScore, score-clickbaitPenalty)
	}
	if flags.HasExclamations {
		score = max(minScore, score-exclamationPenalty)
	}
	if flags.HasCapitals {
		score = max(minScore, score-capitalsPenalty)
	}
	if flags.HasSources {
		score = min(maxScore, score+sourcesBonus)
	}

	return score
}

func baseScore(probReal float64) int {
	if math.IsNaN(probReal) {
		return minScore
	}
	percent := math.Trunc(probReal * 100)
	if percent < minScore {
		return minScore
	}
	if percent > maxScore {
		return maxScore
	}
	return int(percent)
}
