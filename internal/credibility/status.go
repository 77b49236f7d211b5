package credibility

import "NewsChecker/internal/domain"

const (
	reliableFrom     = 70
	questionableFrom = 40
)

// ClassifyStatus buckets a credibility score; lower bounds are inclusive.
func ClassifyStatus(score int) domain.Status {
	switch {
	case score >= reliableFrom:
		return domain.StatusReliable
	case score >= questionableFrom:
		return domain.StatusQuestionable
	default:
		return domain.StatusUnreliable
	}
}
