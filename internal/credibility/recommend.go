package credibility

import "NewsChecker/internal/domain"

var recommendations = map[domain.Status][]string{
	domain.StatusUnreliable: {
		"Verify this information with trusted news sources",
		"Look for original sources and citations",
		"Check if other reputable outlets are reporting this story",
		"Be extremely cautious before sharing this content",
	},
	domain.StatusQuestionable: {
		"Cross-reference with multiple reliable sources",
		"Look for expert opinions on this topic",
		"Be cautious about sharing until verified",
		"Check the publication date and author credentials",
	},
	domain.StatusReliable: {
		"This content appears credible based on initial analysis",
		"Still recommended to verify important claims independently",
		"Check publication date for currency of information",
		"Consider the source reputation and bias",
	},
}

// Recommend returns the advisory list for a status. Unknown statuses get the
// reliable tier. The returned slice is a copy owned by the caller.
func Recommend(status domain.Status) []string {
	list, ok := recommendations[status]
	if !ok {
		list = recommendations[domain.StatusReliable]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
