package credibility

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"NewsChecker/internal/domain"
)

const (
	exclamationLimit = 3
	minShoutedRun    = 4
)

var (
	clickbaitExpr = regexp.MustCompile(`(?i)shocking|unbelievable|you won't believe|doctors hate|one trick|breaking|urgent|must see`)
	sourcesExpr   = regexp.MustCompile(`(?i)according to|study shows|research|source:|reported by|says|claims`)
)

// AnalyzeIndicators extracts heuristic signals from the original, uncleaned text.
func AnalyzeIndicators(text string) domain.IndicatorFlags {
	return domain.IndicatorFlags{
		HasClickbait:    clickbaitExpr.MatchString(text),
		HasExclamations: strings.Count(text, "!") > exclamationLimit,
		HasCapitals:     hasShoutedWord(text),
		HasSources:      sourcesExpr.MatchString(text),
	}
}

// hasShoutedWord reports whether text holds a run of 4+ ASCII capitals that is
// a whole word. Boundaries are Unicode-aware: "ÉTATS" is one word, not "TATS".
func hasShoutedWord(text string) bool {
	prev := rune(-1)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isASCIIUpper(r) {
			prev = r
			i += size
			continue
		}

		start := i
		for i < len(text) && isASCIIUpper(rune(text[i])) {
			i++
		}
		runLen := i - start

		next := rune(-1)
		if i < len(text) {
			next, _ = utf8.DecodeRuneInString(text[i:])
		}

		if runLen >= minShoutedRun && !isWordRune(prev) && !isWordRune(next) {
			return true
		}
		prev = rune(text[i-1])
	}
	return false
}

func isASCIIUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isWordRune(r rune) bool {
	if r < 0 {
		return false
	}
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r)
}
