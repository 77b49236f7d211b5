package credibility

import (
	"regexp"
	"strings"
)

// Whitespace classes cover Unicode separators so that non-breaking and
// ideographic spaces split words instead of being dropped as symbols.
var (
	urlExpr        = regexp.MustCompile(`http[^\s\v\x{85}\p{Z}]+|www[^\s\v\x{85}\p{Z}]+`)
	tagExpr        = regexp.MustCompile(`<.*?>`)
	nonLetterExpr  = regexp.MustCompile(`[^a-z\s\v\x{85}\p{Z}]`)
	whitespaceExpr = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
)

// Normalize cleans raw text the same way the classifier's training corpus was cleaned:
// lowercase, URLs and tags removed, only a-z and single spaces kept.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = urlExpr.ReplaceAllString(text, "")
	text = tagExpr.ReplaceAllString(text, "")
	text = nonLetterExpr.ReplaceAllString(text, "")
	text = whitespaceExpr.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
