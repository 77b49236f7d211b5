// Package report renders a scored result as a plain-text document for download.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"NewsChecker/internal/domain"
)

// Meta describes where the scored text came from and when the report was built.
type Meta struct {
	Title       string
	URL         string
	TextLength  int
	AnalyzedAt  time.Time
	GeneratedAt time.Time
}

// Render formats result as a plain-text report.
func Render(result domain.Result, meta Meta) string {
	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	var b strings.Builder
	b.WriteString("NEWS CREDIBILITY REPORT\n")
	b.WriteString(strings.Repeat("=", 23) + "\n\n")

	if meta.Title != "" {
		fmt.Fprintf(&b, "Title:        %s\n", meta.Title)
	}
	if meta.URL != "" {
		fmt.Fprintf(&b, "Source:       %s\n", meta.URL)
	}
	if meta.TextLength > 0 {
		fmt.Fprintf(&b, "Text length:  %s characters\n", humanize.Comma(int64(meta.TextLength)))
	}
	if !meta.AnalyzedAt.IsZero() {
		fmt.Fprintf(&b, "Analyzed:     %s (%s)\n",
			meta.AnalyzedAt.UTC().Format(time.RFC3339),
			humanize.RelTime(meta.AnalyzedAt, generated, "ago", "from now"))
	}

	fmt.Fprintf(&b, "\nCredibility score: %d/100\n", result.Score)
	fmt.Fprintf(&b, "Status:            %s\n", statusTitle(result.Status))
	fmt.Fprintf(&b, "Model verdict:     %s (real %.2f%%, fake %.2f%%)\n",
		result.ModelPrediction, result.ConfidenceReal, result.ConfidenceFake)

	b.WriteString("\nIndicators\n")
	fmt.Fprintf(&b, "  Emotional language: %s\n", result.Indicators.Emotional)
	fmt.Fprintf(&b, "  Sources:            %s\n", result.Indicators.Sources)
	fmt.Fprintf(&b, "  Bias:               %s\n", result.Indicators.Bias)
	fmt.Fprintf(&b, "  Fact-check:         %s\n", result.Indicators.FactCheck)

	b.WriteString("\nRecommendations\n")
	for i, rec := range result.Recommendations {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, rec)
	}

	fmt.Fprintf(&b, "\nGenerated %s\n", generated.UTC().Format(time.RFC3339))
	return b.String()
}

func statusTitle(status domain.Status) string {
	s := string(status)
	if s == "" {
		return "unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
