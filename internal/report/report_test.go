package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"NewsChecker/internal/domain"
)

func TestRender(t *testing.T) {
	t.Parallel()

	generated := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	result := domain.Result{
		Score:  35,
		Status: domain.StatusUnreliable,
		Indicators: domain.IndicatorLabels{
			Emotional: "High",
			Sources:   "Missing",
			Bias:      "High",
			FactCheck: "Disputed",
		},
		Recommendations: []string{"First", "Second"},
		ModelPrediction: domain.VerdictFake,
		ConfidenceReal:  45,
		ConfidenceFake:  55,
	}

	out := Render(result, Meta{
		Title:       "Miracle cure",
		URL:         "https://news.example/cure",
		TextLength:  12345,
		AnalyzedAt:  generated.Add(-3 * time.Hour),
		GeneratedAt: generated,
	})

	assert.True(t, strings.HasPrefix(out, "NEWS CREDIBILITY REPORT\n"))
	assert.Contains(t, out, "Title:        Miracle cure\n")
	assert.Contains(t, out, "Source:       https://news.example/cure\n")
	assert.Contains(t, out, "Text length:  12,345 characters\n")
	assert.Contains(t, out, "(3 hours ago)")
	assert.Contains(t, out, "Credibility score: 35/100\n")
	assert.Contains(t, out, "Status:            Unreliable\n")
	assert.Contains(t, out, "Model verdict:     FAKE (real 45.00%, fake 55.00%)\n")
	assert.Contains(t, out, "  Fact-check:         Disputed\n")
	assert.Contains(t, out, "  1. First\n  2. Second\n")
	assert.True(t, strings.HasSuffix(out, "Generated 2024-03-10T12:00:00Z\n"))
}

func TestRenderMinimal(t *testing.T) {
	t.Parallel()

	out := Render(domain.Result{Score: 80, Status: domain.StatusReliable}, Meta{})
	assert.NotContains(t, out, "Title:")
	assert.NotContains(t, out, "Source:")
	assert.Contains(t, out, "Status:            Reliable\n")
}
