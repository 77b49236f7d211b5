package credibility

import "NewsChecker/internal/domain"

// Indicator label values.
const (
	LabelHigh       = "High"
	LabelModerate   = "Moderate"
	LabelLow        = "Low"
	LabelPresent    = "Present"
	LabelMissing    = "Missing"
	LabelVerified   = "Verified"
	LabelUnverified = "Unverified"
	LabelDisputed   = "Disputed"
)

// PresentIndicators maps flags and score to UI labels.
//
// Bias and fact-check thresholds (50/70 and >70/>40) intentionally differ from
// the status thresholds (>=70/>=40); do not merge them.
func PresentIndicators(flags domain.IndicatorFlags, score int) domain.IndicatorLabels {
	labels := domain.IndicatorLabels{
		Emotional: LabelLow,
		Sources:   LabelMissing,
	}

	if flags.HasClickbait || flags.HasExclamations {
		labels.Emotional = LabelHigh
	}
	if flags.HasSources {
		labels.Sources = LabelPresent
	}

	switch {
	case score < 50:
		labels.Bias = LabelHigh
	case score < 70:
		labels.Bias = LabelModerate
	default:
		labels.Bias = LabelLow
	}

	switch {
	case score > 70:
		labels.FactCheck = LabelVerified
	case score > 40:
		labels.FactCheck = LabelUnverified
	default:
		labels.FactCheck = LabelDisputed
	}

	return labels
}
