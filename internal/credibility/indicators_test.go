package credibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"NewsChecker/internal/domain"
)

func TestAnalyzeIndicators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want domain.IndicatorFlags
	}{
		{name: "plain", in: "The council met on Tuesday.", want: domain.IndicatorFlags{}},
		{name: "clickbait case insensitive", in: "You WON'T Believe this", want: domain.IndicatorFlags{HasClickbait: true}},
		{name: "clickbait inside word", in: "heartbreaking news", want: domain.IndicatorFlags{HasClickbait: true}},
		{name: "three exclamations", in: "wow!!!", want: domain.IndicatorFlags{}},
		{name: "four exclamations", in: "wow! wow! wow! wow!", want: domain.IndicatorFlags{HasExclamations: true}},
		{name: "three capitals", in: "The GDP grew", want: domain.IndicatorFlags{}},
		{name: "four capitals", in: "The NASA probe", want: domain.IndicatorFlags{HasCapitals: true}},
		{name: "capitals glued to lowercase", in: "NASAprobe", want: domain.IndicatorFlags{}},
		{name: "capitals glued to digit", in: "NASA2 mission", want: domain.IndicatorFlags{}},
		{name: "capitals after punctuation", in: "wow,NASA!", want: domain.IndicatorFlags{HasCapitals: true}},
		{name: "capitals after accented capital", in: "ÉTATS unis", want: domain.IndicatorFlags{}},
		{name: "sources", in: "Source: the ministry", want: domain.IndicatorFlags{HasSources: true}},
		{name: "sources says", in: "the mayor says so", want: domain.IndicatorFlags{HasSources: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, AnalyzeIndicators(tc.in))
		})
	}
}

func TestIndicatorsAreIndependent(t *testing.T) {
	t.Parallel()

	base := "the weather was mild today"
	assert.Equal(t, domain.IndicatorFlags{}, AnalyzeIndicators(base))

	assert.Equal(t, domain.IndicatorFlags{HasExclamations: true}, AnalyzeIndicators(base+"!!!!"))
	assert.Equal(t, domain.IndicatorFlags{HasCapitals: true}, AnalyzeIndicators("the WEATHER was mild today"))
	assert.Equal(t, domain.IndicatorFlags{HasClickbait: true}, AnalyzeIndicators(base+" urgent"))
	assert.Equal(t, domain.IndicatorFlags{HasSources: true}, AnalyzeIndicators(base+" according to radio"))
}
