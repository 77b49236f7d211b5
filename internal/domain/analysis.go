package domain

import "time"

// Class labels produced by the classifier.
const (
	FakeClass = 0
	RealClass = 1
)

// FeatureVector is a sparse numeric representation of cleaned text.
// Indices are ascending and unique; Dim is fixed by the encoder vocabulary.
type FeatureVector struct {
	Dim     int       `json:"dim" msgpack:"dim"`
	Indices []int     `json:"indices" msgpack:"indices"`
	Values  []float64 `json:"values" msgpack:"values"`
}

// Dense expands the vector into a slice of length Dim.
func (v FeatureVector) Dense() []float32 {
	out := make([]float32, v.Dim)
	for i, idx := range v.Indices {
		if idx >= 0 && idx < v.Dim {
			out[idx] = float32(v.Values[i])
		}
	}
	return out
}

// ClassProbabilities is the classifier distribution over {fake, real}.
type ClassProbabilities struct {
	Fake float64
	Real float64
}

// IndicatorFlags are the heuristic signals extracted from raw text.
type IndicatorFlags struct {
	HasClickbait    bool `json:"has_clickbait"`
	HasExclamations bool `json:"has_exclamations"`
	HasCapitals     bool `json:"has_capitals"`
	HasSources      bool `json:"has_sources"`
}

// Status is the ordinal credibility bucket.
type Status string

const (
	StatusReliable     Status = "reliable"
	StatusQuestionable Status = "questionable"
	StatusUnreliable   Status = "unreliable"
)

// IndicatorLabels are the UI-facing categorical indicators.
type IndicatorLabels struct {
	Emotional string `json:"emotional"`
	Sources   string `json:"sources"`
	Bias      string `json:"bias"`
	FactCheck string `json:"factCheck"`
}

// Model verdicts.
const (
	VerdictReal = "REAL"
	VerdictFake = "FAKE"
)

// Result is the complete outcome of scoring one text.
type Result struct {
	Score           int             `json:"score"`
	Status          Status          `json:"status"`
	Indicators      IndicatorLabels `json:"indicators"`
	Recommendations []string        `json:"recommendations"`
	ModelPrediction string          `json:"model_prediction"`
	ConfidenceReal  float64         `json:"confidence_real"`
	ConfidenceFake  float64         `json:"confidence_fake"`
}

// AnalysisSource tells where the scored text came from.
type AnalysisSource string

const (
	SourceText    AnalysisSource = "text"
	SourceURL     AnalysisSource = "url"
	SourceMonitor AnalysisSource = "monitor"
)

// Analysis is a scored text persisted for history and deduplication.
type Analysis struct {
	ID        string         `json:"id"`
	Source    AnalysisSource `json:"source"`
	URL       string         `json:"url,omitempty"`
	Title     string         `json:"title,omitempty"`
	Result    Result         `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}
