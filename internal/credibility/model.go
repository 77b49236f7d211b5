package credibility

import "NewsChecker/internal/ports"

// ModelInfo describes the loaded model for health reporting.
type ModelInfo struct {
	Backend        string `json:"backend"`
	VocabularySize int    `json:"vocabulary_size"`
	HasIDF         bool   `json:"has_idf"`
}

// Model is the process-wide, read-only classifier state. It is built once at
// startup and passed to every ScoreText call; implementations must tolerate
// concurrent read-only use.
type Model struct {
	Encoder    ports.FeatureEncoder
	Classifier ports.Classifier
	Info       ModelInfo
}

// EncoderLoaded reports whether the feature encoder is available.
func (m *Model) EncoderLoaded() bool {
	return m != nil && m.Encoder != nil
}

// ClassifierLoaded reports whether the classifier is available.
func (m *Model) ClassifierLoaded() bool {
	return m != nil && m.Classifier != nil
}

// Ready reports whether both collaborators are available.
func (m *Model) Ready() bool {
	return m.EncoderLoaded() && m.ClassifierLoaded()
}
