package model

import "fmt"

// Local is a fitted encoder and classifier built from one artifact.
type Local struct {
	Encoder    *TFIDFEncoder
	Classifier *LogisticRegression
}

// Build validates an artifact and constructs both collaborators.
func Build(art Artifact) (*Local, error) {
	enc, err := NewTFIDFEncoder(art.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("build vectorizer: %w", err)
	}
	clf, err := NewLogisticRegression(art.Classifier, enc.VocabularySize())
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	return &Local{Encoder: enc, Classifier: clf}, nil
}

// Load reads and builds an artifact from disk.
func Load(path string) (*Local, error) {
	art, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return Build(art)
}

// LoadEncoder reads only the vectorizer from an artifact, for backends whose
// classifier lives elsewhere.
func LoadEncoder(path string) (*TFIDFEncoder, error) {
	art, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	enc, err := NewTFIDFEncoder(art.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("build vectorizer: %w", err)
	}
	return enc, nil
}
