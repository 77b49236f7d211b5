package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Artifact is the serialized, fitted vectorizer and classifier pair.
type Artifact struct {
	Vectorizer VectorizerSpec `json:"vectorizer" yaml:"vectorizer" msgpack:"vectorizer"`
	Classifier LogisticSpec   `json:"classifier" yaml:"classifier" msgpack:"classifier"`
}

// VectorizerSpec mirrors a fitted TF-IDF vectorizer.
type VectorizerSpec struct {
	Vocabulary  map[string]int `json:"vocabulary" yaml:"vocabulary" msgpack:"vocabulary"`
	IDF         []float64      `json:"idf" yaml:"idf" msgpack:"idf"`
	Norm        string         `json:"norm" yaml:"norm" msgpack:"norm"`
	SublinearTF bool           `json:"sublinear_tf" yaml:"sublinear_tf" msgpack:"sublinear_tf"`
	NgramRange  [2]int         `json:"ngram_range" yaml:"ngram_range" msgpack:"ngram_range"`
}

// LogisticSpec mirrors a fitted binary logistic regression.
type LogisticSpec struct {
	Classes   []int     `json:"classes" yaml:"classes" msgpack:"classes"`
	Coef      []float64 `json:"coef" yaml:"coef" msgpack:"coef"`
	Intercept float64   `json:"intercept" yaml:"intercept" msgpack:"intercept"`
}

// LoadArtifact reads an artifact file; the format follows the extension
// (.json, .yaml/.yml, .msgpack/.mpk).
func LoadArtifact(path string) (Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("read model artifact: %w", err)
	}

	var art Artifact
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(raw, &art)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &art)
	case ".msgpack", ".mpk":
		err = msgpack.NewDecoder(bytes.NewReader(raw)).Decode(&art)
	default:
		return Artifact{}, fmt.Errorf("unsupported model artifact format %q", ext)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("decode model artifact %s: %w", path, err)
	}

	return art, nil
}

// SaveArtifact writes an artifact in the format implied by the extension.
func SaveArtifact(path string, art Artifact) error {
	var (
		raw []byte
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		raw, err = json.Marshal(art)
	case ".yaml", ".yml":
		raw, err = yaml.Marshal(art)
	case ".msgpack", ".mpk":
		var buf bytes.Buffer
		err = msgpack.NewEncoder(&buf).Encode(art)
		raw = buf.Bytes()
	default:
		return fmt.Errorf("unsupported model artifact format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write model artifact: %w", err)
	}
	return nil
}
