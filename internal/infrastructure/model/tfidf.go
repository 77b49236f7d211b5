package model

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"NewsChecker/internal/domain"
	"NewsChecker/internal/ports"
)

// smokeText is transformed at load time to prove the vectorizer is fitted.
const smokeText = "this is a test"

var tokenExpr = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TFIDFEncoder converts cleaned text into an L2 (or L1) normalized TF-IDF vector
// over a fixed vocabulary. It is immutable after construction.
type TFIDFEncoder struct {
	vocabulary  map[string]int
	idf         []float64
	norm        string
	sublinearTF bool
	minN, maxN  int
}

var _ ports.FeatureEncoder = (*TFIDFEncoder)(nil)

// NewTFIDFEncoder validates a vectorizer spec and runs a smoke transform.
func NewTFIDFEncoder(spec VectorizerSpec) (*TFIDFEncoder, error) {
	if len(spec.Vocabulary) == 0 {
		return nil, errors.New("vectorizer has empty vocabulary")
	}
	if len(spec.IDF) != 0 && len(spec.IDF) != len(spec.Vocabulary) {
		return nil, fmt.Errorf("idf length %d does not match vocabulary size %d", len(spec.IDF), len(spec.Vocabulary))
	}
	for term, idx := range spec.Vocabulary {
		if idx < 0 || idx >= len(spec.Vocabulary) {
			return nil, fmt.Errorf("vocabulary index %d for %q out of range", idx, term)
		}
	}

	norm := strings.ToLower(strings.TrimSpace(spec.Norm))
	switch norm {
	case "":
		norm = "l2"
	case "l1", "l2", "none":
	default:
		return nil, fmt.Errorf("unsupported norm %q", spec.Norm)
	}

	minN, maxN := spec.NgramRange[0], spec.NgramRange[1]
	if minN <= 0 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	enc := &TFIDFEncoder{
		vocabulary:  spec.Vocabulary,
		idf:         spec.IDF,
		norm:        norm,
		sublinearTF: spec.SublinearTF,
		minN:        minN,
		maxN:        maxN,
	}
	if _, err := enc.Transform(smokeText); err != nil {
		return nil, fmt.Errorf("vectorizer smoke test: %w", err)
	}

	return enc, nil
}

// VocabularySize reports the encoder dimension.
func (e *TFIDFEncoder) VocabularySize() int {
	return len(e.vocabulary)
}

// HasIDF reports whether inverse document frequencies were fitted.
func (e *TFIDFEncoder) HasIDF() bool {
	return len(e.idf) > 0
}

// Transform computes the TF-IDF vector of cleaned text.
func (e *TFIDFEncoder) Transform(cleaned string) (domain.FeatureVector, error) {
	if e == nil || len(e.vocabulary) == 0 {
		return domain.FeatureVector{}, errors.New("vectorizer is not fitted")
	}

	counts := map[int]float64{}
	for _, term := range e.terms(cleaned) {
		if idx, ok := e.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := domain.FeatureVector{
		Dim:     len(e.vocabulary),
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	for _, idx := range vec.Indices {
		tf := counts[idx]
		if e.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		if len(e.idf) > 0 {
			tf *= e.idf[idx]
		}
		vec.Values = append(vec.Values, tf)
	}

	normalize(vec.Values, e.norm)
	return vec, nil
}

func (e *TFIDFEncoder) terms(text string) []string {
	tokens := tokenExpr.FindAllString(text, -1)
	if e.minN == 1 && e.maxN == 1 {
		return tokens
	}

	var out []string
	for n := e.minN; n <= e.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func normalize(values []float64, norm string) {
	var total float64
	switch norm {
	case "l2":
		for _, v := range values {
			total += v * v
		}
		total = math.Sqrt(total)
	case "l1":
		for _, v := range values {
			total += math.Abs(v)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
