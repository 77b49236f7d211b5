package model

import (
	"context"
	"errors"
	"fmt"
	"math"

	"NewsChecker/internal/domain"
	"NewsChecker/internal/ports"
)

// LogisticRegression is a fitted binary linear classifier over TF-IDF features.
type LogisticRegression struct {
	classes   [2]int
	coef      []float64
	intercept float64
}

var _ ports.Classifier = (*LogisticRegression)(nil)

// NewLogisticRegression validates the spec against the expected feature dimension.
func NewLogisticRegression(spec LogisticSpec, dim int) (*LogisticRegression, error) {
	if len(spec.Classes) != 2 {
		return nil, fmt.Errorf("expected 2 classes, got %d", len(spec.Classes))
	}
	if !isClassPair(spec.Classes[0], spec.Classes[1]) {
		return nil, fmt.Errorf("classes must be {%d, %d}, got %v", domain.FakeClass, domain.RealClass, spec.Classes)
	}
	if len(spec.Coef) != dim {
		return nil, fmt.Errorf("coefficient count %d does not match feature dimension %d", len(spec.Coef), dim)
	}

	return &LogisticRegression{
		classes:   [2]int{spec.Classes[0], spec.Classes[1]},
		coef:      spec.Coef,
		intercept: spec.Intercept,
	}, nil
}

// PredictProba returns the class distribution for one vector.
func (m *LogisticRegression) PredictProba(_ context.Context, v domain.FeatureVector) (domain.ClassProbabilities, error) {
	z, err := m.decision(v)
	if err != nil {
		return domain.ClassProbabilities{}, err
	}

	positive := sigmoid(z)
	probs := domain.ClassProbabilities{Fake: 1 - positive, Real: positive}
	if m.classes[1] == domain.FakeClass {
		probs.Fake, probs.Real = probs.Real, probs.Fake
	}
	return probs, nil
}

// Predict returns the label of the positive class when the decision is above zero.
func (m *LogisticRegression) Predict(_ context.Context, v domain.FeatureVector) (int, error) {
	z, err := m.decision(v)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return m.classes[1], nil
	}
	return m.classes[0], nil
}

func (m *LogisticRegression) decision(v domain.FeatureVector) (float64, error) {
	if m == nil || len(m.coef) == 0 {
		return 0, errors.New("classifier is not fitted")
	}
	if v.Dim != len(m.coef) {
		return 0, fmt.Errorf("feature dimension %d does not match model dimension %d", v.Dim, len(m.coef))
	}
	if len(v.Indices) != len(v.Values) {
		return 0, fmt.Errorf("malformed vector: %d indices, %d values", len(v.Indices), len(v.Values))
	}

	z := m.intercept
	for i, idx := range v.Indices {
		if idx < 0 || idx >= len(m.coef) {
			return 0, fmt.Errorf("feature index %d out of range", idx)
		}
		z += m.coef[idx] * v.Values[i]
	}
	return z, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func isClassPair(a, b int) bool {
	return (a == domain.FakeClass && b == domain.RealClass) || (a == domain.RealClass && b == domain.FakeClass)
}
