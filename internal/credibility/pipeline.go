package credibility

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"NewsChecker/internal/domain"
)

const logPreviewLen = 100

// Pipeline turns raw text into a credibility Result. It holds no mutable state;
// the model is supplied on each call.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline builds the scoring pipeline; a nil logger disables debug output.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// ScoreText normalizes, encodes and classifies text, then fuses the classifier
// output with the heuristic indicators. It either returns a complete Result or
// one error from the package taxonomy, never both.
func (p *Pipeline) ScoreText(ctx context.Context, model *Model, text string) (result domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.Result{}
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if strings.TrimSpace(text) == "" {
		return domain.Result{}, ErrEmptyInput
	}
	if !model.EncoderLoaded() {
		return domain.Result{}, fmt.Errorf("%w: vectorizer unavailable", ErrModelUnavailable)
	}
	if !model.ClassifierLoaded() {
		return domain.Result{}, fmt.Errorf("%w: classifier unavailable", ErrModelUnavailable)
	}

	p.debug("processing prediction", "input", preview(text))

	cleaned := Normalize(text)
	p.debug("cleaned text", "cleaned", preview(cleaned))

	vector, err := model.Encoder.Transform(cleaned)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	p.debug("vectorized", "dim", vector.Dim, "nnz", len(vector.Indices))

	proba, err := model.Classifier.PredictProba(ctx, vector)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	if !finite(proba.Real) || !finite(proba.Fake) {
		return domain.Result{}, fmt.Errorf("%w: non-finite probabilities %v/%v", ErrClassification, proba.Fake, proba.Real)
	}
	prediction, err := model.Classifier.Predict(ctx, vector)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	p.debug("classified", "prediction", prediction, "prob_fake", proba.Fake, "prob_real", proba.Real)

	flags := AnalyzeIndicators(text)
	score := FuseScore(proba.Real, flags)
	status := ClassifyStatus(score)

	verdict := domain.VerdictFake
	if prediction == domain.RealClass {
		verdict = domain.VerdictReal
	}

	result = domain.Result{
		Score:           score,
		Status:          status,
		Indicators:      PresentIndicators(flags, score),
		Recommendations: Recommend(status),
		ModelPrediction: verdict,
		ConfidenceReal:  roundPercent(proba.Real),
		ConfidenceFake:  roundPercent(proba.Fake),
	}
	p.debug("scored", "score", result.Score, "status", result.Status)
	return result, nil
}

// roundPercent converts a probability to a percentage rounded to 2 decimals.
// Rounding goes through the decimal formatter so halves resolve on the exact
// binary value; it is not reconciled with the truncated integer score.
func roundPercent(prob float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(prob*100, 'f', 2, 64), 64)
	if err != nil {
		return prob * 100
	}
	return rounded
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= logPreviewLen {
		return text
	}
	return string(runes[:logPreviewLen]) + "..."
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p != nil && p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
