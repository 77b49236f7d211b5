package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsChecker/internal/credibility"
	"NewsChecker/internal/domain"
	"NewsChecker/internal/ports"
)

// History limits applied by ListHistory.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// ErrExtractorUnavailable is returned by URL operations when no extractor is wired.
var ErrExtractorUnavailable = errors.New("article extractor unavailable")

// AnalyzerDeps wires the scoring core with optional driven adapters.
type AnalyzerDeps struct {
	Pipeline   *credibility.Pipeline
	Model      *credibility.Model
	Extractor  ports.ArticleExtractor
	Repository ports.AnalysisRepository
	Logger     *slog.Logger
	Now        func() time.Time
}

// Analyzer scores texts and articles and records them in the history.
type Analyzer struct {
	pipeline   *credibility.Pipeline
	model      *credibility.Model
	extractor  ports.ArticleExtractor
	repository ports.AnalysisRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewAnalyzer constructs the analyzer; Repository and Extractor may be nil.
func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	pipeline := deps.Pipeline
	if pipeline == nil {
		pipeline = credibility.NewPipeline(deps.Logger)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		pipeline:   pipeline,
		model:      deps.Model,
		extractor:  deps.Extractor,
		repository: deps.Repository,
		logger:     deps.Logger,
		now:        now,
	}
}

// Model exposes the loaded model for health reporting.
func (a *Analyzer) Model() *credibility.Model {
	return a.model
}

// ScoreText scores text without recording it.
func (a *Analyzer) ScoreText(ctx context.Context, text string) (domain.Result, error) {
	return a.pipeline.ScoreText(ctx, a.model, text)
}

// AnalyzeText scores submitted text and records it in the history.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (domain.Result, error) {
	result, err := a.ScoreText(ctx, text)
	if err != nil {
		return domain.Result{}, err
	}
	a.record(ctx, domain.Analysis{Source: domain.SourceText, Result: result})
	return result, nil
}

// Extract resolves a URL into title and text.
func (a *Analyzer) Extract(ctx context.Context, rawURL string) (domain.Article, error) {
	if a.extractor == nil {
		return domain.Article{}, ErrExtractorUnavailable
	}
	return a.extractor.Extract(ctx, rawURL)
}

// AnalyzeURL extracts the article behind rawURL, scores it and records it.
func (a *Analyzer) AnalyzeURL(ctx context.Context, rawURL string, source domain.AnalysisSource) (domain.Analysis, error) {
	article, err := a.Extract(ctx, rawURL)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("extract article: %w", err)
	}

	result, err := a.ScoreText(ctx, article.Text)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("score article %s: %w", article.URL, err)
	}

	return a.record(ctx, domain.Analysis{
		Source: source,
		URL:    strings.TrimSpace(rawURL),
		Title:  article.Title,
		Result: result,
	}), nil
}

// ListHistory returns recent analyses, newest first. limit falls back to
// DefaultHistoryLimit when not positive and is capped at MaxHistoryLimit.
func (a *Analyzer) ListHistory(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if a.repository == nil {
		return []domain.Analysis{}, nil
	}

	items, err := a.repository.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

// record stamps and saves the analysis. Storage failures are logged only;
// a scored result is still returned to the caller.
func (a *Analyzer) record(ctx context.Context, analysis domain.Analysis) domain.Analysis {
	analysis.ID = uuid.NewString()
	analysis.CreatedAt = a.now().UTC()

	if a.repository == nil {
		return analysis
	}
	if err := a.repository.SaveAnalysis(ctx, analysis); err != nil && a.logger != nil {
		a.logger.Warn("save analysis failed", "id", analysis.ID, "source", analysis.Source, "error", err)
	}
	return analysis
}
