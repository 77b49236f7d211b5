package ports

import (
	"context"
	"time"

	"NewsChecker/internal/domain"
)

// FeatureEncoder turns cleaned text into the vector space the classifier was trained on.
type FeatureEncoder interface {
	Transform(cleaned string) (domain.FeatureVector, error)
}

// Classifier maps a feature vector to class probabilities and a discrete label.
type Classifier interface {
	PredictProba(ctx context.Context, v domain.FeatureVector) (domain.ClassProbabilities, error)
	Predict(ctx context.Context, v domain.FeatureVector) (int, error)
}

// ArticleExtractor resolves a URL to its title and readable text.
type ArticleExtractor interface {
	Extract(ctx context.Context, rawURL string) (domain.Article, error)
}

// AnalysisRepository persists scored texts for history and deduplication.
type AnalysisRepository interface {
	AlreadyAnalyzed(ctx context.Context, urls []string, since time.Time) (map[string]bool, error)
	SaveAnalysis(ctx context.Context, analysis domain.Analysis) error
	ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error)
}

// Notifier streams alert digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
