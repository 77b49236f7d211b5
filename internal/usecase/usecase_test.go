package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsChecker/internal/credibility"
	"NewsChecker/internal/domain"
)

// keywordEncoder marks texts mentioning "hoax" so keywordClassifier can score them low.
type keywordEncoder struct{}

func (keywordEncoder) Transform(cleaned string) (domain.FeatureVector, error) {
	v := domain.FeatureVector{Dim: 1}
	if strings.Contains(cleaned, "hoax") {
		v.Indices = []int{0}
		v.Values = []float64{1}
	}
	return v, nil
}

type keywordClassifier struct{}

func (keywordClassifier) PredictProba(_ context.Context, v domain.FeatureVector) (domain.ClassProbabilities, error) {
	if len(v.Values) > 0 {
		return domain.ClassProbabilities{Fake: 0.9, Real: 0.1}, nil
	}
	return domain.ClassProbabilities{Fake: 0.1, Real: 0.9}, nil
}

func (c keywordClassifier) Predict(ctx context.Context, v domain.FeatureVector) (int, error) {
	p, _ := c.PredictProba(ctx, v)
	if p.Real > 0.5 {
		return domain.RealClass, nil
	}
	return domain.FakeClass, nil
}

func testModel() *credibility.Model {
	return &credibility.Model{Encoder: keywordEncoder{}, Classifier: keywordClassifier{}}
}

type fakeExtractor struct {
	articles map[string]domain.Article
}

func (f fakeExtractor) Extract(_ context.Context, rawURL string) (domain.Article, error) {
	article, ok := f.articles[rawURL]
	if !ok {
		return domain.Article{}, errors.New("fetch failed")
	}
	article.URL = rawURL
	return article, nil
}

type memoryRepository struct {
	mu       sync.Mutex
	saved    []domain.Analysis
	analyzed map[string]bool
	saveErr  error
}

func (r *memoryRepository) AlreadyAnalyzed(_ context.Context, urls []string, _ time.Time) (map[string]bool, error) {
	out := map[string]bool{}
	for _, u := range urls {
		if r.analyzed[u] {
			out[u] = true
		}
	}
	return out, nil
}

func (r *memoryRepository) SaveAnalysis(_ context.Context, a domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, a)
	return nil
}

func (r *memoryRepository) ListRecent(_ context.Context, limit int) ([]domain.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.saved) {
		limit = len(r.saved)
	}
	return append([]domain.Analysis(nil), r.saved[:limit]...), nil
}

type recordingNotifier struct {
	digests []string
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return nil
}

var fixedNow = time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)

func newTestAnalyzer(repo *memoryRepository, articles map[string]domain.Article) *Analyzer {
	deps := AnalyzerDeps{
		Model:     testModel(),
		Extractor: fakeExtractor{articles: articles},
		Now:       func() time.Time { return fixedNow },
	}
	if repo != nil {
		deps.Repository = repo
	}
	return NewAnalyzer(deps)
}

func TestAnalyzeTextRecordsHistory(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	analyzer := newTestAnalyzer(repo, nil)

	result, err := analyzer.AnalyzeText(context.Background(), "The council approved the budget")
	require.NoError(t, err)
	assert.Equal(t, 90, result.Score)
	assert.Equal(t, domain.StatusReliable, result.Status)

	require.Len(t, repo.saved, 1)
	saved := repo.saved[0]
	assert.Equal(t, domain.SourceText, saved.Source)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, fixedNow, saved.CreatedAt)

	_, err = analyzer.AnalyzeText(context.Background(), "   ")
	assert.ErrorIs(t, err, credibility.ErrEmptyInput)
	assert.Len(t, repo.saved, 1)
}

func TestAnalyzeTextSurvivesStorageFailure(t *testing.T) {
	t.Parallel()

	analyzer := newTestAnalyzer(&memoryRepository{saveErr: errors.New("disk full")}, nil)
	result, err := analyzer.AnalyzeText(context.Background(), "hoax claims spread online")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnreliable, result.Status)
}

func TestAnalyzeURL(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	analyzer := newTestAnalyzer(repo, map[string]domain.Article{
		"https://news.example/a": {Title: "Budget", Text: "The council approved the budget"},
		"https://news.example/e": {Title: "Empty"},
	})

	analysis, err := analyzer.AnalyzeURL(context.Background(), " https://news.example/a ", domain.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, "https://news.example/a", analysis.URL)
	assert.Equal(t, "Budget", analysis.Title)
	assert.Equal(t, domain.SourceURL, analysis.Source)
	require.Len(t, repo.saved, 1)

	_, err = analyzer.AnalyzeURL(context.Background(), "https://news.example/missing", domain.SourceURL)
	assert.Error(t, err)

	_, err = analyzer.AnalyzeURL(context.Background(), "https://news.example/e", domain.SourceURL)
	assert.ErrorIs(t, err, credibility.ErrEmptyInput)

	bare := NewAnalyzer(AnalyzerDeps{Model: testModel()})
	_, err = bare.AnalyzeURL(context.Background(), "https://news.example/a", domain.SourceURL)
	assert.ErrorIs(t, err, ErrExtractorUnavailable)
}

func TestListHistoryLimits(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	for i := 0; i < 120; i++ {
		repo.saved = append(repo.saved, domain.Analysis{ID: "x"})
	}
	analyzer := newTestAnalyzer(repo, nil)

	items, err := analyzer.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, DefaultHistoryLimit)

	items, err = analyzer.ListHistory(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, items, MaxHistoryLimit)

	empty, err := NewAnalyzer(AnalyzerDeps{}).ListHistory(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMonitorRunOnce(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{analyzed: map[string]bool{"https://news.example/seen": true}}
	analyzer := newTestAnalyzer(repo, map[string]domain.Article{
		"https://news.example/good":  {Title: "Budget", Text: "The council approved the budget"},
		"https://news.example/hoax1": {Title: "Miracle", Text: "hoax about a miracle cure"},
		"https://news.example/hoax2": {Text: "another hoax circulates"},
		"https://news.example/seen":  {Text: "hoax already checked"},
	})
	notifier := &recordingNotifier{}

	monitor := NewMonitor(MonitorDeps{
		Analyzer:   analyzer,
		Repository: repo,
		Notifier:   notifier,
		URLs: []string{
			"https://news.example/hoax1",
			"https://news.example/good",
			"https://news.example/broken",
			"https://news.example/seen",
			"https://news.example/hoax2",
			"https://news.example/good",
		},
		Concurrency: 3,
	})

	summary, err := monitor.RunOnce(context.Background(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Checked)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Unreliable, 2)
	assert.Equal(t, "https://news.example/hoax1", summary.Unreliable[0].URL)
	assert.Equal(t, "https://news.example/hoax2", summary.Unreliable[1].URL)
	assert.Len(t, repo.saved, 3)

	require.Len(t, notifier.digests, 1)
	digest := notifier.digests[0]
	assert.True(t, strings.HasPrefix(digest, "2 watched article(s) look unreliable:"))
	assert.Less(t, strings.Index(digest, "Miracle"), strings.Index(digest, "https://news.example/hoax2"))
	assert.Contains(t, digest, "Score: 10/100 (unreliable)")
	assert.NotContains(t, digest, "news.example/good")
}

func TestMonitorWithoutUnreliableSkipsDigest(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	monitor := NewMonitor(MonitorDeps{
		Analyzer: newTestAnalyzer(nil, map[string]domain.Article{
			"https://news.example/good": {Text: "The council approved the budget"},
		}),
		Notifier: notifier,
		URLs:     []string{"https://news.example/good"},
	})

	summary, err := monitor.RunOnce(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Checked)
	assert.Empty(t, notifier.digests)
}

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*3600)
	got := startOfDay(time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC), loc)
	assert.True(t, time.Date(2024, 3, 10, 0, 0, 0, 0, loc).Equal(got))
}

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsMonitor(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	monitor := NewMonitor(MonitorDeps{
		Analyzer: newTestAnalyzer(repo, map[string]domain.Article{
			"https://news.example/good": {Text: "The council approved the budget"},
		}),
		Repository: repo,
		URLs:       []string{"https://news.example/good"},
	})
	driver := &manualDriver{}
	sched := NewScheduler(driver, monitor, nil)

	require.NoError(t, sched.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(fixedNow)
	assert.Len(t, repo.saved, 1)

	require.NoError(t, sched.Stop(context.Background()))
	assert.True(t, driver.stopped)

	assert.NoError(t, NewScheduler(nil, monitor, nil).Start(context.Background()))
}
