package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsChecker/internal/config"
	"NewsChecker/internal/credibility"
	"NewsChecker/internal/domain"
	"NewsChecker/internal/extractor"
	"NewsChecker/internal/usecase"
)

type fixedEncoder struct{}

func (fixedEncoder) Transform(string) (domain.FeatureVector, error) {
	return domain.FeatureVector{Dim: 2, Indices: []int{1}, Values: []float64{1}}, nil
}

type fixedClassifier struct {
	probReal float64
}

func (c fixedClassifier) PredictProba(context.Context, domain.FeatureVector) (domain.ClassProbabilities, error) {
	return domain.ClassProbabilities{Fake: 1 - c.probReal, Real: c.probReal}, nil
}

func (c fixedClassifier) Predict(context.Context, domain.FeatureVector) (int, error) {
	if c.probReal > 0.5 {
		return domain.RealClass, nil
	}
	return domain.FakeClass, nil
}

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, rawURL string) (domain.Article, error) {
	if !strings.HasPrefix(rawURL, "https://") {
		return domain.Article{}, fmt.Errorf("%w: %q", extractor.ErrInvalidURL, rawURL)
	}
	return domain.Article{URL: rawURL, Title: "Budget passes", Text: "According to officials the budget passed."}, nil
}

type memoryRepository struct {
	mu    sync.Mutex
	items []domain.Analysis
}

func (r *memoryRepository) AlreadyAnalyzed(context.Context, []string, time.Time) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (r *memoryRepository) SaveAnalysis(_ context.Context, a domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]domain.Analysis{a}, r.items...)
	return nil
}

func (r *memoryRepository) ListRecent(_ context.Context, limit int) ([]domain.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Analysis(nil), r.items[:min(limit, len(r.items))]...), nil
}

type testEnv struct {
	handler http.Handler
	repo    *memoryRepository
}

func newTestEnv(t *testing.T, model *credibility.Model) testEnv {
	t.Helper()
	repo := &memoryRepository{}
	analyzer := usecase.NewAnalyzer(usecase.AnalyzerDeps{
		Model:      model,
		Extractor:  stubExtractor{},
		Repository: repo,
	})
	srv := New(config.ServerConfig{MaxTextBytes: 64}, analyzer, nil)
	return testEnv{handler: srv.Handler(), repo: repo}
}

func readyModel(probReal float64) *credibility.Model {
	return &credibility.Model{
		Encoder:    fixedEncoder{},
		Classifier: fixedClassifier{probReal: probReal},
		Info:       credibility.ModelInfo{Backend: "local", VocabularySize: 5000, HasIDF: true},
	}
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestIndex(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, readyModel(0.5))
	rr := do(t, env.handler, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `name="news_text"`)

	rr = do(t, env.handler, http.MethodGet, "/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rr := do(t, newTestEnv(t, readyModel(0.5)).handler, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[healthResponse](t, rr)
	assert.Equal(t, healthResponse{
		Status:           "healthy",
		Backend:          "local",
		ModelLoaded:      true,
		VectorizerLoaded: true,
		VocabularySize:   5000,
		HasIDF:           true,
	}, resp)

	rr = do(t, newTestEnv(t, nil).handler, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[healthResponse](t, rr)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.False(t, resp.ModelLoaded)
	assert.False(t, resp.VectorizerLoaded)
	assert.Zero(t, resp.VocabularySize)
}

func TestPredictForm(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, readyModel(0.5))
	form := url.Values{"news_text": {"  Markets steady today  "}}.Encode()
	rr := do(t, env.handler, http.MethodPost, "/predict", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	result := decode[domain.Result](t, rr)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, domain.StatusQuestionable, result.Status)
	assert.Equal(t, domain.VerdictFake, result.ModelPrediction)
	assert.Equal(t, 50.0, result.ConfidenceReal)
	assert.Len(t, env.repo.items, 1)
	assert.Equal(t, domain.SourceText, env.repo.items[0].Source)
}

func TestPredictJSON(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, readyModel(0.65))
	rr := do(t, env.handler, http.MethodPost, "/predict", "application/json; charset=utf-8",
		`{"news_text":"Officials says the bridge reopens"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, float64(75), raw["score"])
	assert.Equal(t, "reliable", raw["status"])
	assert.Equal(t, "REAL", raw["model_prediction"])
	assert.Contains(t, raw, "confidence_fake")
	indicators := raw["indicators"].(map[string]any)
	assert.Equal(t, "Present", indicators["sources"])
	assert.Contains(t, indicators, "factCheck")
}

func TestPredictErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		model       *credibility.Model
		contentType string
		body        string
		status      int
		message     string
	}{
		{"empty form", readyModel(0.5), "application/x-www-form-urlencoded", "news_text=+++", http.StatusBadRequest, "No text provided"},
		{"missing field", readyModel(0.5), "application/x-www-form-urlencoded", "", http.StatusBadRequest, "No text provided"},
		{"bad json", readyModel(0.5), "application/json", "{", http.StatusBadRequest, "No text provided"},
		{"too large", readyModel(0.5), "application/json", `{"news_text":"` + strings.Repeat("a", 65) + `"}`, http.StatusRequestEntityTooLarge, "Text too large"},
		{"no model", nil, "application/json", `{"news_text":"hello"}`, http.StatusInternalServerError, "Model not loaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, tt.model)
			rr := do(t, env.handler, http.MethodPost, "/predict", tt.contentType, tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, decode[errorBody](t, rr).Error)
			assert.Empty(t, env.repo.items)
		})
	}
}

func TestPredictRejectsGet(t *testing.T) {
	t.Parallel()

	rr := do(t, newTestEnv(t, readyModel(0.5)).handler, http.MethodGet, "/predict", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, readyModel(0.5))
	rr := do(t, env.handler, http.MethodPost, "/extract", "application/json", `{"url":"https://news.example/a"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, extractResponse{Title: "Budget passes", Content: "According to officials the budget passed."},
		decode[extractResponse](t, rr))

	rr = do(t, env.handler, http.MethodPost, "/extract", "application/json", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No URL provided", decode[errorBody](t, rr).Error)

	rr = do(t, env.handler, http.MethodPost, "/extract", "application/json", `{"url":"ftp://x"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyzeURL(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, readyModel(0.8))
	rr := do(t, env.handler, http.MethodPost, "/analyze-url", "application/x-www-form-urlencoded", "url=https%3A%2F%2Fnews.example%2Fa")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, "Budget passes", raw["title"])
	assert.Equal(t, "https://news.example/a", raw["url"])
	assert.Equal(t, float64(90), raw["score"])
	require.Len(t, env.repo.items, 1)
	assert.Equal(t, domain.SourceURL, env.repo.items[0].Source)
}

func TestReport(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, readyModel(0.3))
	rr := do(t, env.handler, http.MethodPost, "/report", "application/x-www-form-urlencoded", "news_text=SHOCKING+news")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rr.Body.String(), "Credibility score: 10/100")
	assert.Contains(t, rr.Body.String(), "Status:            Unreliable")
	assert.Empty(t, env.repo.items)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, readyModel(0.5))
	for _, text := range []string{"first", "second", "third"} {
		rr := do(t, env.handler, http.MethodPost, "/predict", "application/json", `{"news_text":"`+text+`"}`)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := do(t, env.handler, http.MethodGet, "/history?limit=2", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[historyResponse](t, rr)
	assert.Len(t, resp.Items, 2)

	rr = do(t, env.handler, http.MethodGet, "/history?limit=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHistoryWithoutRepository(t *testing.T) {
	t.Parallel()

	srv := New(config.ServerConfig{}, usecase.NewAnalyzer(usecase.AnalyzerDeps{}), nil)
	rr := do(t, srv.Handler(), http.MethodGet, "/history", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[]}`, rr.Body.String())
}

func TestRunShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	srv := New(config.ServerConfig{Addr: "127.0.0.1:0"}, usecase.NewAnalyzer(usecase.AnalyzerDeps{}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
