// Package server exposes the credibility scorer over HTTP: the form page, the
// JSON prediction API, URL extraction, plain-text reports and history.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"NewsChecker/internal/config"
	"NewsChecker/internal/credibility"
	"NewsChecker/internal/domain"
	"NewsChecker/internal/extractor"
	"NewsChecker/internal/report"
	"NewsChecker/internal/usecase"
)

//go:embed templates/index.html
var indexHTML []byte

const (
	shutdownTimeout = 10 * time.Second
	// Form and JSON encoding can inflate the text; the decoded length is checked separately.
	bodyOverhead = 4
	maxURLBody   = 16 << 10
)

var errTextTooLarge = errors.New("text too large")

// Server is the HTTP front end.
type Server struct {
	cfg      config.ServerConfig
	analyzer *usecase.Analyzer
	logger   *slog.Logger
	mux      *http.ServeMux
	now      func() time.Time
}

// New registers all routes on a fresh mux.
func New(cfg config.ServerConfig, analyzer *usecase.Analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		logger:   logger,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /predict", s.handlePredict)
	s.mux.HandleFunc("POST /extract", s.handleExtract)
	s.mux.HandleFunc("POST /analyze-url", s.handleAnalyzeURL)
	s.mux.HandleFunc("POST /report", s.handleReport)
	s.mux.HandleFunc("GET /history", s.handleHistory)

	return s
}

// Handler returns the routed handler wrapped with panic recovery.
func (s *Server) Handler() http.Handler {
	return s.recoverer(s.mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// --- Handlers ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

type healthResponse struct {
	Status           string `json:"status"`
	Backend          string `json:"backend,omitempty"`
	ModelLoaded      bool   `json:"model_loaded"`
	VectorizerLoaded bool   `json:"vectorizer_loaded"`
	VocabularySize   int    `json:"vocabulary_size"`
	HasIDF           bool   `json:"has_idf"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	model := s.analyzer.Model()
	resp := healthResponse{
		Status:           "unhealthy",
		ModelLoaded:      model.ClassifierLoaded(),
		VectorizerLoaded: model.EncoderLoaded(),
	}
	if model.Ready() {
		resp.Status = "healthy"
	}
	if model.EncoderLoaded() {
		resp.Backend = model.Info.Backend
		resp.VocabularySize = model.Info.VocabularySize
		resp.HasIDF = model.Info.HasIDF
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	text, err := s.readNewsText(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.analyzer.AnalyzeText(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	text, err := s.readNewsText(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.analyzer.ScoreText(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	now := s.now()
	body := report.Render(result, report.Meta{
		TextLength:  len([]rune(text)),
		AnalyzedAt:  now,
		GeneratedAt: now,
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="credibility-report.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

type urlRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := s.readURL(w, r)
	if !ok {
		return
	}

	article, err := s.analyzer.Extract(r.Context(), rawURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{Title: article.Title, Content: article.Text})
}

type analyzeURLResponse struct {
	domain.Result
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (s *Server) handleAnalyzeURL(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := s.readURL(w, r)
	if !ok {
		return
	}

	analysis, err := s.analyzer.AnalyzeURL(r.Context(), rawURL, domain.SourceURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeURLResponse{
		Result: analysis.Result,
		Title:  analysis.Title,
		URL:    analysis.URL,
	})
}

type historyResponse struct {
	Items []domain.Analysis `json:"items"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	items, err := s.analyzer.ListHistory(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Items: items})
}

// --- Request decoding ---

type newsTextRequest struct {
	NewsText string `json:"news_text"`
}

// readNewsText accepts either a JSON body or a form field named news_text.
func (s *Server) readNewsText(w http.ResponseWriter, r *http.Request) (string, error) {
	if s.cfg.MaxTextBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxTextBytes*bodyOverhead+4096))
	}

	var text string
	if isJSON(r) {
		var req newsTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if isTooLarge(err) {
				return "", errTextTooLarge
			}
			return "", credibility.ErrEmptyInput
		}
		text = req.NewsText
	} else {
		if err := parseForm(r); err != nil {
			if isTooLarge(err) {
				return "", errTextTooLarge
			}
			return "", credibility.ErrEmptyInput
		}
		text = r.PostFormValue("news_text")
	}

	text = strings.TrimSpace(text)
	if s.cfg.MaxTextBytes > 0 && len(text) > s.cfg.MaxTextBytes {
		return "", errTextTooLarge
	}
	return text, nil
}

func (s *Server) readURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxURLBody)

	var req urlRequest
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return "", false
		}
	} else {
		req.URL = r.PostFormValue("url")
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No URL provided"})
		return "", false
	}
	return req.URL, true
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func isJSON(r *http.Request) bool {
	return mediaType(r) == "application/json"
}

func parseForm(r *http.Request) error {
	if mediaType(r) == "multipart/form-data" {
		return r.ParseMultipartForm(1 << 20)
	}
	return r.ParseForm()
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// --- Responses ---

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case credibility.IsClientError(err), errors.Is(err, extractor.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, errTextTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, usecase.ErrExtractorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: errorMessage(err)})
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, credibility.ErrEmptyInput):
		return "No text provided"
	case errors.Is(err, credibility.ErrModelUnavailable):
		return "Model not loaded"
	case errors.Is(err, errTextTooLarge):
		return "Text too large"
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
