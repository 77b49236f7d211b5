package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"NewsChecker/internal/config"
	"NewsChecker/internal/domain"
	"NewsChecker/internal/extractor"
	"NewsChecker/internal/ports"
)

// StrategyExtractor implements ArticleExtractor via registered parser strategies.
type StrategyExtractor struct {
	registry  *extractor.Registry
	client    *http.Client
	preferred string
	userAgent string
	maxBytes  int
	logger    *slog.Logger
}

var _ ports.ArticleExtractor = (*StrategyExtractor)(nil)

// NewStrategyExtractor wires the parser registry with extractor settings.
// A nil client gets one with the configured timeout.
func NewStrategyExtractor(reg *extractor.Registry, cfg config.ExtractorConfig, client *http.Client, log *slog.Logger) *StrategyExtractor {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &StrategyExtractor{
		registry:  reg,
		client:    client,
		preferred: cfg.Strategy,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxContentBytes,
		logger:    log,
	}
}

// NewDefaultRegistry registers the readability and plain HTML parsers.
func NewDefaultRegistry() *extractor.Registry {
	reg := extractor.NewRegistry()
	reg.Register(ReadabilityParser{})
	reg.Register(HTMLParser{})
	return reg
}

// Extract downloads the page once and tries each parser until one yields text.
func (s *StrategyExtractor) Extract(ctx context.Context, rawURL string) (domain.Article, error) {
	if s.registry == nil {
		return domain.Article{}, fmt.Errorf("parser registry is not configured")
	}

	pageURL, err := parseArticleURL(rawURL)
	if err != nil {
		return domain.Article{}, err
	}

	s.debug("extract", "url", pageURL.String())
	page, err := fetchPage(ctx, s.client, pageURL, s.userAgent)
	if err != nil {
		return domain.Article{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	var errs []error
	for _, parser := range s.registry.Chain(s.preferred) {
		article, err := parser.Parse(ctx, page)
		if err != nil {
			s.debug("parser failed", "parser", parser.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", parser.Name(), err))
			continue
		}
		if article.Text == "" {
			s.debug("parser found no text", "parser", parser.Name())
			errs = append(errs, fmt.Errorf("%s: no readable text", parser.Name()))
			continue
		}

		article.URL = pageURL.String()
		article.Text = truncate(article.Text, s.maxBytes)
		s.debug("extracted", "parser", parser.Name(), "title", article.Title, "bytes", len(article.Text))
		return article, nil
	}

	return domain.Article{}, fmt.Errorf("extract %s: %w", pageURL, errors.Join(errs...))
}

func parseArticleURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", extractor.ErrInvalidURL, rawURL)
	}
	return parsed, nil
}

// truncate cuts text to at most limit bytes without splitting a rune.
func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.TrimSpace(text[:cut])
}

func (s *StrategyExtractor) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
