package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-shiori/go-readability"

	"NewsChecker/internal/domain"
	"NewsChecker/internal/extractor"
)

// ReadabilityParser extracts the main article body the way reader views do.
type ReadabilityParser struct{}

var _ extractor.Parser = ReadabilityParser{}

// Name identifies the strategy inside the registry.
func (ReadabilityParser) Name() string {
	return "readability"
}

// Parse runs readability over the downloaded page.
func (ReadabilityParser) Parse(_ context.Context, page extractor.Page) (domain.Article, error) {
	article, err := readability.FromReader(bytes.NewReader(page.Body), page.URL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse content: %w", err)
	}

	return domain.Article{
		Title: strings.TrimSpace(article.Title),
		Text:  strings.TrimSpace(article.TextContent),
	}, nil
}
