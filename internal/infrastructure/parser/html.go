package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsChecker/internal/domain"
	"NewsChecker/internal/extractor"
)

var paragraphScopes = []string{"article p", "main p", "[role=main] p", "body p"}

// HTMLParser reads the title and paragraphs straight from the DOM. It is the
// fallback for pages readability cannot score.
type HTMLParser struct{}

var _ extractor.Parser = HTMLParser{}

// Name identifies the strategy inside the registry.
func (HTMLParser) Name() string {
	return "html"
}

// Parse collects the page title and paragraph text.
func (HTMLParser) Parse(_ context.Context, page extractor.Page) (domain.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script, style, noscript, nav, footer, aside").Remove()

	return domain.Article{
		Title: pageTitle(doc),
		Text:  pageText(doc),
	}, nil
}

func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := collapse(og); title != "" {
			return title
		}
	}
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return collapse(doc.Find("h1").First().Text())
}

func pageText(doc *goquery.Document) string {
	for _, scope := range paragraphScopes {
		var paragraphs []string
		doc.Find(scope).Each(func(_ int, p *goquery.Selection) {
			if text := collapse(p.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return collapse(doc.Find("body").Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
