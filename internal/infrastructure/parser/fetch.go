package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"NewsChecker/internal/extractor"
)

const maxPageBytes = 5 << 20

func fetchPage(ctx context.Context, client *http.Client, pageURL *url.URL, userAgent string) (extractor.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return extractor.Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return extractor.Page{}, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return extractor.Page{}, fmt.Errorf("%s returned %s", pageURL.Host, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return extractor.Page{}, fmt.Errorf("read document: %w", err)
	}

	final := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}

	return extractor.Page{
		URL:         final,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
