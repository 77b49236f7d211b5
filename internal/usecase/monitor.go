package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsChecker/internal/domain"
	"NewsChecker/internal/ports"
)

// MonitorDeps wires the watchlist job.
type MonitorDeps struct {
	Analyzer    *Analyzer
	Repository  ports.AnalysisRepository
	Notifier    ports.Notifier
	URLs        []string
	Concurrency int
	Location    *time.Location
	Logger      *slog.Logger
}

// Monitor re-scores a watchlist of article URLs and alerts on unreliable ones.
type Monitor struct {
	analyzer    *Analyzer
	repository  ports.AnalysisRepository
	notifier    ports.Notifier
	urls        []string
	concurrency int
	location    *time.Location
	logger      *slog.Logger
}

// Summary counts the outcome of one monitor run.
type Summary struct {
	Checked    int
	Skipped    int
	Failed     int
	Unreliable []domain.Analysis
}

// NewMonitor constructs the monitor use case.
func NewMonitor(deps MonitorDeps) *Monitor {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Monitor{
		analyzer:    deps.Analyzer,
		repository:  deps.Repository,
		notifier:    deps.Notifier,
		urls:        dedupe(deps.URLs),
		concurrency: concurrency,
		location:    loc,
		logger:      deps.Logger,
	}
}

// RunOnce scores every watched URL not yet analyzed on the day of now and
// publishes one digest of the unreliable ones. A failing URL is counted and
// logged without stopping the others.
func (m *Monitor) RunOnce(ctx context.Context, now time.Time) (Summary, error) {
	var summary Summary
	if m.analyzer == nil || len(m.urls) == 0 {
		return summary, nil
	}

	skip := map[string]bool{}
	if m.repository != nil {
		var err error
		skip, err = m.repository.AlreadyAnalyzed(ctx, m.urls, startOfDay(now, m.location))
		if err != nil {
			return summary, fmt.Errorf("load analyzed: %w", err)
		}
	}

	pending := make([]string, 0, len(m.urls))
	for _, url := range m.urls {
		if skip[url] {
			summary.Skipped++
			continue
		}
		pending = append(pending, url)
	}

	var (
		mu      sync.Mutex
		group   errgroup.Group
		flagged = make([]*domain.Analysis, len(pending))
	)
	group.SetLimit(m.concurrency)

	for i, url := range pending {
		group.Go(func() error {
			analysis, err := m.analyzer.AnalyzeURL(ctx, url, domain.SourceMonitor)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				m.warn("monitor url failed", "url", url, "error", err)
				return nil
			}
			summary.Checked++
			if analysis.Result.Status == domain.StatusUnreliable {
				flagged[i] = &analysis
			}
			return nil
		})
	}
	_ = group.Wait()

	for _, analysis := range flagged {
		if analysis != nil {
			summary.Unreliable = append(summary.Unreliable, *analysis)
		}
	}

	m.info("monitor run finished",
		"checked", summary.Checked,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"unreliable", len(summary.Unreliable))

	if len(summary.Unreliable) == 0 || m.notifier == nil {
		return summary, nil
	}

	if err := m.notifier.PublishDigest(ctx, buildDigestMessage(summary.Unreliable)); err != nil {
		return summary, fmt.Errorf("publish digest: %w", err)
	}
	return summary, nil
}

// buildDigestMessage lists unreliable articles in watchlist order.
func buildDigestMessage(unreliable []domain.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d watched article(s) look unreliable:\n\n", len(unreliable))
	for _, a := range unreliable {
		title := a.Title
		if title == "" {
			title = a.URL
		}
		fmt.Fprintf(&b, "- %s\nScore: %d/100 (%s)\n%s\n\n", title, a.Result.Score, a.Result.Status, a.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func (m *Monitor) info(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Info(msg, args...)
	}
}

func (m *Monitor) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
