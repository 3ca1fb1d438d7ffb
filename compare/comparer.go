// Copyright 2025 FINOS
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/ingest"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// NoneSentinel is the completion reply that marks an unmatched sub-theme.
const NoneSentinel = "None"

const summarySystemPrompt = "You are an expert in regulatory documents."

// Comparer produces comparison reports between two ingested documents.
type Comparer struct {
	documentRepository storage.DocumentRepository
	articleRepository  storage.ArticleRepository
	completer          ai.Completer
	poolSize           int
	maxRetries         int
	retryDelay         time.Duration
	logger             *slog.Logger
}

// Option configures a Comparer.
type Option func(*Comparer) error

// WithPoolSize sets the worker pool size for concurrent sub-theme matching.
// Default is 4.
func WithPoolSize(size int) Option {
	return func(c *Comparer) error {
		if size < 1 {
			size = 1
		}
		c.poolSize = size
		return nil
	}
}

// WithRetry sets the per-call retry policy for completion requests.
// Defaults are 3 attempts with a 1 second base delay.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Comparer) error {
		if maxRetries < 1 {
			return errors.New("max retries must be greater than zero")
		}
		c.maxRetries = maxRetries
		c.retryDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Comparer) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewComparer creates a new comparer.
func NewComparer(
	documentRepository storage.DocumentRepository,
	articleRepository storage.ArticleRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Comparer, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if articleRepository == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	c := &Comparer{
		documentRepository: documentRepository,
		articleRepository:  articleRepository,
		completer:          provider.Completer(),
		poolSize:           4,
		maxRetries:         3,
		retryDelay:         1 * time.Second,
		logger:             slog.Default().With("component", "comparer"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// themeGroup carries one theme of the new document with its sub-themes.
type themeGroup struct {
	theme     string
	subThemes []string
}

// documentView is a theme/sub-theme index over a document's articles.
type documentView struct {
	groups  []themeGroup
	content map[string]string // lowercased sub-theme -> content
	subsBy  map[string][]string
}

// normalizeTheme lowercases a theme and strips periods so that minor
// punctuation differences between versions do not break grouping.
func normalizeTheme(theme string) string {
	return strings.TrimSpace(strings.ToLower(strings.ReplaceAll(theme, ".", "")))
}

// buildView indexes articles by normalized theme and lowercased sub-theme.
func buildView(articles []*core.Article) *documentView {
	view := &documentView{
		content: make(map[string]string),
		subsBy:  make(map[string][]string),
	}

	seenTheme := make(map[string]bool)
	seenSub := make(map[string]bool)

	for _, article := range articles {
		theme := normalizeTheme(article.Theme)
		sub := strings.ToLower(strings.TrimSpace(article.SubTheme))
		if sub == "" {
			continue
		}

		if !seenTheme[theme] {
			seenTheme[theme] = true
			view.groups = append(view.groups, themeGroup{theme: theme})
		}

		if !seenSub[theme+"\x00"+sub] {
			seenSub[theme+"\x00"+sub] = true
			view.subsBy[theme] = append(view.subsBy[theme], sub)
			for i := range view.groups {
				if view.groups[i].theme == theme {
					view.groups[i].subThemes = append(view.groups[i].subThemes, sub)
				}
			}
		}

		if _, ok := view.content[sub]; !ok {
			view.content[sub] = article.Content
		}
	}

	return view
}

// Compare builds a comparison report for the two documents.
// See CompareWithMonitor.
func (c *Comparer) Compare(ctx context.Context, oldDocID, newDocID core.ID) (*ComparisonReport, error) {
	return c.CompareWithMonitor(ctx, oldDocID, newDocID, nil)
}

// CompareWithMonitor builds a comparison report for the two documents,
// reporting progress through the monitor.
// Per-item completion failures do not abort the run; they are joined and
// returned together with the (partial) report. The report is nil only when
// the documents or their articles cannot be loaded.
func (c *Comparer) CompareWithMonitor(ctx context.Context, oldDocID, newDocID core.ID, monitor Monitor) (*ComparisonReport, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	oldDoc, err := c.documentRepository.GetDocument(ctx, oldDocID)
	if err != nil {
		return nil, fmt.Errorf("loading old document: %w", err)
	}
	newDoc, err := c.documentRepository.GetDocument(ctx, newDocID)
	if err != nil {
		return nil, fmt.Errorf("loading new document: %w", err)
	}

	oldArticles, err := c.articleRepository.GetArticlesByDocument(ctx, oldDocID)
	if err != nil {
		return nil, err
	}
	newArticles, err := c.articleRepository.GetArticlesByDocument(ctx, newDocID)
	if err != nil {
		return nil, err
	}
	if len(oldArticles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoArticles, oldDoc.Name)
	}
	if len(newArticles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoArticles, newDoc.Name)
	}

	oldView := buildView(oldArticles)
	newView := buildView(newArticles)

	report := &ComparisonReport{
		RunID:       uuid.NewString(),
		OldDocument: oldDoc.Name,
		NewDocument: newDoc.Name,
		GeneratedAt: time.Now().UTC(),
	}
	monitor.Start(report.RunID, oldDoc.Name, newDoc.Name)

	pool, err := ants.NewPool(c.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		itemErrs []error
		analyses []SubThemeAnalysis
		notFound []UnmatchedSubTheme
	)

	for _, group := range newView.groups {
		group := group
		oldSubs := oldView.subsBy[group.theme]

		c.logger.Info("checking theme", "theme", group.theme, "subThemes", len(group.subThemes))
		monitor.ThemeStarted(group.theme, len(group.subThemes))

		var wg sync.WaitGroup
		for _, subTheme := range group.subThemes {
			subTheme := subTheme
			wg.Add(1)
			task := func() {
				defer wg.Done()
				analysis, unmatched, err := c.compareSubTheme(ctx, group.theme, subTheme, oldSubs, oldView, newView, monitor)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					itemErrs = append(itemErrs, fmt.Errorf("sub-theme %q: %w", subTheme, err))
				case unmatched != nil:
					notFound = append(notFound, *unmatched)
				default:
					analyses = append(analyses, *analysis)
				}
			}
			if err := pool.Submit(task); err != nil {
				task()
			}
		}
		wg.Wait()
	}

	// Theme-level summaries from the grouped sub-theme analyses
	for _, group := range newView.groups {
		var themeAnalyses []SubThemeAnalysis
		for _, analysis := range analyses {
			if analysis.Theme == group.theme {
				themeAnalyses = append(themeAnalyses, analysis)
			}
		}
		if len(themeAnalyses) == 0 {
			continue
		}

		summary, err := c.complete(ctx, summarySystemPrompt, buildThemeSummaryPrompt(group.theme, themeAnalyses))
		if err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("theme summary %q: %w", group.theme, err))
		}
		report.Themes = append(report.Themes, ThemeSummary{
			Theme:     group.theme,
			Summary:   summary,
			SubThemes: themeAnalyses,
		})
		c.logger.Info("theme level analysis completed", "theme", group.theme)
		monitor.ThemeSummarized(group.theme)
	}
	report.NotFound = notFound

	// Document-level summary from the theme summaries
	if len(report.Themes) > 0 {
		summary, err := c.complete(ctx, summarySystemPrompt, buildDocumentSummaryPrompt(report.Themes))
		if err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("document summary: %w", err))
		}
		report.DocumentSummary = summary
		c.logger.Info("document level analysis completed")
	}

	monitor.Finish(report)
	return report, errors.Join(itemErrs...)
}

// compareSubTheme matches one new sub-theme against the old document and, on
// a match, produces its change analysis.
func (c *Comparer) compareSubTheme(ctx context.Context, theme, subTheme string, oldSubs []string,
	oldView, newView *documentView, monitor Monitor) (*SubThemeAnalysis, *UnmatchedSubTheme, error) {
	reply, err := c.complete(ctx, matchSystemPrompt, buildMatchPrompt(subTheme, oldSubs))
	if err != nil {
		return nil, nil, err
	}

	ident := strings.Trim(strings.TrimSpace(reply), "'\"")

	newContent, ok := newView.content[subTheme]
	if !ok {
		newContent = "No content found"
	}

	if strings.EqualFold(ident, NoneSentinel) || ident == "" {
		c.logger.Info("sub-theme not found", "theme", theme, "subTheme", subTheme)
		monitor.SubThemeUnmatched(theme, subTheme)
		return nil, &UnmatchedSubTheme{Theme: theme, SubTheme: subTheme, Content: newContent}, nil
	}

	c.logger.Info("sub-theme match found", "theme", theme, "subTheme", subTheme, "oldSubTheme", ident)
	monitor.SubThemeMatched(theme, subTheme, ident)

	oldContent, ok := oldView.content[strings.ToLower(ident)]
	if !ok {
		oldContent = "No content found"
	}

	analysis, err := c.complete(ctx, analysisSystemPrompt, buildAnalysisPrompt(oldContent, newContent))
	if err != nil {
		return nil, nil, err
	}

	return &SubThemeAnalysis{
		Theme:       theme,
		OldSubTheme: strings.ToLower(ident),
		NewSubTheme: subTheme,
		Analysis:    analysis,
	}, nil, nil
}

// complete calls the completion service with retry and a small random pause
// afterwards to avoid hammering rate limits.
func (c *Comparer) complete(ctx context.Context, system, user string) (string, error) {
	var reply string
	err := ingest.RetryWithBackoff(ctx, func() error {
		var callErr error
		reply, callErr = c.completer.Complete(ctx, system, user)
		return callErr
	}, c.maxRetries, c.retryDelay)
	if err != nil {
		return "", err
	}

	sleepJitter(ctx)
	return reply, nil
}

// sleepJitter pauses 100-300ms, returning early if the context is done.
func sleepJitter(ctx context.Context) {
	delay := time.Duration(100+rand.Intn(200)) * time.Millisecond
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
