package compare

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai/mock"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCompareRepos(t *testing.T) (storage.DocumentRepository, storage.ArticleRepository) {
	t.Helper()

	docRepo, articleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		articleRepo.Close()
		docRepo.Close()
		backend.Close()
	})

	return docRepo, articleRepo
}

type seedArticle struct {
	theme    string
	subTheme string
	content  string
}

func seedComparisonDocument(t *testing.T, docRepo storage.DocumentRepository,
	articleRepo storage.ArticleRepository, name string, seeds []seedArticle) core.ID {
	t.Helper()

	ctx := context.Background()
	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Id:   core.IDFromContent(name),
		Name: name,
	})
	require.NoError(t, err)

	articles := make([]*core.Article, 0, len(seeds))
	for i, seed := range seeds {
		articles = append(articles, &core.Article{
			DocumentId: doc.Id,
			Seq:        i,
			Theme:      seed.theme,
			Label:      fmt.Sprintf("Article %d", i+1),
			SubTheme:   seed.subTheme,
			Content:    seed.content,
		})
	}
	if len(articles) > 0 {
		_, err = articleRepo.AddArticles(ctx, articles...)
		require.NoError(t, err)
	}

	return doc.Id
}

// scriptedCompleter answers match, analysis and summary prompts with
// recognizable canned replies.
func scriptedCompleter(matches map[string]string) *mock.MockCompleter {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, _, user string) (string, error) {
		switch {
		case strings.Contains(user, "List of old sub-themes:"):
			for needle, reply := range matches {
				if strings.Contains(user, "Sub-theme from latest document:\n"+needle) {
					return reply, nil
				}
			}
			return NoneSentinel, nil
		case strings.Contains(user, "Old proposed content:"):
			return "analysis of changes", nil
		case strings.Contains(user, "summary of the analysis of theme"):
			return "theme summary", nil
		default:
			return "document summary", nil
		}
	}
	return completer
}

func newTestComparer(t *testing.T, docRepo storage.DocumentRepository,
	articleRepo storage.ArticleRepository, completer *mock.MockCompleter) *Comparer {
	t.Helper()

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), completer)
	comparer, err := NewComparer(docRepo, articleRepo, provider,
		WithRetry(2, time.Millisecond))
	require.NoError(t, err)

	return comparer
}

func TestNewComparer(t *testing.T) {
	docRepo, articleRepo := setupCompareRepos(t)
	provider := mock.NewMockProvider()

	t.Run("valid", func(t *testing.T) {
		comparer, err := NewComparer(docRepo, articleRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, comparer)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewComparer(nil, articleRepo, provider)
		assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)
	})

	t.Run("nil article repository", func(t *testing.T) {
		_, err := NewComparer(docRepo, nil, provider)
		assert.ErrorIs(t, err, ErrArticleRepositoryRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewComparer(docRepo, articleRepo, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("invalid retry", func(t *testing.T) {
		_, err := NewComparer(docRepo, articleRepo, provider, WithRetry(0, time.Second))
		assert.Error(t, err)
	})
}

func TestCompare(t *testing.T) {
	docRepo, articleRepo := setupCompareRepos(t)
	ctx := context.Background()

	oldID := seedComparisonDocument(t, docRepo, articleRepo, "emir-2012", []seedArticle{
		{theme: "Governance", subTheme: "Scope", content: "old scope text"},
		{theme: "Governance", subTheme: "Definitions", content: "old definitions text"},
	})
	// Theme punctuation and casing differ between versions on purpose.
	newID := seedComparisonDocument(t, docRepo, articleRepo, "emir-refit-2019", []seedArticle{
		{theme: "GOVERNANCE.", subTheme: "Scope", content: "new scope text"},
		{theme: "GOVERNANCE.", subTheme: "Reporting", content: "new reporting text"},
	})

	completer := scriptedCompleter(map[string]string{
		"scope":     "Scope",
		"reporting": NoneSentinel,
	})
	comparer := newTestComparer(t, docRepo, articleRepo, completer)

	report, err := comparer.Compare(ctx, oldID, newID)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "emir-2012", report.OldDocument)
	assert.Equal(t, "emir-refit-2019", report.NewDocument)
	assert.False(t, report.GeneratedAt.IsZero())

	require.Len(t, report.Themes, 1)
	theme := report.Themes[0]
	assert.Equal(t, "governance", theme.Theme)
	assert.Equal(t, "theme summary", theme.Summary)
	require.Len(t, theme.SubThemes, 1)
	assert.Equal(t, "scope", theme.SubThemes[0].OldSubTheme)
	assert.Equal(t, "scope", theme.SubThemes[0].NewSubTheme)
	assert.Equal(t, "analysis of changes", theme.SubThemes[0].Analysis)

	require.Len(t, report.NotFound, 1)
	assert.Equal(t, "governance", report.NotFound[0].Theme)
	assert.Equal(t, "reporting", report.NotFound[0].SubTheme)
	assert.Equal(t, "new reporting text", report.NotFound[0].Content)

	assert.Equal(t, "document summary", report.DocumentSummary)
}

func TestCompare_AllUnmatched(t *testing.T) {
	docRepo, articleRepo := setupCompareRepos(t)
	ctx := context.Background()

	oldID := seedComparisonDocument(t, docRepo, articleRepo, "old-doc", []seedArticle{
		{theme: "Penalties", subTheme: "Sanctions", content: "old sanctions text"},
	})
	newID := seedComparisonDocument(t, docRepo, articleRepo, "new-doc", []seedArticle{
		{theme: "Oversight", subTheme: "Supervision", content: "new supervision text"},
	})

	completer := scriptedCompleter(nil)
	comparer := newTestComparer(t, docRepo, articleRepo, completer)

	report, err := comparer.Compare(ctx, oldID, newID)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Empty(t, report.Themes)
	assert.Empty(t, report.DocumentSummary)
	require.Len(t, report.NotFound, 1)
	assert.Equal(t, "supervision", report.NotFound[0].SubTheme)
}

func TestCompare_DocumentNotFound(t *testing.T) {
	docRepo, articleRepo := setupCompareRepos(t)
	comparer := newTestComparer(t, docRepo, articleRepo, scriptedCompleter(nil))

	_, err := comparer.Compare(context.Background(), core.ID(1), core.ID(2))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCompare_NoArticles(t *testing.T) {
	docRepo, articleRepo := setupCompareRepos(t)
	ctx := context.Background()

	oldID := seedComparisonDocument(t, docRepo, articleRepo, "populated", []seedArticle{
		{theme: "Governance", subTheme: "Scope", content: "text"},
	})
	emptyID := seedComparisonDocument(t, docRepo, articleRepo, "empty", nil)

	comparer := newTestComparer(t, docRepo, articleRepo, scriptedCompleter(nil))

	_, err := comparer.Compare(ctx, oldID, emptyID)
	assert.ErrorIs(t, err, ErrNoArticles)

	_, err = comparer.Compare(ctx, emptyID, oldID)
	assert.ErrorIs(t, err, ErrNoArticles)
}

func TestCompare_CompletionFailure(t *testing.T) {
	docRepo, articleRepo := setupCompareRepos(t)
	ctx := context.Background()

	oldID := seedComparisonDocument(t, docRepo, articleRepo, "old-doc", []seedArticle{
		{theme: "Governance", subTheme: "Scope", content: "old text"},
	})
	newID := seedComparisonDocument(t, docRepo, articleRepo, "new-doc", []seedArticle{
		{theme: "Governance", subTheme: "Scope", content: "new text"},
	})

	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(_ context.Context, _, _ string) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}
	comparer := newTestComparer(t, docRepo, articleRepo, completer)

	report, err := comparer.Compare(ctx, oldID, newID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")

	// Partial report is still returned so successful work is not discarded.
	require.NotNil(t, report)
	assert.Empty(t, report.Themes)
	assert.Empty(t, report.NotFound)
}

type recordingCompareMonitor struct {
	mu          sync.Mutex
	runID       string
	oldDocument string
	newDocument string
	started     []string
	matched     []string
	unmatched   []string
	summarized  []string
	finished    bool
}

func (m *recordingCompareMonitor) Start(runID string, oldDocument, newDocument string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runID = runID
	m.oldDocument = oldDocument
	m.newDocument = newDocument
}

func (m *recordingCompareMonitor) ThemeStarted(theme string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, theme)
}

func (m *recordingCompareMonitor) SubThemeMatched(theme, newSubTheme, oldSubTheme string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matched = append(m.matched, newSubTheme+"->"+oldSubTheme)
}

func (m *recordingCompareMonitor) SubThemeUnmatched(theme, subTheme string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unmatched = append(m.unmatched, subTheme)
}

func (m *recordingCompareMonitor) ThemeSummarized(theme string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summarized = append(m.summarized, theme)
}

func (m *recordingCompareMonitor) Finish(_ *ComparisonReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = true
}

func TestCompareWithMonitor(t *testing.T) {
	docRepo, articleRepo := setupCompareRepos(t)
	ctx := context.Background()

	oldID := seedComparisonDocument(t, docRepo, articleRepo, "old-doc", []seedArticle{
		{theme: "Governance", subTheme: "Scope", content: "old text"},
	})
	newID := seedComparisonDocument(t, docRepo, articleRepo, "new-doc", []seedArticle{
		{theme: "Governance", subTheme: "Scope", content: "new text"},
		{theme: "Governance", subTheme: "Reporting", content: "reporting text"},
	})

	completer := scriptedCompleter(map[string]string{"scope": "Scope"})
	comparer := newTestComparer(t, docRepo, articleRepo, completer)

	monitor := &recordingCompareMonitor{}
	report, err := comparer.CompareWithMonitor(ctx, oldID, newID, monitor)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, report.RunID, monitor.runID)
	assert.Equal(t, "old-doc", monitor.oldDocument)
	assert.Equal(t, "new-doc", monitor.newDocument)
	assert.Equal(t, []string{"governance"}, monitor.started)
	assert.Equal(t, []string{"scope->scope"}, monitor.matched)
	assert.Equal(t, []string{"reporting"}, monitor.unmatched)
	assert.Equal(t, []string{"governance"}, monitor.summarized)
	assert.True(t, monitor.finished)
}

func TestNormalizeTheme(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "GOVERNANCE", "governance"},
		{"strips periods", "Title I. Scope.", "title i scope"},
		{"trims whitespace", "  oversight  ", "oversight"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeTheme(tt.input))
		})
	}
}
