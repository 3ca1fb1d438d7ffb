package search

import (
	"context"
	"errors"
	"testing"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai/mock"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMonitor struct {
	started       bool
	query         string
	documentID    core.ID
	embedded      bool
	similarityIDs []uint64
	boosted       []*core.Chunk
	finished      bool
	resultCount   int
}

func (m *recordingMonitor) Start(query string, documentID core.ID) {
	m.started = true
	m.query = query
	m.documentID = documentID
}
func (m *recordingMonitor) AfterQueryEmbedding(_ []float32) { m.embedded = true }
func (m *recordingMonitor) AfterSimilaritySearch(ids []uint64) {
	m.similarityIDs = ids
}
func (m *recordingMonitor) VerbatimBoost(chunk *core.Chunk) {
	m.boosted = append(m.boosted, chunk)
}
func (m *recordingMonitor) Finish(results []*core.SearchResult) {
	m.finished = true
	m.resultCount = len(results)
}

func setupSearchRepos(t *testing.T) (storage.DocumentRepository, storage.ArticleRepository) {
	docRepo, articleRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	t.Cleanup(func() {
		articleRepo.Close()
		docRepo.Close()
		backend.Close()
	})

	return docRepo, articleRepo
}

// seedDocumentChunks stores one article with the given chunk texts and vectors.
func seedDocumentChunks(t *testing.T, docRepo storage.DocumentRepository, articleRepo storage.ArticleRepository,
	name string, texts []string, vectors [][]float32) core.ID {
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{Name: name, Source: name + ".json"})
	require.NoError(t, err)

	articles, err := articleRepo.AddArticles(ctx, &core.Article{
		DocumentId: doc.Id,
		Theme:      "Reporting obligation",
		Label:      "Article 9",
		SubTheme:   "Reporting obligation",
		Content:    "Counterparties shall report the details of any derivative contract.",
	})
	require.NoError(t, err)

	chunks := make([]*core.Chunk, len(texts))
	for i := range texts {
		chunks[i] = &core.Chunk{
			ArticleId:  articles[0].Id,
			DocumentId: doc.Id,
			Seq:        i,
			Text:       texts[i],
			Vector:     vectors[i],
		}
	}
	_, err = articleRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	return doc.Id
}

func fixedEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func TestNewSearcher(t *testing.T) {
	_, articleRepo := setupSearchRepos(t)
	provider := mock.NewMockProvider()

	t.Run("valid construction", func(t *testing.T) {
		s, err := NewSearcher(articleRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("requires article repository", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.ErrorIs(t, err, ErrArticleRepositoryRequired)
	})

	t.Run("requires provider", func(t *testing.T) {
		_, err := NewSearcher(articleRepo, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})
}

func TestFindSimilar(t *testing.T) {
	docRepo, articleRepo := setupSearchRepos(t)

	seedDocumentChunks(t, docRepo, articleRepo, "emir-2012",
		[]string{
			"Counterparties shall report derivative contract details to a trade repository.",
			"Technical standards specify the format of reports.",
			"Unrelated provision about colleges of supervisors.",
		},
		[][]float32{
			{1, 0, 0},
			{0.8, 0.6, 0},
			{0, 0, 1},
		})

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0, 0}), mock.NewMockCompleter())

	s, err := NewSearcher(articleRepo, provider)
	require.NoError(t, err)

	results, err := s.FindSimilar(context.Background(), "report derivative details", 10, 0)
	require.NoError(t, err)

	// The orthogonal chunk falls below the similarity floor
	require.Len(t, results, 2)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Contains(t, results[0].Chunk.Text, "trade repository")
}

func TestFindSimilar_VerbatimBoost(t *testing.T) {
	docRepo, articleRepo := setupSearchRepos(t)

	// Same vector for both chunks, only one contains all query words
	seedDocumentChunks(t, docRepo, articleRepo, "emir-2012",
		[]string{
			"Counterparties shall report derivative contract details.",
			"Central counterparties shall hold capital.",
		},
		[][]float32{
			{1, 0, 0},
			{1, 0, 0},
		})

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0, 0}), mock.NewMockCompleter())

	s, err := NewSearcher(articleRepo, provider)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := s.FindSimilarWithMonitor(context.Background(), "report derivative details", 10, 0, monitor)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Contains(t, results[0].Chunk.Text, "derivative contract details")
	assert.InDelta(t, 1.3, results[0].Score, 0.001)
	assert.InDelta(t, 1.0, results[1].Score, 0.001)

	require.Len(t, monitor.boosted, 1)
	assert.True(t, monitor.started)
	assert.True(t, monitor.embedded)
	assert.True(t, monitor.finished)
	assert.Len(t, monitor.similarityIDs, 2)
	assert.Equal(t, 2, monitor.resultCount)
}

func TestFindSimilar_DocumentFilter(t *testing.T) {
	docRepo, articleRepo := setupSearchRepos(t)

	oldID := seedDocumentChunks(t, docRepo, articleRepo, "emir-2012",
		[]string{"Old reporting text."}, [][]float32{{1, 0, 0}})
	newID := seedDocumentChunks(t, docRepo, articleRepo, "emir-refit-2019",
		[]string{"New reporting text."}, [][]float32{{1, 0, 0}})

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0, 0}), mock.NewMockCompleter())

	s, err := NewSearcher(articleRepo, provider)
	require.NoError(t, err)

	ctx := context.Background()

	oldResults, err := s.FindSimilar(ctx, "reporting", 10, oldID)
	require.NoError(t, err)
	require.Len(t, oldResults, 1)
	assert.Equal(t, oldID, oldResults[0].Chunk.DocumentId)

	newResults, err := s.FindSimilar(ctx, "reporting", 10, newID)
	require.NoError(t, err)
	require.Len(t, newResults, 1)
	assert.Equal(t, newID, newResults[0].Chunk.DocumentId)

	allResults, err := s.FindSimilar(ctx, "reporting", 10, 0)
	require.NoError(t, err)
	assert.Len(t, allResults, 2)
}

func TestFindSimilar_MaxHits(t *testing.T) {
	docRepo, articleRepo := setupSearchRepos(t)

	seedDocumentChunks(t, docRepo, articleRepo, "emir-2012",
		[]string{"one", "two", "three"},
		[][]float32{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}})

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0, 0}), mock.NewMockCompleter())

	s, err := NewSearcher(articleRepo, provider)
	require.NoError(t, err)

	results, err := s.FindSimilar(context.Background(), "query", 2, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindSimilar_EmbedderError(t *testing.T) {
	_, articleRepo := setupSearchRepos(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockCompleter())

	s, err := NewSearcher(articleRepo, provider)
	require.NoError(t, err)

	_, err = s.FindSimilar(context.Background(), "query", 10, 0)
	assert.Error(t, err)
}

func TestContainsAllQueryWords(t *testing.T) {
	tests := []struct {
		name     string
		document string
		query    string
		expected bool
	}{
		{
			name:     "all words present",
			document: "Counterparties shall report derivative contract details.",
			query:    "report derivative details",
			expected: true,
		},
		{
			name:     "missing word",
			document: "Counterparties shall report details.",
			query:    "report derivative details",
			expected: false,
		},
		{
			name:     "stop words ignored",
			document: "report details",
			query:    "the report of details",
			expected: true,
		},
		{
			name:     "case insensitive",
			document: "REPORT Details",
			query:    "report details",
			expected: true,
		},
		{
			name:     "only stop words in query",
			document: "anything",
			query:    "the of and",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsAllQueryWords(tt.document, tt.query))
		})
	}
}
