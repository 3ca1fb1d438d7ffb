package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
)

// minSimilarity is the cosine similarity floor for chunk matches.
const minSimilarity = 0.60

// Searcher provides semantic search over article chunks.
type Searcher struct {
	articleRepository storage.ArticleRepository
	embedder          ai.Embedder
	logger            *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	articleRepository storage.ArticleRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if articleRepository == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		articleRepository: articleRepository,
		embedder:          provider.Embedder(),
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for article chunks similar to the query.
// A non-zero documentID restricts the search to that document.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int, documentID core.ID) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, documentID, nil)
}

// FindSimilarWithMonitor searches for article chunks similar to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, documentID core.ID, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query, documentID)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(embedding)

	results, err := s.articleRepository.FindSimilar(ctx, embedding, minSimilarity, maxHits, documentID)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	ids := make([]uint64, 0, len(results))
	for _, result := range results {
		ids = append(ids, uint64(result.Chunk.Id))
	}
	monitor.AfterSimilaritySearch(ids)

	// Apply verbatim match boost
	for _, result := range results {
		if containsAllQueryWords(result.Chunk.Text, query) {
			result.Score += 0.3
			monitor.VerbatimBoost(result.Chunk)
		}
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
