package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
	"github.com/tmc/langchaingo/textsplitter"
)

// embeddingProcessor chunks article contents and stores embedded chunks.
type embeddingProcessor struct {
	articleRepository storage.ArticleRepository
	embedder          ai.Embedder
	splitter          textsplitter.RecursiveCharacter
	maxRetries        int
	retryDelay        time.Duration
	logger            *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(articleRepository storage.ArticleRepository, embedder ai.Embedder,
	chunkSize, chunkOverlap, maxRetries int, retryDelay time.Duration, logger *slog.Logger) (*embeddingProcessor, error) {
	if articleRepository == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	return &embeddingProcessor{
		articleRepository: articleRepository,
		embedder:          embedder,
		splitter:          splitter,
		maxRetries:        maxRetries,
		retryDelay:        retryDelay,
		logger:            logger.With("processor", "embeddings"),
	}, nil
}

// process splits an article into chunks, embeds them and stores the result.
func (ep *embeddingProcessor) process(ctx context.Context, article *core.Article) error {
	texts, err := ep.splitter.SplitText(article.Content)
	if err != nil {
		ep.logger.Error("error splitting article content", "article", article.Id, "err", err)
		return err
	}
	if len(texts) == 0 {
		ep.logger.Debug("article produced no chunks", "article", article.Id)
		return nil
	}

	ep.logger.Debug("generating embeddings for article chunks", "article", article.Id, "chunks", len(texts))

	var embeddings [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = ep.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, ep.maxRetries, ep.retryDelay)
	if err != nil {
		ep.logger.Error("error generating embeddings", "article", article.Id, "err", err)
		return err
	}

	if len(embeddings) != len(texts) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(texts), len(embeddings))
	}

	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &core.Chunk{
			ArticleId:  article.Id,
			DocumentId: article.DocumentId,
			Seq:        i,
			Text:       text,
			Vector:     NormalizeVector(embeddings[i]),
		}
	}

	if _, err := ep.articleRepository.AddChunks(ctx, chunks...); err != nil {
		ep.logger.Error("error storing chunks", "article", article.Id, "err", err)
		return err
	}

	return nil
}
