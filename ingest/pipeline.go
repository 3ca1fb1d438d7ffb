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


package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
	"github.com/finos-labs/dtcch-2025-accenture-team/structure"
	"github.com/panjf2000/ants/v2"
)

// Default chunking parameters for article contents.
const (
	defaultChunkSize    = 2048
	defaultChunkOverlap = 200
)

// Pipeline orchestrates the ingestion and processing of documents.
// It turns OCR text lines into canonical articles, stores them, and manages
// concurrent chunking and embedding of article contents.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	articleRepository  storage.ArticleRepository
	embeddingPool      *ants.Pool
	embeddingProc      *embeddingProcessor
	chunkSize          int
	chunkOverlap       int
	pending            sync.WaitGroup
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithChunking sets the chunk size and overlap used when splitting article
// contents for embedding. Defaults are 2048 and 200 characters.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return errors.New("chunk size must be greater than zero")
		}
		if overlap < 0 || overlap >= size {
			return errors.New("chunk overlap must be non-negative and smaller than chunk size")
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	articleRepository storage.ArticleRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if articleRepository == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default logger
	logger := slog.Default()

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		documentRepository: documentRepository,
		articleRepository:  articleRepository,
		embeddingPool:      embeddingPool,
		chunkSize:          defaultChunkSize,
		chunkOverlap:       defaultChunkOverlap,
		logger:             logger,
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processor after options are applied (so it gets final config)
	embeddingProc, err := newEmbeddingProcessor(articleRepository, provider.Embedder(),
		p.chunkSize, p.chunkOverlap, 3, 1*time.Second, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.embeddingProc = embeddingProc

	return p, nil
}

// Ingest turns a document's OCR text lines into canonical articles and stores
// them. The document ID is derived from its name, so re-ingesting the same
// document replaces the previous version including its articles and chunks.
// Articles are written in a single transaction; a document is either fully
// structured or not stored at all.
// Embedding of article chunks happens asynchronously; errors there are logged
// but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, doc *core.Document, lines []core.TextLine) (*core.Document, []*core.Article, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, nil, err
	}

	rows := structure.Extract(lines)
	merged := structure.Merge(rows)
	if len(merged) == 0 {
		return nil, nil, ErrNoArticles
	}

	p.logger.Info("structured document", "document", doc.Name, "lines", len(lines), "rows", len(rows), "articles", len(merged))

	// Replace any previous version of the same document
	if existing, err := p.documentRepository.GetDocumentByName(ctx, doc.Name); err == nil {
		if err := p.documentRepository.DeleteDocument(ctx, existing.Id); err != nil {
			return nil, nil, err
		}
	}

	added, err := p.documentRepository.AddDocument(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	articles := make([]*core.Article, len(merged))
	for i := range merged {
		article := merged[i]
		article.DocumentId = added.Id
		if err := core.ValidateArticle(&article); err != nil {
			return nil, nil, err
		}
		articles[i] = &article
	}

	stored, err := p.articleRepository.AddArticles(ctx, articles...)
	if err != nil {
		return nil, nil, err
	}

	// Submit each article for async chunking and embedding
	for _, article := range stored {
		article := article
		p.pending.Add(1)
		err := p.embeddingPool.Submit(func() {
			defer p.pending.Done()
			if err := p.embeddingProc.process(context.Background(), article); err != nil {
				p.logger.Error("error embedding article chunks", "article", article.Id, "err", err)
			}
		})
		if err != nil {
			p.pending.Done()
			p.logger.Error("error submitting article for embedding", "article", article.Id, "err", err)
		}
	}

	return added, stored, nil
}

// Wait blocks until all submitted embedding work has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
