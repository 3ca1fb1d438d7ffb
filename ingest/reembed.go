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
	"fmt"
	"io"
	"time"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
)

// ReembedConfig holds configuration for the reembedding operation.
type ReembedConfig struct {
	// BatchSize is the number of chunks to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultReembedConfig returns a ReembedConfig with sensible defaults.
func DefaultReembedConfig() *ReembedConfig {
	return &ReembedConfig{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the embedding vectors of every stored chunk.
// Use it after switching embedding models; the chunk texts stay as they are.
type Reembedder struct {
	documentRepository storage.DocumentRepository
	articleRepository  storage.ArticleRepository
	embedder           ai.Embedder
	config             *ReembedConfig
	progress           io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(documentRepository storage.DocumentRepository, articleRepository storage.ArticleRepository,
	embedder ai.Embedder, config *ReembedConfig, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultReembedConfig()
	}

	return &Reembedder{
		documentRepository: documentRepository,
		articleRepository:  articleRepository,
		embedder:           embedder,
		config:             config,
		progress:           progress,
	}
}

// Run executes the reembedding operation.
// Every chunk of every document is reembedded with the configured embedder.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	documents, err := r.documentRepository.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var chunks []*core.Chunk
	for _, doc := range documents {
		docChunks, err := r.articleRepository.GetChunksByDocument(ctx, doc.Id)
		if err != nil {
			return fmt.Errorf("failed to query chunks for %q: %w", doc.Name, err)
		}
		chunks = append(chunks, docChunks...)
	}

	totalChunks := len(chunks)
	if totalChunks == 0 {
		fmt.Fprintf(r.progress, "No chunks found in database (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks (batch size: %d)\n",
		totalChunks, r.config.BatchSize)

	// Initialize progress tracker
	tracker := NewProgressTracker(r.progress, totalChunks, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	for start := 0; start < totalChunks; start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > totalChunks {
			end = totalChunks
		}
		batch := chunks[start:end]

		if err := r.processBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(batch)
		tracker.Update(processed)
	}

	// Finish progress tracking
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		totalChunks, elapsed.Round(time.Second), float64(totalChunks)/elapsed.Seconds())

	return nil
}

// processBatch embeds one batch of chunks and writes the vectors back.
func (r *Reembedder) processBatch(ctx context.Context, batch []*core.Chunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = r.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return err
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(batch), len(embeddings))
	}

	for i, chunk := range batch {
		chunk.Vector = NormalizeVector(embeddings[i])
	}

	_, err = r.articleRepository.UpdateChunks(ctx, batch...)
	return err
}
