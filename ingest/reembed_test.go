package ingest

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai/mock"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedChunks(t *testing.T, docRepo storage.DocumentRepository, articleRepo storage.ArticleRepository, count int) *core.Document {
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{Name: "emir-2012", Source: "emir-2012.json"})
	require.NoError(t, err)

	articles, err := articleRepo.AddArticles(ctx, &core.Article{
		DocumentId: doc.Id,
		Theme:      "Subject matter and scope",
		Label:      "Article 1",
		SubTheme:   "Subject matter",
		Content:    "This Regulation lays down requirements.",
	})
	require.NoError(t, err)

	chunks := make([]*core.Chunk, count)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			ArticleId:  articles[0].Id,
			DocumentId: doc.Id,
			Seq:        i,
			Text:       "chunk text",
			Vector:     []float32{1, 0, 0},
		}
	}
	_, err = articleRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	return doc
}

func TestReembedder_Run(t *testing.T) {
	docRepo, articleRepo := setupTestRepositories(t)
	doc := seedChunks(t, docRepo, articleRepo, 5)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		result := make([][]float32, len(texts))
		for i := range texts {
			result[i] = []float32{3, 4, 0}
		}
		return result, nil
	}

	var buf bytes.Buffer
	r := NewReembedder(docRepo, articleRepo, embedder, nil, &buf)

	err := r.Run(context.Background())
	require.NoError(t, err)

	chunks, err := articleRepo.GetChunksByDocument(context.Background(), doc.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	// Vectors rewritten and normalized
	for _, chunk := range chunks {
		assert.InDelta(t, 0.6, chunk.Vector[0], 1e-6)
		assert.InDelta(t, 0.8, chunk.Vector[1], 1e-6)
	}

	assert.Contains(t, buf.String(), "Reembedding complete")
}

func TestReembedder_Run_Empty(t *testing.T) {
	docRepo, articleRepo := setupTestRepositories(t)

	var buf bytes.Buffer
	r := NewReembedder(docRepo, articleRepo, mock.NewMockEmbedder(), nil, &buf)

	err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No chunks found")
}

func TestReembedder_Run_EmbedderFailure(t *testing.T) {
	docRepo, articleRepo := setupTestRepositories(t)
	seedChunks(t, docRepo, articleRepo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	var buf bytes.Buffer
	config := &ReembedConfig{BatchSize: 10, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond}
	r := NewReembedder(docRepo, articleRepo, embedder, config, &buf)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
}
