package badger

import (
	"context"
	"testing"

	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDocument_ContentHashedID(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		Name:   "emir-2012",
		Source: "/data/emir-2012.json",
	})
	require.NoError(t, err)

	assert.Equal(t, core.IDFromContent("emir-2012"), doc.Id)
	assert.False(t, doc.InsertedAt.IsZero())
}

func TestAddDocument_ReingestOverwrites(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	first, err := docRepo.AddDocument(ctx, &core.Document{Name: "emir-2012", Source: "/old/path.json"})
	require.NoError(t, err)

	second, err := docRepo.AddDocument(ctx, &core.Document{Name: "emir-2012", Source: "/new/path.json"})
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)

	docs, err := docRepo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "/new/path.json", docs[0].Source)
}

func TestGetDocumentByName(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := docRepo.AddDocument(ctx, &core.Document{Name: "emir-refit-2019", Source: "/data/refit.json"})
	require.NoError(t, err)

	doc, err := docRepo.GetDocumentByName(ctx, "emir-refit-2019")
	require.NoError(t, err)
	assert.Equal(t, "emir-refit-2019", doc.Name)

	_, err = docRepo.GetDocumentByName(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListDocuments(t *testing.T) {
	docRepo, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := docRepo.AddDocument(ctx, &core.Document{Name: "emir-2012", Source: "/a.json"})
	require.NoError(t, err)
	_, err = docRepo.AddDocument(ctx, &core.Document{Name: "emir-refit-2019", Source: "/b.json"})
	require.NoError(t, err)

	docs, err := docRepo.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestDeleteDocument_Cascades(t *testing.T) {
	docRepo, articleRepo := newTestRepos(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{Name: "emir-2012", Source: "/a.json"})
	require.NoError(t, err)

	articles, err := articleRepo.AddArticles(ctx, &core.Article{
		DocumentId: doc.Id,
		Seq:        0,
		Label:      "Article 1",
		Content:    "Body.",
	})
	require.NoError(t, err)

	_, err = articleRepo.AddChunks(ctx, &core.Chunk{
		ArticleId:  articles[0].Id,
		DocumentId: doc.Id,
		Seq:        0,
		Text:       "Body.",
		Vector:     []float32{1, 0},
	})
	require.NoError(t, err)

	err = docRepo.DeleteDocument(ctx, doc.Id)
	require.NoError(t, err)

	_, err = docRepo.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = articleRepo.GetArticle(ctx, articles[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := articleRepo.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	docRepo, _ := newTestRepos(t)

	err := docRepo.DeleteDocument(context.Background(), 12345)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
