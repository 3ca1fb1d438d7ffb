package storage

import (
	"context"

	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing ingested documents.
type DocumentRepository interface {
	Repository
	// AddDocument adds a document to storage.
	// The ID is derived from the document name by content hashing, so
	// re-ingesting the same name overwrites the previous document record.
	// Sets InsertedAt timestamp if not already set.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentByName retrieves a document by its name.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocumentByName(ctx context.Context, name string) (*core.Document, error)

	// ListDocuments retrieves all documents.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document by ID.
	// Articles and chunks belonging to the document are removed with it.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error
}

// ArticleRepository provides operations for managing canonical articles
// and their embedded chunks.
type ArticleRepository interface {
	Repository
	// AddArticles adds one or more articles to storage.
	// For articles with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns the articles with generated IDs and timestamps populated.
	AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error)

	// UpdateArticles updates existing articles.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any article doesn't exist.
	UpdateArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error)

	// DeleteArticles removes articles by their IDs.
	// Also removes associated indices and chunks.
	// Returns ErrNotFound if any article doesn't exist.
	DeleteArticles(ctx context.Context, ids ...core.ID) error

	// GetArticle retrieves a single article by ID.
	// Returns ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, id core.ID) (*core.Article, error)

	// GetArticlesByDocument retrieves a document's articles ordered by Seq.
	GetArticlesByDocument(ctx context.Context, documentID core.ID) ([]*core.Article, error)

	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, generates new IDs from sequence.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunksByArticle retrieves an article's chunks ordered by Seq.
	GetChunksByArticle(ctx context.Context, articleID core.ID) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks belonging to a document.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first). A non-zero documentID
	// restricts the search to that document's chunks.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, documentID core.ID) ([]*core.SearchResult, error)
}
