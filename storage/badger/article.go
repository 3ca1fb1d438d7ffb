package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend    *Backend
	articleSeq *badger.Sequence
	chunkSeq   *badger.Sequence
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) (*ArticleRepository, error) {
	articleSeq, err := backend.GetSequence(articleIDSeq)
	if err != nil {
		return nil, err
	}
	chunkSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		articleSeq.Release()
		return nil, err
	}

	return &ArticleRepository{
		backend:    backend,
		articleSeq: articleSeq,
		chunkSeq:   chunkSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *ArticleRepository) Close() error {
	articleErr := r.articleSeq.Release()
	chunkErr := r.chunkSeq.Release()
	if articleErr != nil {
		return articleErr
	}
	return chunkErr
}

// WithTransaction delegates to the backend.
func (r *ArticleRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *ArticleRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, documentID core.ID) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit, documentID)
}

// AddArticles adds one or more articles to storage.
func (r *ArticleRepository) AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			nextID, err := r.nextSequenceID(r.articleSeq)
			if err != nil {
				return err
			}
			article.Id = nextID

			article.InsertedAt = time.Now().UTC()
			article.UpdatedAt = article.InsertedAt

			key := makeArticleKey(article.Id)
			if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
				return err
			}

			docKey := makeArticleDocKey(article.DocumentId, article.Seq)
			if err := tx.Set(docKey, storage.MarshalID(article.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return articles, err
}

// UpdateArticles updates existing articles.
func (r *ArticleRepository) UpdateArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			key := makeArticleKey(article.Id)

			old, err := readArticle(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			article.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
				return err
			}

			// Re-home the document index entry if ownership or position moved
			if old.DocumentId != article.DocumentId || old.Seq != article.Seq {
				if err := tx.Delete(makeArticleDocKey(old.DocumentId, old.Seq)); err != nil {
					return err
				}
				if err := tx.Set(makeArticleDocKey(article.DocumentId, article.Seq), storage.MarshalID(article.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return articles, err
}

// DeleteArticles removes articles by their IDs, along with their chunks.
func (r *ArticleRepository) DeleteArticles(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		var doomed [][]byte
		for _, id := range ids {
			key := makeArticleKey(id)

			article, err := readArticle(tx, key)
			if err != nil {
				return err
			}
			if article == nil {
				return storage.ErrNotFound
			}

			chunks, err := scanChunksByArticle(tx, id)
			if err != nil {
				return err
			}
			for _, chunk := range chunks {
				doomed = append(doomed,
					makeChunkKey(chunk.Id),
					makeChunkArticleKey(chunk.ArticleId, chunk.Seq),
					makeChunkDocumentKey(chunk.DocumentId, chunk.Id))
			}

			doomed = append(doomed, key, makeArticleDocKey(article.DocumentId, article.Seq))
		}
		for _, k := range doomed {
			if err := tx.Delete(k); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetArticle retrieves a single article by ID.
func (r *ArticleRepository) GetArticle(ctx context.Context, id core.ID) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readArticle(tx, makeArticleKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetArticlesByDocument retrieves a document's articles ordered by Seq.
func (r *ArticleRepository) GetArticlesByDocument(ctx context.Context, documentID core.ID) ([]*core.Article, error) {
	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := scanArticleIDs(tx, documentID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			article, err := readArticle(tx, makeArticleKey(id))
			if err != nil {
				return err
			}
			if article != nil {
				results = append(results, article)
			}
		}
		return nil
	}, false)
	return results, err
}

// AddChunks adds one or more chunks to storage.
func (r *ArticleRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			nextID, err := r.nextSequenceID(r.chunkSeq)
			if err != nil {
				return err
			}
			chunk.Id = nextID

			chunk.InsertedAt = time.Now().UTC()
			chunk.UpdatedAt = chunk.InsertedAt

			if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkArticleKey(chunk.ArticleId, chunk.Seq), storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkDocumentKey(chunk.DocumentId, chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// UpdateChunks updates existing chunks.
func (r *ArticleRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)

			old, err := readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			chunk.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// GetChunksByArticle retrieves an article's chunks ordered by Seq.
func (r *ArticleRepository) GetChunksByArticle(ctx context.Context, articleID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = scanChunksByArticle(tx, articleID)
		return err
	}, false)
	return results, err
}

// GetChunksByDocument retrieves all chunks belonging to a document.
func (r *ArticleRepository) GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChunkDocumentKey(documentID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// nextSequenceID returns the next non-zero ID from a sequence.
// BadgerDB sequences can return 0 on first call, so 0 is skipped.
func (r *ArticleRepository) nextSequenceID(seq *badger.Sequence) (core.ID, error) {
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// Helper functions shared with DocumentRepository.

// readArticle reads an article from the transaction.
func readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var article *core.Article
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		article, unmarshalErr = storage.UnmarshalArticle(val)
		return unmarshalErr
	})
	return article, err
}

// readChunk reads a chunk from the transaction.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}

// scanArticleIDs returns the IDs of a document's articles in Seq order.
func scanArticleIDs(tx *badger.Txn, documentID core.ID) ([]core.ID, error) {
	var ids []core.ID
	startKey := makePartialArticleDocKey(documentID)
	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// scanChunksByArticle returns an article's chunks in Seq order.
func scanChunksByArticle(tx *badger.Txn, articleID core.ID) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	startKey := makePartialChunkArticleKey(articleID)
	iter := tx.NewIterator(badger.DefaultIteratorOptions)

	var ids []core.ID
	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			iter.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	iter.Close()

	for _, id := range ids {
		chunk, err := readChunk(tx, makeChunkKey(id))
		if err != nil {
			return nil, err
		}
		if chunk != nil {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}
