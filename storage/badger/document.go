package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	return &DocumentRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no resources of its own.
func (r *DocumentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocument adds a document to storage. The ID is derived from the
// document name, so re-ingesting a name overwrites the previous record.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	doc.Id = core.IDFromContent(doc.Name)
	if doc.InsertedAt.IsZero() {
		doc.InsertedAt = time.Now().UTC()
	}
	doc.UpdatedAt = time.Now().UTC()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.Id)
		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return doc, err
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
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

// GetDocumentByName retrieves a document by its name.
func (r *DocumentRepository) GetDocumentByName(ctx context.Context, name string) (*core.Document, error) {
	return r.GetDocument(ctx, core.IDFromContent(name))
}

// ListDocuments retrieves all documents.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteDocument removes a document and everything stored under it:
// articles, chunks, and the index entries pointing at them.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		// Collect keys under the iterators before deleting; Badger does
		// not allow writes while an iterator is open on the transaction.
		var doomed [][]byte

		articleIDs, err := scanArticleIDs(tx, id)
		if err != nil {
			return err
		}
		for _, articleID := range articleIDs {
			article, err := readArticle(tx, makeArticleKey(articleID))
			if err != nil {
				return err
			}
			if article == nil {
				continue
			}
			chunks, err := scanChunksByArticle(tx, articleID)
			if err != nil {
				return err
			}
			for _, chunk := range chunks {
				doomed = append(doomed,
					makeChunkKey(chunk.Id),
					makeChunkArticleKey(chunk.ArticleId, chunk.Seq),
					makeChunkDocumentKey(chunk.DocumentId, chunk.Id))
			}
			doomed = append(doomed,
				makeArticleKey(article.Id),
				makeArticleDocKey(article.DocumentId, article.Seq))
		}
		doomed = append(doomed, key)

		for _, k := range doomed {
			if err := tx.Delete(k); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readDocument reads a document from the transaction.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}
