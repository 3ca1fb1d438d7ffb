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


package regdoc

import (
	"context"
	"log/slog"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/ai/openai"
	"github.com/finos-labs/dtcch-2025-accenture-team/chat"
	"github.com/finos-labs/dtcch-2025-accenture-team/compare"
	"github.com/finos-labs/dtcch-2025-accenture-team/controls"
	"github.com/finos-labs/dtcch-2025-accenture-team/ingest"
	"github.com/finos-labs/dtcch-2025-accenture-team/search"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage"
	"github.com/finos-labs/dtcch-2025-accenture-team/storage/badger"
)

// Database bundles the storage backend, the repositories and the AI
// provider behind one handle. It is the entry point for embedding the
// pipeline into other programs and for the CLI.
type Database struct {
	backend      *badger.Backend
	documentRepo storage.DocumentRepository
	articleRepo  storage.ArticleRepository
	provider     ai.AIProvider
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the default AI endpoint configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create document repository
	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create article repository
	articleRepo, err := badger.NewArticleRepository(backend)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		articleRepo.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:      backend,
		documentRepo: documentRepo,
		articleRepo:  articleRepo,
		provider:     provider,
		logger:       slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.articleRepo.Close(); err != nil {
		db.logger.Error("error closing article repository", "err", err)
		return err
	}
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepo
}

func (db *Database) ArticleRepository() storage.ArticleRepository {
	return db.articleRepo
}

func (db *Database) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(db.documentRepo, db.articleRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.articleRepo, db.provider, opts...)
}

func (db *Database) NewComparer(opts ...compare.Option) (*compare.Comparer, error) {
	return compare.NewComparer(db.documentRepo, db.articleRepo, db.provider, opts...)
}

func (db *Database) NewMapper(opts ...controls.Option) (*controls.Mapper, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return controls.NewMapper(searcher, db.provider, opts...)
}

// NewChatBot resolves the two document names and builds a bot over them.
func (db *Database) NewChatBot(ctx context.Context, oldName, newName string, opts ...chat.Option) (*chat.Bot, error) {
	oldDoc, err := db.documentRepo.GetDocumentByName(ctx, oldName)
	if err != nil {
		return nil, err
	}
	newDoc, err := db.documentRepo.GetDocumentByName(ctx, newName)
	if err != nil {
		return nil, err
	}

	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return chat.NewBot(searcher, db.provider, oldDoc, newDoc, opts...)
}
