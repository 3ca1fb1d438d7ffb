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


package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

const (
	defaultHitsPerDocument = 6
	historyWindow          = 2
)

// Retriever finds article chunks similar to a query.
// *search.Searcher satisfies this interface.
type Retriever interface {
	FindSimilar(ctx context.Context, query string, maxHits int, documentID core.ID) ([]*core.SearchResult, error)
}

// Bot answers questions against an old and a new regulation version.
// It is safe for concurrent use; history is shared across callers.
type Bot struct {
	retriever Retriever
	completer ai.Completer
	oldDoc    *core.Document
	newDoc    *core.Document
	hits      int
	logger    *slog.Logger

	mu      sync.Mutex
	history []string
}

// Option configures a Bot.
type Option func(*Bot) error

// WithHitsPerDocument sets how many passages are retrieved per document.
// Default is 6.
func WithHitsPerDocument(hits int) Option {
	return func(b *Bot) error {
		if hits < 1 {
			return fmt.Errorf("hits per document must be greater than zero")
		}
		b.hits = hits
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBot creates a chat bot over the given document pair.
func NewBot(retriever Retriever, provider ai.AIProvider, oldDoc, newDoc *core.Document, opts ...Option) (*Bot, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if oldDoc == nil || newDoc == nil {
		return nil, ErrDocumentsRequired
	}

	b := &Bot{
		retriever: retriever,
		completer: provider.Completer(),
		oldDoc:    oldDoc,
		newDoc:    newDoc,
		hits:      defaultHitsPerDocument,
		logger:    slog.Default().With("component", "chatbot"),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Ask answers a user question. The question is first rephrased into a
// standalone one, then passages are retrieved from both documents
// separately so the answer can contrast versions.
func (b *Bot) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	standalone, err := b.rephrase(ctx, query)
	if err != nil {
		return "", fmt.Errorf("rephrasing question: %w", err)
	}
	b.logger.Debug("rephrased question", "query", query, "standalone", standalone)

	passages, err := b.retrieve(ctx, standalone)
	if err != nil {
		return "", err
	}

	answer, err := b.completer.Complete(ctx, buildAnswerSystemPrompt(passages), standalone)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	b.mu.Lock()
	b.history = append(b.history, standalone)
	b.mu.Unlock()

	return answer, nil
}

// History returns a copy of the standalone questions asked so far.
func (b *Bot) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.history...)
}

// rephrase turns the query into a standalone question using the last two
// turns of history. The model must produce a question mark; one retry gets
// a single turn of history, after that the raw query wins.
func (b *Bot) rephrase(ctx context.Context, query string) (string, error) {
	b.mu.Lock()
	if len(b.history) > historyWindow {
		b.history = b.history[len(b.history)-historyWindow:]
	}
	history := append([]string(nil), b.history...)
	b.mu.Unlock()

	if len(history) == 0 {
		return query, nil
	}

	standalone, err := b.completer.Complete(ctx, rephraseSystemPrompt, buildRephrasePrompt(history, query))
	if err != nil {
		return "", err
	}

	if !strings.Contains(standalone, "?") {
		standalone, err = b.completer.Complete(ctx, rephraseSystemPrompt, buildRephrasePrompt(history[len(history)-1:], query))
		if err != nil {
			return "", err
		}
	}
	if !strings.Contains(standalone, "?") {
		b.logger.Debug("rephrasing produced no question, using raw query")
		return query, nil
	}

	return strings.TrimSpace(standalone), nil
}

// retrieve pulls passages from the old and new document separately so that
// one version cannot crowd out the other.
func (b *Bot) retrieve(ctx context.Context, query string) ([]passage, error) {
	var passages []passage
	for _, doc := range []*core.Document{b.oldDoc, b.newDoc} {
		results, err := b.retriever.FindSimilar(ctx, query, b.hits, doc.Id)
		if err != nil {
			return nil, fmt.Errorf("retrieving from %s: %w", doc.Name, err)
		}
		for _, result := range results {
			passages = append(passages, passage{document: doc.Name, chunk: result.Chunk})
		}
	}

	b.logger.Info("retrieved passages", "count", len(passages))
	return passages, nil
}
