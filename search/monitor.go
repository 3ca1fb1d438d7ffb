package search

import "github.com/finos-labs/dtcch-2025-accenture-team/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, documentID core.ID)
	AfterQueryEmbedding(vector []float32)
	AfterSimilaritySearch(ids []uint64)
	VerbatimBoost(chunk *core.Chunk)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.ID)          {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)    {}
func (n *noopMonitor) AfterSimilaritySearch(_ []uint64)   {}
func (n *noopMonitor) VerbatimBoost(_ *core.Chunk)        {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)      {}
