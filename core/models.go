package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document represents one ingested regulation version.
// Two versions of the same regulation are two separate documents.
type Document struct {
	Id         ID
	Name       string // caller-facing handle, e.g. "emir-refit-2019"
	Source     string // path or URI of the OCR input the document was built from
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// TextLine is one recognized line of OCR output. Lines are consumed in
// order and not retained after extraction.
type TextLine struct {
	Text string
	Page int
}

// StructuredRecord is the structure extractor's per-article output row.
// All fields are strings; the empty string means the value is missing.
type StructuredRecord struct {
	Chapter     string // chapter label, e.g. "CHAPTER I"
	ChapterName string // line following the chapter boundary
	Article     string // article label, e.g. "Article 5"
	ArticleName string // line following the article boundary
	Content     string // accumulated article text, including sub-article markers
}

// Article is a canonical merged article, the unit consumed by
// vectorization, comparison and controls mapping.
type Article struct {
	Id         ID
	DocumentId ID
	Seq        int    // position within the merged table, 0-based
	Theme      string // forward-filled chapter name, or the amendments sentinel
	Label      string // reconstructed article label, e.g. "Article 5"
	SubTheme   string // article name, kept verbatim as a grouping key
	Content    string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Chunk is an embedded fragment of an article's content, the unit of
// similarity search.
type Chunk struct {
	Id         ID
	ArticleId  ID
	DocumentId ID
	Seq        int // position within the article's chunk sequence, 0-based
	Text       string
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SimilarityMatch represents a chunk match from vector similarity search.
type SimilarityMatch struct {
	ChunkId ID
	Score   float32
}

// SearchResult represents a search result with the full chunk and relevance score.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}
