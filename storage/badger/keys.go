package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

// Key prefixes for different data types
const (
	documentPrefix      = "docrec"
	articlePrefix       = "artrec"
	articleDocPrefix    = "artrecd"
	articleIDSeq        = "artrecseq"
	chunkPrefix         = "chkrec"
	chunkArticlePrefix  = "chkreca"
	chunkDocumentPrefix = "chkrecd"
	chunkIDSeq          = "chkrecseq"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeArticleKey generates a key for an article by ID.
func makeArticleKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", articlePrefix, id))
}

// makeArticleDocKey generates a composite key for the per-document
// article index. Format: prefix:documentID:seq
func makeArticleDocKey(documentID core.ID, seq int) []byte {
	prefix := articleDocPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makePartialArticleDocKey generates a partial key for scanning a
// document's articles. Format: prefix:documentID
func makePartialArticleDocKey(documentID core.ID) []byte {
	prefix := articleDocPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkArticleKey generates a composite key for the per-article
// chunk index. Format: prefix:articleID:seq
func makeChunkArticleKey(articleID core.ID, seq int) []byte {
	prefix := chunkArticlePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(articleID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makePartialChunkArticleKey generates a partial key for scanning an
// article's chunks. Format: prefix:articleID
func makePartialChunkArticleKey(articleID core.ID) []byte {
	prefix := chunkArticlePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(articleID))
	return buf
}

// makeChunkDocumentKey generates a composite key for the per-document
// chunk index. Format: prefix:documentID:chunkID
func makeChunkDocumentKey(documentID, chunkID core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkDocumentKey generates a partial key for scanning a
// document's chunks. Format: prefix:documentID
func makePartialChunkDocumentKey(documentID core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}
