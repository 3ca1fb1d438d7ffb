// Package ingest provides pipeline orchestration for processing documents.
//
// The Pipeline type manages the ingestion workflow for a document, including:
//   - Extracting structured records from OCR text lines
//   - Merging fragments into canonical articles
//   - Storing the document and its articles atomically
//   - Chunking and embedding article contents asynchronously
//
// Embedding is performed concurrently using a worker pool to maximize
// throughput. Errors during async embedding are logged but do not fail the
// ingestion operation; the Reembedder can rebuild vectors later.
package ingest
