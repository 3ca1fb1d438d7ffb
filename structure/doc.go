// Package structure turns flat OCR text lines into a hierarchical
// Chapter/Article record set and reconciles fragmented article rows into
// canonical per-article records.
//
// Two passes cooperate:
//
//   - The extractor classifies lines against boundary patterns and folds
//     them into StructuredRecord rows, one per detected article.
//   - The merger re-checks article labels at the table level, folds
//     continuation fragments into their preceding article, and resolves
//     each row's theme from forward-filled chapter context.
//
// Both passes are pure, single-threaded, left-to-right reductions. Order
// of the input lines is the only correctness-critical property; all I/O
// happens outside this package.
package structure
