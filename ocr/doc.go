// Package ocr decodes recognized-text output into the ordered line
// sequence the structure extractor consumes. The OCR engine itself is an
// external collaborator; this package only reads its results, either as
// a Textract-style JSON block dump or as plain text.
package ocr
