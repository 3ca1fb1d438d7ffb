package ocr

import "errors"

var (
	// ErrNoLines indicates the source contained no recognized text lines.
	ErrNoLines = errors.New("ocr output contains no text lines")

	// ErrUnsupportedFormat indicates the source file extension is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported ocr output format")
)
