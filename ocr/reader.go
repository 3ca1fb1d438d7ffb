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


package ocr

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

// block mirrors the subset of a Textract result block that matters here.
type block struct {
	BlockType string `json:"BlockType"`
	Text      string `json:"Text"`
	Page      int    `json:"Page"`
}

type blockDump struct {
	Blocks []block `json:"Blocks"`
}

// ReadBlocks decodes a Textract-style JSON block dump and returns its
// LINE blocks in order. A dump with no LINE blocks is an error; OCR
// failure is fatal for the whole document.
func ReadBlocks(r io.Reader) ([]core.TextLine, error) {
	var dump blockDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("decoding ocr blocks: %w", err)
	}

	var lines []core.TextLine
	for _, b := range dump.Blocks {
		if b.BlockType != "LINE" {
			continue
		}
		lines = append(lines, core.TextLine{Text: b.Text, Page: b.Page})
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	return lines, nil
}

// ReadText reads plain text, one recognized line per input line. Blank
// lines are kept out of the sequence here; the extractor discards them
// anyway.
func ReadText(r io.Reader) ([]core.TextLine, error) {
	var lines []core.TextLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, core.TextLine{Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ocr text: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	return lines, nil
}

// ReadFile dispatches on the file extension: .json is treated as a
// Textract block dump, .txt as plain text.
func ReadFile(path string) ([]core.TextLine, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".txt" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ocr output: %w", err)
	}
	defer f.Close()

	if ext == ".json" {
		return ReadBlocks(f)
	}
	return ReadText(f)
}
