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


package controls

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/finos-labs/dtcch-2025-accenture-team/ai"
	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

const defaultTopK = 3

// Retriever finds article chunks similar to a query.
// *search.Searcher satisfies this interface.
type Retriever interface {
	FindSimilar(ctx context.Context, query string, maxHits int, documentID core.ID) ([]*core.SearchResult, error)
}

// MappingRow is one judged control/passage pair.
// Err is set when the model's reply could not be decoded; the row is still
// emitted so the run never loses a pairing.
type MappingRow struct {
	L1ControlID    string
	L1ControlTitle string
	L2ControlID    string
	L2ControlTitle string
	MatchedText    string
	Score          float32
	Mapping        string
	Rationale      string
	Err            string
}

// verdict matches the JSON object the judge prompt requests.
type verdict struct {
	Mapping   string `json:"mapping"`
	Rationale string `json:"rationale"`
}

// Mapper judges controls against an ingested regulation.
type Mapper struct {
	retriever Retriever
	completer ai.Completer
	topK      int
	logger    *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper) error

// WithTopK sets how many passages are retrieved per control.
// Default is 3.
func WithTopK(k int) Option {
	return func(m *Mapper) error {
		if k < 1 {
			return fmt.Errorf("top k must be greater than zero")
		}
		m.topK = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMapper creates a new control mapper.
func NewMapper(retriever Retriever, provider ai.AIProvider, opts ...Option) (*Mapper, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	m := &Mapper{
		retriever: retriever,
		completer: provider.Completer(),
		topK:      defaultTopK,
		logger:    slog.Default().With("component", "control-mapper"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// MapControls judges each control against the passages of a document.
// documentID 0 searches across all documents. Retrieval failures abort the
// run; judge failures degrade to the row's Err column.
func (m *Mapper) MapControls(ctx context.Context, controls []Control, documentID core.ID) ([]MappingRow, error) {
	if len(controls) == 0 {
		return nil, ErrNoControls
	}

	var rows []MappingRow
	for _, control := range controls {
		query := "Control Activity : " + control.L2Activity

		results, err := m.retriever.FindSimilar(ctx, query, m.topK, documentID)
		if err != nil {
			return nil, fmt.Errorf("retrieving passages for control %s: %w", control.L2ControlID, err)
		}
		m.logger.Info("retrieved passages", "control", control.L2ControlID, "hits", len(results))

		for _, result := range results {
			row := MappingRow{
				L1ControlID:    control.L1ControlID,
				L1ControlTitle: control.L1ControlTitle,
				L2ControlID:    control.L2ControlID,
				L2ControlTitle: control.L2ControlTitle,
				MatchedText:    result.Chunk.Text,
				Score:          result.Score,
			}

			v, err := m.judge(ctx, control.L2Activity, result.Chunk.Text)
			if err != nil {
				m.logger.Warn("judging failed", "control", control.L2ControlID, "err", err)
				row.Err = err.Error()
			} else {
				row.Mapping = v.Mapping
				row.Rationale = v.Rationale
			}

			rows = append(rows, row)
		}
	}

	return rows, nil
}

// judge asks the completion model for a verdict and decodes its tagged JSON.
func (m *Mapper) judge(ctx context.Context, activity, matchedText string) (*verdict, error) {
	reply, err := m.completer.Complete(ctx, judgeSystemPrompt, buildJudgePrompt(activity, matchedText))
	if err != nil {
		return nil, err
	}

	payload, err := extractTaggedJSON(reply)
	if err != nil {
		return nil, err
	}
	payload = repairJSON(scrubControlChars(payload))

	var v verdict
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return nil, fmt.Errorf("parsing verdict: %w", err)
	}

	return &v, nil
}

// WriteCSV writes the mapping rows as CSV with a header row.
func WriteCSV(w io.Writer, rows []MappingRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"l1_control_id", "l1_control_title", "l2_control_id", "l2_control_title",
		"matched_text", "score", "mapping", "rationale", "error",
	}); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.L1ControlID, row.L1ControlTitle, row.L2ControlID, row.L2ControlTitle,
			row.MatchedText, strconv.FormatFloat(float64(row.Score), 'f', 4, 32),
			row.Mapping, row.Rationale, row.Err,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
