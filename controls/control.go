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
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Control is one row of the L1/L2 control catalogue.
type Control struct {
	L1ControlID    string
	L1ControlTitle string
	L2ControlID    string
	L2ControlTitle string
	L2Activity     string
}

// Column headers expected in the catalogue CSV. Matching is
// case-insensitive and ignores surrounding whitespace.
const (
	headerL1ID       = "l1 control id"
	headerL1Title    = "l1 control title"
	headerL2ID       = "l2 control id"
	headerL2Title    = "l2 control title"
	headerL2Activity = "l2 control activity"
)

// LoadControls reads the control catalogue from CSV. The first row must be
// a header naming at least the five expected columns; extra columns are
// ignored.
func LoadControls(r io.Reader) ([]Control, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading control header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{headerL1ID, headerL1Title, headerL2ID, headerL2Title, headerL2Activity} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("control catalogue is missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var controls []Control
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading control row: %w", err)
		}

		controls = append(controls, Control{
			L1ControlID:    field(record, headerL1ID),
			L1ControlTitle: field(record, headerL1Title),
			L2ControlID:    field(record, headerL2ID),
			L2ControlTitle: field(record, headerL2Title),
			L2Activity:     field(record, headerL2Activity),
		})
	}

	return controls, nil
}

// FilterByL2 keeps only the controls whose L2 control ID appears in ids.
// An empty ids slice keeps everything.
func FilterByL2(controls []Control, ids []string) []Control {
	if len(ids) == 0 {
		return controls
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[strings.ToLower(strings.TrimSpace(id))] = true
	}

	var filtered []Control
	for _, control := range controls {
		if wanted[strings.ToLower(control.L2ControlID)] {
			filtered = append(filtered, control)
		}
	}

	return filtered
}
