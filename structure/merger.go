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


package structure

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

// AmendmentsTheme is the sentinel theme assigned to articles whose name
// marks an amendments-to-existing-regulation section, regardless of the
// chapter they appear under.
const AmendmentsTheme = "Amendments"

var (
	labelPattern      = regexp.MustCompile(`(Article)\s*(\d+)\s*(.*)`)
	amendmentsPattern = regexp.MustCompile(`(?i)^Amendments to Regulation`)
)

// Label is an article label decomposed at the table level. This is a
// coarser re-check than the extractor's line patterns: trailing text
// after the number ("bis", a literal "(2)" suffix, cross-reference
// fragments) marks the row as a continuation rather than a new article.
type Label struct {
	Word      string // the literal word, "Article"
	Number    int    // numeric article id; valid only when HasNumber
	Extra     string // trailing text after the number, untrimmed
	HasNumber bool
}

// OutOfOrder reports whether the label carries trailing text, which
// flags the row as a continuation fragment even when its number parses.
func (l Label) OutOfOrder() bool {
	return strings.TrimSpace(l.Extra) != ""
}

// String reconstructs the "{word} {number} {extra}" form, trimmed.
func (l Label) String() string {
	if !l.HasNumber {
		return l.Word
	}
	return strings.TrimSpace(fmt.Sprintf("%s %d %s", l.Word, l.Number, strings.TrimSpace(l.Extra)))
}

// ParseLabel splits an article label into its word, numeric id and
// trailing extra text. Labels that do not yield a numeric id come back
// with HasNumber false; the merger treats such rows as continuations,
// never as new-article starts.
func ParseLabel(label string) Label {
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		return Label{Word: strings.TrimSpace(label)}
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Label{Word: m[1], Extra: m[3]}
	}
	return Label{Word: m[1], Number: n, Extra: m[3], HasNumber: true}
}

// mergeRow is a structured row after preprocessing: parsed label and
// forward-filled chapter context.
type mergeRow struct {
	core.StructuredRecord
	label Label
}

// Merge collapses extractor rows into canonical articles. Continuation
// fragments (no parseable article number, or an out-of-order label) fold
// into the most recent true article and never produce their own record.
// The returned articles carry Seq in emission order; DocumentId and
// storage timestamps are left for the caller.
func Merge(rows []core.StructuredRecord) []core.Article {
	prepared := preprocess(rows)

	var out []core.Article
	var cur core.Article

	emit := func() {
		if cur.Label == "" {
			return
		}
		cur.Seq = len(out)
		out = append(out, cur)
	}

	for _, row := range prepared {
		theme := row.ChapterName
		if amendmentsPattern.MatchString(row.ArticleName) {
			theme = AmendmentsTheme
		}

		if row.label.HasNumber && !row.label.OutOfOrder() {
			emit()
			cur = core.Article{
				Theme:    theme,
				Label:    row.label.String(),
				SubTheme: row.ArticleName,
				Content:  row.Content,
			}
			continue
		}

		// Continuation: all text is preserved, appended under the
		// previous article boundary in the worst case.
		if row.Content != "" {
			segment := row.Article + row.ArticleName + ": " + row.Content
			if cur.Content == "" {
				cur.Content = segment
			} else {
				cur.Content += " " + segment
			}
		}
	}
	emit()

	return out
}

// preprocess parses labels and forward-fills chapter context, treating
// the empty string as a missing value.
func preprocess(rows []core.StructuredRecord) []mergeRow {
	prepared := make([]mergeRow, 0, len(rows))
	var chapter, chapterName string
	for _, rec := range rows {
		if rec.Chapter != "" {
			chapter = rec.Chapter
		} else {
			rec.Chapter = chapter
		}
		if rec.ChapterName != "" {
			chapterName = rec.ChapterName
		} else {
			rec.ChapterName = chapterName
		}
		prepared = append(prepared, mergeRow{
			StructuredRecord: rec,
			label:            ParseLabel(rec.Article),
		})
	}
	return prepared
}
