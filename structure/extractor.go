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
	"regexp"
	"strings"

	"github.com/finos-labs/dtcch-2025-accenture-team/core"
)

var (
	chapterPattern    = regexp.MustCompile(`(?i)^CHAPTER\s+[IVXLCDM]+\b`)
	articlePattern    = regexp.MustCompile(`^Article\s+\d+`)
	subArticlePattern = regexp.MustCompile(`^Article\s+\d+\s*\(\d+\)`)
)

// ExtractorState is the fold state threaded through Step. The zero value
// is the initial state: no chapter seen yet, not processing.
type ExtractorState struct {
	chapter     string
	chapterName string
	article     string
	articleName string
	content     []string

	nextIsChapterName bool
	nextIsArticleName bool
	processing        bool
}

// Step classifies one line and returns the advanced state plus the record
// the line caused to be emitted, if any. Classification rules apply in
// priority order; later rules assume earlier ones did not match.
func (s ExtractorState) Step(line string) (ExtractorState, *core.StructuredRecord) {
	line = strings.TrimSpace(line)
	if line == "" {
		return s, nil
	}

	switch {
	case s.nextIsChapterName:
		s.chapterName = line
		s.nextIsChapterName = false
		return s, nil

	case s.nextIsArticleName:
		s.articleName = line
		s.nextIsArticleName = false
		return s, nil

	case chapterPattern.MatchString(line):
		var rec *core.StructuredRecord
		s, rec = s.flush()
		s.article = ""
		s.articleName = ""
		s.chapter = line
		s.chapterName = ""
		s.nextIsChapterName = true
		s.processing = true
		return s, rec

	case s.processing && articlePattern.MatchString(line) && !subArticlePattern.MatchString(line):
		var rec *core.StructuredRecord
		s, rec = s.flush()
		s.article = line
		s.articleName = ""
		s.nextIsArticleName = true
		return s, rec

	case s.processing && subArticlePattern.MatchString(line):
		// Sub-article references stay inline, marked so the merge pass
		// can recognize them.
		if s.article != "" {
			s.content = append(s.content, "[Sub-Article: "+line+"]")
		}
		return s, nil

	case s.processing && s.chapter != "" && s.article != "":
		s.content = append(s.content, line)
		return s, nil

	default:
		// Lines before the first chapter boundary are discarded.
		return s, nil
	}
}

// Flush emits whatever the state has accumulated for the current article.
// Used after the input is exhausted.
func (s ExtractorState) Flush() *core.StructuredRecord {
	_, rec := s.flush()
	return rec
}

// flush emits a record for the current article when it has both an
// article label and non-empty content. Boundary-only articles are
// silently skipped; an article with no body text is dropped here.
func (s ExtractorState) flush() (ExtractorState, *core.StructuredRecord) {
	if s.article == "" || len(s.content) == 0 {
		s.content = nil
		return s, nil
	}
	rec := &core.StructuredRecord{
		Chapter:     s.chapter,
		ChapterName: s.chapterName,
		Article:     s.article,
		ArticleName: s.articleName,
		Content:     strings.Join(s.content, " "),
	}
	s.content = nil
	return s, rec
}

// Extract runs the extractor over an ordered line sequence and returns
// the structured rows in emission order.
func Extract(lines []core.TextLine) []core.StructuredRecord {
	var state ExtractorState
	var out []core.StructuredRecord
	for _, line := range lines {
		var rec *core.StructuredRecord
		state, rec = state.Step(line.Text)
		if rec != nil {
			out = append(out, *rec)
		}
	}
	if rec := state.Flush(); rec != nil {
		out = append(out, *rec)
	}
	return out
}
