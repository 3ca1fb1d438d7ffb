package structure

import (
	"strings"
	"testing"

	"github.com/finos-labs/dtcch-2025-accenture-team/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Label
	}{
		{
			name:  "plain article",
			label: "Article 5",
			want:  Label{Word: "Article", Number: 5, Extra: "", HasNumber: true},
		},
		{
			name:  "article with trailing suffix",
			label: "Article 5 bis",
			want:  Label{Word: "Article", Number: 5, Extra: "bis", HasNumber: true},
		},
		{
			name:  "article with literal sub-number suffix",
			label: "Article 5(2)",
			want:  Label{Word: "Article", Number: 5, Extra: "(2)", HasNumber: true},
		},
		{
			name:  "no number",
			label: "Annex II",
			want:  Label{Word: "Annex II"},
		},
		{
			name:  "empty label",
			label: "",
			want:  Label{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLabel(tt.label))
		})
	}
}

func TestLabel_OutOfOrder(t *testing.T) {
	assert.False(t, ParseLabel("Article 5").OutOfOrder())
	assert.True(t, ParseLabel("Article 5 bis").OutOfOrder())
	assert.True(t, ParseLabel("Article 5(2)").OutOfOrder())
	assert.False(t, ParseLabel("Article 5   ").OutOfOrder())
}

func TestMerge_Basic(t *testing.T) {
	articles := Merge([]core.StructuredRecord{
		{
			Chapter:     "CHAPTER I",
			ChapterName: "General Provisions",
			Article:     "Article 1",
			ArticleName: "Scope",
			Content:     "This Regulation applies to...",
		},
		{
			Chapter:     "CHAPTER I",
			ChapterName: "General Provisions",
			Article:     "Article 2",
			ArticleName: "Definitions",
			Content:     "For the purposes...",
		},
	})

	require.Len(t, articles, 2)

	assert.Equal(t, "General Provisions", articles[0].Theme)
	assert.Equal(t, "Article 1", articles[0].Label)
	assert.Equal(t, "Scope", articles[0].SubTheme)
	assert.Equal(t, "This Regulation applies to...", articles[0].Content)
	assert.Equal(t, 0, articles[0].Seq)

	assert.Equal(t, "Article 2", articles[1].Label)
	assert.Equal(t, 1, articles[1].Seq)
}

func TestMerge_ForwardFillsChapterContext(t *testing.T) {
	articles := Merge([]core.StructuredRecord{
		{
			Chapter:     "CHAPTER I",
			ChapterName: "General Provisions",
			Article:     "Article 1",
			ArticleName: "Scope",
			Content:     "First.",
		},
		{
			// Chapter context missing on this row.
			Article:     "Article 2",
			ArticleName: "Definitions",
			Content:     "Second.",
		},
	})

	require.Len(t, articles, 2)
	assert.Equal(t, "General Provisions", articles[1].Theme)
}

func TestMerge_UnparseableLabelFoldsIntoPrevious(t *testing.T) {
	articles := Merge([]core.StructuredRecord{
		{
			ChapterName: "General Provisions",
			Article:     "Article 1",
			ArticleName: "Scope",
			Content:     "Primary text.",
		},
		{
			ChapterName: "General Provisions",
			Article:     "Annex II",
			ArticleName: "Technical standards",
			Content:     "Annex text.",
		},
	})

	require.Len(t, articles, 1)
	assert.Equal(t, "Article 1", articles[0].Label)
	assert.Equal(t, "Primary text. Annex IITechnical standards: Annex text.", articles[0].Content)
}

func TestMerge_OutOfOrderAlwaysFolds(t *testing.T) {
	// The numeric id parses, but the trailing extra text flags the row
	// as a continuation fragment.
	articles := Merge([]core.StructuredRecord{
		{
			ChapterName: "General Provisions",
			Article:     "Article 1",
			ArticleName: "Scope",
			Content:     "Primary text.",
		},
		{
			ChapterName: "General Provisions",
			Article:     "Article 7 shall apply mutatis mutandis",
			ArticleName: "",
			Content:     "Fragment text.",
		},
		{
			ChapterName: "General Provisions",
			Article:     "Article 2",
			ArticleName: "Definitions",
			Content:     "Second article.",
		},
	})

	require.Len(t, articles, 2)
	assert.Equal(t, "Article 1", articles[0].Label)
	assert.Contains(t, articles[0].Content, "Fragment text.")
	assert.Equal(t, "Article 2", articles[1].Label)
}

func TestMerge_AmendmentsTheme(t *testing.T) {
	articles := Merge([]core.StructuredRecord{
		{
			Chapter:     "CHAPTER IX",
			ChapterName: "Transitional and final provisions",
			Article:     "Article 32",
			ArticleName: "Amendments to Regulation (EU) No 1093/2010",
			Content:     "Regulation (EU) No 1093/2010 is amended as follows.",
		},
	})

	require.Len(t, articles, 1)
	assert.Equal(t, AmendmentsTheme, articles[0].Theme)
	assert.Equal(t, "Amendments to Regulation (EU) No 1093/2010", articles[0].SubTheme)
}

func TestMerge_ContinuationWithEmptyContentSkipped(t *testing.T) {
	articles := Merge([]core.StructuredRecord{
		{
			ChapterName: "General Provisions",
			Article:     "Article 1",
			ArticleName: "Scope",
			Content:     "Primary text.",
		},
		{
			ChapterName: "General Provisions",
			Article:     "Article 1 bis",
			ArticleName: "",
			Content:     "",
		},
	})

	require.Len(t, articles, 1)
	assert.Equal(t, "Primary text.", articles[0].Content)
}

func TestMerge_LeadingContinuationDropped(t *testing.T) {
	// A continuation before any true article has no accumulator to fold
	// into and is not emitted on its own.
	articles := Merge([]core.StructuredRecord{
		{
			ChapterName: "General Provisions",
			Article:     "Annex I",
			ArticleName: "List",
			Content:     "Orphan text.",
		},
		{
			ChapterName: "General Provisions",
			Article:     "Article 1",
			ArticleName: "Scope",
			Content:     "Primary text.",
		},
	})

	require.Len(t, articles, 1)
	assert.Equal(t, "Article 1", articles[0].Label)
}

func TestMerge_Idempotent(t *testing.T) {
	first := Merge([]core.StructuredRecord{
		{
			ChapterName: "General Provisions",
			Article:     "Article 1",
			ArticleName: "Scope",
			Content:     "Primary text.",
		},
		{
			ChapterName: "General Provisions",
			Article:     "Article 1 bis",
			ArticleName: "Continuation",
			Content:     "Fragment.",
		},
		{
			ChapterName: "Clearing",
			Article:     "Article 2",
			ArticleName: "Amendments to Regulation (EU) No 648/2012",
			Content:     "Amendment text.",
		},
	})
	require.Len(t, first, 2)

	// Re-express the merged output in the five-column schema and merge
	// again: already-merged articles must not split further.
	rows := make([]core.StructuredRecord, len(first))
	for i, a := range first {
		rows[i] = core.StructuredRecord{
			ChapterName: a.Theme,
			Article:     a.Label,
			ArticleName: a.SubTheme,
			Content:     a.Content,
		}
	}
	second := Merge(rows)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Label, second[i].Label)
		assert.Equal(t, first[i].SubTheme, second[i].SubTheme)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestMerge_PreservesAllText(t *testing.T) {
	rows := []core.StructuredRecord{
		{
			ChapterName: "General Provisions",
			Article:     "Article 1",
			ArticleName: "Scope",
			Content:     "Alpha.",
		},
		{
			ChapterName: "General Provisions",
			Article:     "Article 9 applies",
			ArticleName: "",
			Content:     "Beta.",
		},
		{
			ChapterName: "General Provisions",
			Article:     "Article 2",
			ArticleName: "Definitions",
			Content:     "Gamma.",
		},
	}

	articles := Merge(rows)

	var merged strings.Builder
	for _, a := range articles {
		merged.WriteString(a.Content)
		merged.WriteString(" ")
	}
	for _, row := range rows {
		assert.Contains(t, merged.String(), row.Content)
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	assert.Empty(t, Merge(nil))
}
