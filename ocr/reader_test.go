package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBlocks(t *testing.T) {
	dump := `{
		"Blocks": [
			{"BlockType": "PAGE", "Page": 1},
			{"BlockType": "LINE", "Text": "CHAPTER I", "Page": 1},
			{"BlockType": "WORD", "Text": "CHAPTER", "Page": 1},
			{"BlockType": "LINE", "Text": "General Provisions", "Page": 1},
			{"BlockType": "LINE", "Text": "Article 1", "Page": 2}
		]
	}`

	lines, err := ReadBlocks(strings.NewReader(dump))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "CHAPTER I", lines[0].Text)
	assert.Equal(t, 1, lines[0].Page)
	assert.Equal(t, "Article 1", lines[2].Text)
	assert.Equal(t, 2, lines[2].Page)
}

func TestReadBlocks_NoLines(t *testing.T) {
	_, err := ReadBlocks(strings.NewReader(`{"Blocks": [{"BlockType": "PAGE"}]}`))
	assert.ErrorIs(t, err, ErrNoLines)
}

func TestReadBlocks_MalformedJSON(t *testing.T) {
	_, err := ReadBlocks(strings.NewReader(`{"Blocks": [`))
	assert.Error(t, err)
}

func TestReadText(t *testing.T) {
	lines, err := ReadText(strings.NewReader("CHAPTER I\n\nGeneral Provisions\n  Article 1  \n"))
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "Article 1", lines[2].Text)
}

func TestReadText_Empty(t *testing.T) {
	_, err := ReadText(strings.NewReader("\n\n  \n"))
	assert.ErrorIs(t, err, ErrNoLines)
}

func TestReadFile_UnsupportedFormat(t *testing.T) {
	_, err := ReadFile("report.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
