package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// SubThemeAnalysis pairs a sub-theme of the new document with its matched
// counterpart in the old document and the resulting change analysis.
type SubThemeAnalysis struct {
	Theme       string
	OldSubTheme string
	NewSubTheme string
	Analysis    string
}

// UnmatchedSubTheme records a sub-theme of the new document for which no old
// counterpart was identified.
type UnmatchedSubTheme struct {
	Theme    string
	SubTheme string
	Content  string
}

// ThemeSummary rolls the sub-theme analyses of one theme into a single
// summary.
type ThemeSummary struct {
	Theme     string
	Summary   string
	SubThemes []SubThemeAnalysis
}

// ComparisonReport is the write-once result of one comparison run.
type ComparisonReport struct {
	RunID           string
	OldDocument     string
	NewDocument     string
	DocumentSummary string
	Themes          []ThemeSummary
	NotFound        []UnmatchedSubTheme
	GeneratedAt     time.Time
}

// WriteSubThemeCSV writes the sub-theme level analyses as CSV.
func (r *ComparisonReport) WriteSubThemeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"theme", "old_sub_theme", "new_sub_theme", "analysis"}); err != nil {
		return err
	}
	for _, theme := range r.Themes {
		for _, st := range theme.SubThemes {
			if err := cw.Write([]string{st.Theme, st.OldSubTheme, st.NewSubTheme, st.Analysis}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteThemeCSV writes the theme level summaries as CSV.
func (r *ComparisonReport) WriteThemeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"theme", "analysis"}); err != nil {
		return err
	}
	for _, theme := range r.Themes {
		if err := cw.Write([]string{theme.Theme, theme.Summary}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNotFoundCSV writes the unmatched sub-themes as CSV.
func (r *ComparisonReport) WriteNotFoundCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"theme", "sub_theme", "new_proposed_content"}); err != nil {
		return err
	}
	for _, nf := range r.NotFound {
		if err := cw.Write([]string{nf.Theme, nf.SubTheme, nf.Content}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the report files into dir, creating it if needed:
// sub_theme_level.csv, theme_level.csv, not_found.csv and document_level.txt.
func (r *ComparisonReport) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"sub_theme_level.csv", r.WriteSubThemeCSV},
		{"theme_level.csv", r.WriteThemeCSV},
		{"not_found.csv", r.WriteNotFoundCSV},
		{"document_level.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, r.DocumentSummary)
			return err
		}},
	}

	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			return err
		}
		if err := file.write(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", file.name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	return nil
}
