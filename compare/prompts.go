package compare

import (
	"fmt"
	"strings"
)

const matchSystemPrompt = "You are an expert in regulatory documents. Answer precisely and only in the requested format."

const analysisSystemPrompt = "You are an expert in regulatory documents. " +
	"Your task is to compare two sub-theme sections (old vs. new) and highlight: " +
	"1. What are the major changes happened between the old and the new version and highlight them. " +
	"2. Do an impact analysis of the identified changes. " +
	"3. The analysis should contain any change in legal interpretation or regulatory impact."

const narrativeStyle = "Provide a concise and structured analysis of regulatory changes that have a " +
	"tangible impact on implementation, compliance, regulatory interpretation, or operational " +
	"execution. The summary should be organized under clear headings. Avoid bullet points and " +
	"ensure the content is written in a continuous, narrative style. Focus on modifications that " +
	"influence practical outcomes, decision-making, or enforcement while eliminating redundancy " +
	"and superficial comparisons. Minor structural, formatting, or linguistic adjustments should " +
	"be ignored unless they materially affect meaning or obligations. The analysis should clearly " +
	"articulate the real-world implications of these changes in a direct and precise manner. " +
	"Overall response should be strictly within 200 words."

// buildMatchPrompt asks for the old sub-theme closest to the given new one.
// The model must answer with the sub-theme name verbatim or the None sentinel.
func buildMatchPrompt(subTheme string, oldSubThemes []string) string {
	return fmt.Sprintf(`You are given a list of sub-themes from an old document and a sub-theme from the latest document.
Please return the sub-theme that closely matches from the list. If none match, return 'None'.

List of old sub-themes:
%s

Sub-theme from latest document:
%s

Final output should be just the sub-theme name or 'None'.`, strings.Join(oldSubThemes, "\n"), subTheme)
}

// buildAnalysisPrompt asks for a difference and impact analysis of a matched pair.
func buildAnalysisPrompt(oldContent, newContent string) string {
	return fmt.Sprintf(`Old proposed content:
%s

New proposed content:
%s

%s`, oldContent, newContent, narrativeStyle)
}

// buildThemeSummaryPrompt rolls the sub-theme analyses of one theme into a summary.
func buildThemeSummaryPrompt(theme string, analyses []SubThemeAnalysis) string {
	var sb strings.Builder
	for _, a := range analyses {
		fmt.Fprintf(&sb, "Sub-theme: %s\nAnalysis: %s\n\n", a.NewSubTheme, a.Analysis)
	}

	return fmt.Sprintf(`Your task is to provide an insightful summary of the analysis of theme %q based on the following parameters.
1. What are the major changes happened between the old and the new version and highlight them.
2. Do an impact analysis of the identified changes.
3. The analysis should contain any change in legal interpretation or regulatory impact.

analysis:
%s
%s`, theme, sb.String(), narrativeStyle)
}

// buildDocumentSummaryPrompt rolls the theme summaries into a document-level summary.
func buildDocumentSummaryPrompt(themes []ThemeSummary) string {
	var sb strings.Builder
	for _, theme := range themes {
		fmt.Fprintf(&sb, "Theme: %s\nAnalysis: %s\n\n", theme.Theme, theme.Summary)
	}

	return fmt.Sprintf(`Your task is to generate a structured and insightful document-level summary of the regulations. The summary should follow these key points:

Overview of the Enacted Regulation: Begin with a concise summary of the new regulatory document, outlining its scope, objectives, and key themes.

Major Changes and Regulatory Priorities: Identify and highlight the most significant modifications. Focus on changes in regulatory requirements, compliance obligations, enforcement priorities, and any shifts in legislative intent.

Impact Analysis: Assess the implications of these changes, considering their effect on compliance, enforcement, and operational execution. This should include any shifts in legal interpretation, regulatory burden, or strategic adjustments that organizations must undertake.

Analysis Data:
%s
The summary should be written in a structured, narrative format under clear headings, avoiding bullet points. Prioritize substantial regulatory changes that have a tangible impact on implementation, decision-making, and enforcement. Minor modifications related to formatting, structure, or wording should be ignored unless they materially alter obligations or regulatory intent. Ensure the analysis is direct, precise, and focused on the real-world consequences of these regulatory updates. Overall response should be strictly within 500 words.`, sb.String())
}
