package compare

// Monitor provides hooks to observe the comparison process.
// Implement this interface to surface progress to a UI or log.
type Monitor interface {
	Start(runID string, oldDocument, newDocument string)
	ThemeStarted(theme string, subThemes int)
	SubThemeMatched(theme, newSubTheme, oldSubTheme string)
	SubThemeUnmatched(theme, subTheme string)
	ThemeSummarized(theme string)
	Finish(report *ComparisonReport)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _, _ string)          {}
func (n *noopMonitor) ThemeStarted(_ string, _ int)         {}
func (n *noopMonitor) SubThemeMatched(_, _, _ string)       {}
func (n *noopMonitor) SubThemeUnmatched(_, _ string)        {}
func (n *noopMonitor) ThemeSummarized(_ string)             {}
func (n *noopMonitor) Finish(_ *ComparisonReport)           {}
