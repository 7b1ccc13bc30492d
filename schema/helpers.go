package schema

import "strings"

// TruncateLabel shortens a display label to fit a table column, appending an
// ellipsis when cut. Widths below 4 return the raw prefix.
func TruncateLabel(label string, width int) string {
	if width <= 0 || len(label) <= width {
		return label
	}
	if width < 4 {
		return label[:width]
	}
	return label[:width-3] + "..."
}

// FormatTerms joins context terms as "a, b, c" for display.
func FormatTerms(terms []string) string {
	return strings.Join(terms, ", ")
}

// SeverityRank orders severities for comparisons; higher is more severe.
func SeverityRank(s Severity) int {
	switch s {
	case CriticalSeverity:
		return 3
	case HighSeverity:
		return 2
	case MediumSeverity:
		return 1
	default:
		return 0
	}
}
