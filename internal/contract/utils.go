package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/newsradar/trendwatch/schema"
)

// Rank label constants.
const (
	BreakingValue = "Breaking" // Cross-source corroborated burst
	HotValue      = "Hot"      // Trending with strong rank score
	RisingValue   = "Rising"   // Candidate with positive velocity
	QuietValue    = "Quiet"    // Dormant or decaying
)

// Color variables for console output.
var (
	BreakingColor = color.New(color.FgRed, color.Bold)     // breaking trends are the loudest signal
	HotColor      = color.New(color.FgMagenta, color.Bold) // trending, strong but not corroborated
	RisingColor   = color.New(color.FgYellow)              // candidates on the way up, not bold
	QuietColor    = color.New(color.FgCyan)                // informational / low-priority signal
)

// GetPlainStateLabel returns a plain text label for a trend's current state.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainStateLabel(state schema.TrendState) string {
	switch state {
	case schema.BreakingState:
		return BreakingValue
	case schema.TrendingState:
		return HotValue
	case schema.CandidateState:
		return RisingValue
	default: // dormant, decaying
		return QuietValue
	}
}

// GetColorStateLabel returns a colored text label for console output (table).
// It uses GetPlainStateLabel to determine the string, and then applies the
// appropriate color.
func GetColorStateLabel(state schema.TrendState) string {
	text := GetPlainStateLabel(state)

	switch text {
	case BreakingValue:
		return BreakingColor.Sprint(text)
	case HotValue:
		return HotColor.Sprint(text)
	case RisingValue:
		return RisingColor.Sprint(text)
	default: // "Quiet"
		return QuietColor.Sprint(text)
	}
}

// GetColorSeverityLabel returns a colored severity label for alert tables.
func GetColorSeverityLabel(severity schema.Severity) string {
	text := strings.ToUpper(string(severity))
	switch severity {
	case schema.CriticalSeverity:
		return BreakingColor.Sprint(text)
	case schema.HighSeverity:
		return HotColor.Sprint(text)
	case schema.MediumSeverity:
		return RisingColor.Sprint(text)
	default:
		return QuietColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the trend store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trendwatch.db"
	}
	return filepath.Join(homeDir, ".trendwatch.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
