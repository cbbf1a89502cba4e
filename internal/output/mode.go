package output

import (
	"fmt"
	"strings"
)

// Mode selects what a file scan reports. Exactly one mode is active per run.
type Mode int

const (
	// Normal prints every matching line with its matches highlighted.
	Normal Mode = iota
	// CountLines prints the number of matching lines per file.
	CountLines
	// FileNameIfMatch prints the file name once if any line matches.
	FileNameIfMatch
	// FileNameIfNoMatch prints the file name if no line matches.
	FileNameIfNoMatch
)

var modeNames = map[Mode]string{
	Normal:            "normal",
	CountLines:        "count",
	FileNameIfMatch:   "files-with-matches",
	FileNameIfNoMatch: "files-without-match",
}

// String returns the canonical name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a mode name to a Mode. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == normalized {
			return m, nil
		}
	}
	return Normal, fmt.Errorf("unknown output mode %q", s)
}

// ModeFromFlags picks the mode from the mutually exclusive -c, -l and -L
// switches. Setting more than one is an error.
func ModeFromFlags(count, filesWithMatches, filesWithoutMatch bool) (Mode, error) {
	selected := make([]string, 0, 3)
	mode := Normal
	if count {
		selected = append(selected, "--count")
		mode = CountLines
	}
	if filesWithMatches {
		selected = append(selected, "--files-with-matches")
		mode = FileNameIfMatch
	}
	if filesWithoutMatch {
		selected = append(selected, "--files-without-match")
		mode = FileNameIfNoMatch
	}
	if len(selected) > 1 {
		return Normal, fmt.Errorf("flags %s are mutually exclusive", strings.Join(selected, ", "))
	}
	return mode, nil
}

// DisplayOptions are the formatting toggles shared by all workers.
type DisplayOptions struct {
	// ShowFileName prefixes records with the file path. It is off by default
	// when exactly one file is searched.
	ShowFileName bool
	// ShowLineNumber prefixes each matching line with its 1-based number.
	// Only used in Normal mode.
	ShowLineNumber bool
}
