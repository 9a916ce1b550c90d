package table

import "strings"

// NameColumn is the zero-based index of the name field.
const NameColumn = 1

// Skip reasons reported by ParseNames. The values appear in traces; do not
// rename.
const (
	SkipBlankLine    = "BlankLine"
	SkipTooFewFields = "TooFewFields"
	SkipEmptyName    = "EmptyName"
)

// SkippedLine describes a data line that produced no name.
type SkippedLine struct {
	// Line is the 1-based line number within the file (the header is line 1).
	Line   int
	Reason string
}

// Lines splits content into lines the way a line-oriented reader would.
// "\r\n" and a lone "\r" both end a line. A trailing line ending does not
// produce an extra empty line, and an empty input has no lines.
func Lines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ParseNames extracts the name column from a data file.
//
// The first line is treated as a header and ignored without inspection.
// Every other line is trimmed and split on Delimiter; lines with fewer
// than two fields, or whose trimmed name is empty, are skipped. Skips are
// not errors.
func ParseNames(content []byte) (names []string, skipped []SkippedLine) {
	lines := Lines(string(content))
	if len(lines) <= 1 {
		return nil, nil
	}
	for i, raw := range lines[1:] {
		lineNo := i + 2
		line := strings.TrimSpace(raw)
		if line == "" {
			skipped = append(skipped, SkippedLine{Line: lineNo, Reason: SkipBlankLine})
			continue
		}
		fields := strings.Split(line, Delimiter)
		if len(fields) <= NameColumn {
			skipped = append(skipped, SkippedLine{Line: lineNo, Reason: SkipTooFewFields})
			continue
		}
		name := strings.TrimSpace(fields[NameColumn])
		if name == "" {
			skipped = append(skipped, SkippedLine{Line: lineNo, Reason: SkipEmptyName})
			continue
		}
		names = append(names, name)
	}
	return names, skipped
}
