package table

import (
	"strconv"
	"strings"
)

// FormatRow renders a single data row without its trailing newline.
// seq is the 1-based row position.
func FormatRow(seq int, r Record) string {
	return strconv.Itoa(seq) + Delimiter + r.Name + Delimiter + r.Description
}

// Render returns the full contents of a data file: the header followed by
// one row per record, every line newline-terminated.
func Render(d Dataset) []byte {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for i, r := range d {
		b.WriteString(FormatRow(i+1, r))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// RenderList returns one value per line, each followed by '\n'.
// An empty list renders as zero bytes.
func RenderList(values []string) []byte {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(v)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
