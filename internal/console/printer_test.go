package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_FileWritesDelimiterAndContentVerbatim(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.File("file1.txt", []byte("h\n1,Apple,x\n"))

	out := buf.String()
	assert.Contains(t, out, "--- file1.txt ---")
	assert.Contains(t, out, "h\n1,Apple,x\n")
	assert.Less(t, strings.Index(out, "--- file1.txt ---"), strings.Index(out, "1,Apple,x"))
}

func TestPrinter_FileTerminatesUnterminatedContent(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).File("f.txt", []byte("no newline"))

	assert.True(t, strings.HasSuffix(buf.String(), "no newline\n\n"))
}

func TestPrinter_StepAndBanner(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Banner("File Manager")
	p.Step("wrote %d files", 3)
	p.Detail("%d names", 15)

	out := buf.String()
	assert.Contains(t, out, strings.Repeat("=", RuleWidth))
	assert.Contains(t, out, "File Manager")
	assert.Contains(t, out, "✓ wrote 3 files")
	assert.Contains(t, out, "15 names")
}

func TestPrinter_NilWriterDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil).Step("ignored")
	})
}

func TestPrinter_TableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Table([]string{"RUN", "STATUS"}, [][]string{
		{"abc", "succeeded"},
		{"a-much-longer-id", "failed"},
		{"short"},
	})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "RUN               STATUS", lines[0])
	assert.Equal(t, "abc               succeeded", lines[1])
	assert.Equal(t, "a-much-longer-id  failed", lines[2])
	assert.Equal(t, "short             ", lines[3])
}
