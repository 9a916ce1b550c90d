// Package console renders the human-readable progress output.
//
// Nothing written here is a machine contract; the trace and run records
// serve that purpose.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RuleWidth is the width of banner rules.
const RuleWidth = 60

// Printer writes styled progress lines to an output stream. Styling is
// dropped automatically when the stream is not a terminal.
type Printer struct {
	w      io.Writer
	rule   lipgloss.Style
	title  lipgloss.Style
	ok     lipgloss.Style
	detail lipgloss.Style
	delim  lipgloss.Style
}

// New returns a Printer bound to w. A nil writer discards output.
func New(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		rule:   r.NewStyle().Faint(true),
		title:  r.NewStyle().Bold(true),
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		detail: r.NewStyle().Faint(true),
		delim:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
	}
}

// Banner prints a title framed by two rules.
func (p *Printer) Banner(title string) {
	rule := p.rule.Render(strings.Repeat("=", RuleWidth))
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w, p.title.Render(title))
	fmt.Fprintln(p.w, rule)
}

// Step prints a completed-step marker.
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprintln(p.w, p.ok.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Detail prints an indented secondary line.
func (p *Printer) Detail(format string, args ...any) {
	fmt.Fprintln(p.w, p.detail.Render("  "+fmt.Sprintf(format, args...)))
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// File prints a delimiter naming the file, its content verbatim, and a
// separating blank line.
func (p *Printer) File(name string, content []byte) {
	fmt.Fprintln(p.w, p.delim.Render("--- "+name+" ---"))
	_, _ = p.w.Write(content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w)
}

// Table prints rows under a bold header, left-aligned in columns separated
// by two spaces. Rows shorter than the header are padded with blanks.
func (p *Printer) Table(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	line := func(cells []string, style *lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i < len(widths)-1 {
				cell += strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			}
			if style != nil {
				cell = style.Render(cell)
			}
			parts[i] = cell
		}
		return strings.Join(parts, "  ")
	}
	fmt.Fprintln(p.w, line(header, &p.title))
	for _, row := range rows {
		fmt.Fprintln(p.w, line(row, nil))
	}
}
