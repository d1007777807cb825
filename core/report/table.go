// Package report renders analysis results as text tables, JSON, and plots.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// Table is a titled grid of pre-formatted cells.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// AddRow appends one row of cells.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table as tab-aligned text with upper-case headers and a
// dash rule beneath them.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWidth(w, 0)
}

// RenderWidth renders like Render but truncates lines wider than width runes.
// A width of 0 disables truncation.
func (t *Table) RenderWidth(w io.Writer, width int) error {
	var buf strings.Builder
	if t.Title != "" {
		fmt.Fprintln(&buf, t.Title)
	}

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	headers := make([]string, len(t.Headers))
	rule := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = strings.ToUpper(h)
		rule[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	out := buf.String()
	if width > 0 {
		lines := strings.Split(out, "\n")
		for i, line := range lines {
			if runes := []rune(line); len(runes) > width {
				lines[i] = string(runes[:width])
			}
		}
		out = strings.Join(lines, "\n")
	}
	_, err := io.WriteString(w, out)
	return err
}

// JSON writes v as indented JSON, the envelope behind every command's --json
// flag.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TerminalWidth reports the column count of f when it is a terminal, 0
// otherwise.
func TerminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
