package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders rows under bold headers with aligned columns
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		noColor: noColor,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if t.noColor {
		bold.DisableColor()
		gray.DisableColor()
	}

	for i, header := range t.headers {
		if i == len(t.headers)-1 {
			bold.Fprint(t.writer, header)
			break
		}
		bold.Fprint(t.writer, padRight(header, widths[i]))
		fmt.Fprint(t.writer, "  ")
	}
	fmt.Fprintln(t.writer)

	for i, width := range widths {
		gray.Fprint(t.writer, strings.Repeat("─", width))
		if i < len(widths)-1 {
			gray.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		cells := make([]string, 0, len(widths))
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i == len(row)-1 {
				cells = append(cells, cell)
			} else {
				cells = append(cells, padRight(cell, widths[i]))
			}
		}
		fmt.Fprintln(t.writer, strings.Join(cells, "  "))
	}
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// KeyValues renders aligned "key: value" lines
func KeyValues(w io.Writer, noColor bool, pairs ...[2]string) {
	maxKeyWidth := 0
	for _, kv := range pairs {
		if len(kv[0]) > maxKeyWidth {
			maxKeyWidth = len(kv[0])
		}
	}

	cyan := color.New(color.FgCyan)
	if noColor {
		cyan.DisableColor()
	}
	for _, kv := range pairs {
		cyan.Fprint(w, padRight(kv[0]+":", maxKeyWidth+1))
		fmt.Fprintf(w, " %s\n", kv[1])
	}
}

// List renders items as a bulleted or numbered list
func List(w io.Writer, items []string, numbered, noColor bool) {
	blue := color.New(color.FgBlue)
	if noColor {
		blue.DisableColor()
	}

	for i, item := range items {
		if numbered {
			blue.Fprintf(w, "%d. %s\n", i+1, item)
		} else {
			blue.Fprintf(w, "- %s\n", item)
		}
	}
}

// Header renders a bold title
func Header(w io.Writer, title string, noColor bool) {
	green := color.New(color.Bold, color.FgGreen)
	if noColor {
		green.DisableColor()
	}
	green.Fprintln(w, title)
}
