// Package tableutil renders aligned, optionally colored text tables.
package tableutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/liggitt/tabwriter"
)

// New creates a tabwriter with gitsync's default spacing settings. With
// stripEscape, cells wrapped by termstyle.Colorize keep their escapes out of
// width calculations.
func New(out io.Writer, stripEscape bool) *tabwriter.Writer {
	var flags uint
	if stripEscape {
		flags = tabwriter.StripEscape
	}
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', flags)
}

// PrintHeaders writes a tab-separated header row unless disabled.
func PrintHeaders(w io.Writer, noHeaders bool, headers string) error {
	if noHeaders {
		return nil
	}
	_, err := fmt.Fprintln(w, headers)
	return err
}

// Table accumulates rows for a single aligned render.
type Table struct {
	Headers     []string
	NoHeaders   bool
	StripEscape bool
	rows        [][]string
}

// Append adds a row. Tabs and newlines inside cells are replaced by spaces.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(cell)
	}
	t.rows = append(t.rows, row)
}

// Len reports the number of rows appended.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table to out.
func (t *Table) Render(out io.Writer) error {
	w := New(out, t.StripEscape)
	if err := PrintHeaders(w, t.NoHeaders, strings.Join(t.Headers, "\t")); err != nil {
		return err
	}
	for _, row := range t.rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}
