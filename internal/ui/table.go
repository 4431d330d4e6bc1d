package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows aligned by spacing, without borders. Widths are measured
// with lipgloss so styled cells align correctly.
type Table struct {
	rows       [][]string
	colWidths  []int
	colPadding int
	maxWidth   int
}

// NewTable creates a new table with the specified number of columns
func NewTable(cols int) *Table {
	return &Table{
		colWidths:  make([]int, cols),
		colPadding: 2,
	}
}

// SetMaxWidth truncates the last column so rows fit in width. Zero disables it.
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

// AddRow adds a row; missing cells are blank and extra cells are ignored.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.colWidths))
	for i := 0; i < len(t.colWidths) && i < len(cells); i++ {
		row[i] = cells[i]
		if w := lipgloss.Width(cells[i]); w > t.colWidths[i] {
			t.colWidths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table as a string
func (t *Table) String() string {
	if len(t.rows) == 0 {
		return ""
	}

	var sb strings.Builder
	padding := strings.Repeat(" ", t.colPadding)

	lead := 0
	for i := 0; i < len(t.colWidths)-1; i++ {
		lead += t.colWidths[i] + t.colPadding
	}

	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString(padding)
			}
			if i < len(row)-1 {
				sb.WriteString(cell)
				sb.WriteString(strings.Repeat(" ", t.colWidths[i]-lipgloss.Width(cell)))
				continue
			}
			if t.maxWidth > 0 {
				cell = Truncate(cell, t.maxWidth-lead)
			}
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Truncate shortens plain text to width runes, ending with "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
