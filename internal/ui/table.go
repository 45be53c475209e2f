package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column is a fixed-width table column. Right aligns cells to the right,
// for indexes and counts.
type Column struct {
	Title string
	Width int
	Right bool
}

// Row holds one cell per column; missing cells render blank.
type Row []string

// Table renders fixed-width rows. SelIdx highlights one row, -1 for none.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int
	// Empty is shown under the header when there are no rows.
	Empty string
}

func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1, Empty: "(none)"}
}

func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render pads cells before styling so lipgloss never wraps them.
func (t *Table) Render() string {
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cell := lipgloss.NewStyle().Foreground(ColorValue)

	line := func(style lipgloss.Style, values func(int) string) string {
		parts := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			parts[i] = style.Render(fit(values(i), col.Width, col.Right))
		}
		return strings.Join(parts, " ")
	}

	var sb strings.Builder
	sb.WriteString(line(header, func(i int) string { return t.Columns[i].Title }) + "\n")
	sb.WriteString(line(StyleDim, func(i int) string { return strings.Repeat("-", t.Columns[i].Width) }) + "\n")
	if len(t.Rows) == 0 && t.Empty != "" {
		sb.WriteString(StyleMeta.Render(t.Empty) + "\n")
	}
	for r, row := range t.Rows {
		style := cell
		if r == t.SelIdx {
			style = StyleSelected
		}
		sb.WriteString(line(style, func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}) + "\n")
	}
	return sb.String()
}

// fit pads or cuts s to exactly width runes; cut text ends in "…".
func fit(s string, width int, right bool) string {
	r := []rune(s)
	switch {
	case width <= 0:
		return ""
	case len(r) > width:
		return string(r[:width-1]) + "…"
	case right:
		return strings.Repeat(" ", width-len(r)) + s
	default:
		return s + strings.Repeat(" ", width-len(r))
	}
}

// KeyValueBlock renders pairs in a bordered box, keys padded to the longest.
func KeyValueBlock(title string, pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if n := len([]rune(p[0])) + 1; n > width {
			width = n
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fit(p[0]+":", width, false))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}
