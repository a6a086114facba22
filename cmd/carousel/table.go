package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E57373"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9AA5B1"))
)

// table renders rows under headers with aligned columns.
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *table) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var sb strings.Builder
	line := func(style lipgloss.Style, cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			// Width includes padding.
			sb.WriteString(style.Width(widths[i] + 2).Render(cell))
			if i < len(cells)-1 {
				sb.WriteString(mutedStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	line(headerStyle, t.headers)
	for _, row := range t.rows {
		line(cellStyle, row)
	}
	return sb.String()
}
