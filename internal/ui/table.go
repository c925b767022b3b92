package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// maxColumnWidth caps auto-sized columns.
const maxColumnWidth = 60

// RenderTable renders a static table with a header row. Columns are as
// wide as their widest cell, up to maxColumnWidth. Returns "" when there
// are no rows.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		w := ansi.StringWidth(h)
		for _, r := range rows {
			if i < len(r) {
				w = max(w, ansi.StringWidth(r[i]))
			}
		}
		cols[i] = table.Column{Title: h, Width: min(w, maxColumnWidth)}
	}

	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(trows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true)
	// Unfocused tables still style the cursor row.
	st.Selected = lipgloss.NewStyle()
	t.SetStyles(st)

	return t.View()
}
