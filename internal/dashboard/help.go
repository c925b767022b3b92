package dashboard

import (
	"fmt"

	"github.com/rileyhilliard/sensdash/internal/screen"
)

const helpKeyWidth = 10

// helpLines renders the help page: key bindings, then current settings.
func (d *Dashboard) helpLines() []string {
	st := d.styles()
	lines := []string{st.HelpTitle.Render("Keyboard Shortcuts"), ""}
	for _, b := range d.keys.helpBindings() {
		h := b.Help()
		lines = append(lines, st.HelpKey.Render(pad(h.Key, helpKeyWidth))+" "+st.HelpDesc.Render(h.Desc))
	}

	columns := "single column"
	if d.multi {
		columns = "multi-column"
	}
	theme := "light"
	if d.dark {
		theme = "dark"
	}
	bar := "all watches"
	if d.explicitOnly {
		bar = "explicit watches only"
	}
	lines = append(lines, "", st.HelpTitle.Render("Settings"), "")
	setting := func(name, value string) {
		lines = append(lines, st.HelpKey.Render(pad(name, helpKeyWidth))+" "+st.HelpDesc.Render(value))
	}
	setting("layout", columns)
	setting("colors", theme)
	setting("status bar", bar)
	if d.layout != nil {
		setting("tick", d.layout.Tick.String())
		setting("sensors", fmt.Sprintf("%d on %d pages", len(d.layout.Order), d.layout.Pages))
	}
	return lines
}

// helpPages is how many pages the help text needs.
func (d *Dashboard) helpPages() int {
	per := d.rowsPerCol()
	n := len(d.helpLines())
	return max(1, (n+per-1)/per)
}

func (d *Dashboard) drawHelp(pageNo int) {
	lay := d.layout
	if lay == nil {
		return
	}
	lines := d.helpLines()
	per := lay.RowsPerCol
	start := (pageNo - 1) * per
	if start >= len(lines) {
		return
	}
	end := min(start+per, len(lines))
	width := lay.Cols - 2*margin
	d.scr.Batch(func(p screen.Painter) {
		for i, line := range lines[start:end] {
			p.Print(lay.Top+i, lay.Left, truncate(line, width))
		}
	})
}
