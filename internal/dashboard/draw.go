package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/rileyhilliard/sensdash/internal/screen"
	"github.com/rileyhilliard/sensdash/internal/sensors"
)

const (
	title       = "sensdash"
	clockFormat = "15:04:05"
)

// Drawing helpers read d.layout, so they run on the event loop or with the
// job mutex held. Every multi-part write goes through one Batch.

func (d *Dashboard) styles() Styles {
	if d.layout != nil {
		return d.layout.Styles
	}
	return NewStyles(d.dark)
}

func (d *Dashboard) drawHeader(now time.Time) {
	st := d.styles()
	_, cols := d.scr.Size()
	d.scr.Batch(func(p screen.Painter) {
		p.ClearRect(0, 0, headerRows, cols)
		p.Print(0, margin, st.Title.Render(title))
		p.Print(1, 0, st.Rule.Render(strings.Repeat("─", cols)))
	})
	d.drawClock(now)
}

func (d *Dashboard) drawClock(now time.Time) {
	_, cols := d.scr.Size()
	s := now.Format(clockFormat)
	d.scr.Print(0, cols-margin-len(s), d.styles().Clock.Render(s))
}

// pageLabel names the page for the indicator in the rule row.
func (d *Dashboard) pageLabel(page Page) string {
	switch page.Kind {
	case PageHelp:
		return fmt.Sprintf(" help %d/%d ", page.No, d.helpPages())
	case PageList:
		return " sensors "
	case PageStatusBar:
		return " status bar "
	default:
		return fmt.Sprintf(" page %d/%d ", page.No, d.pageCount(PageNormal))
	}
}

func (d *Dashboard) drawPageIndicator(page Page) {
	st := d.styles()
	_, cols := d.scr.Size()
	label := d.pageLabel(page)
	d.scr.Batch(func(p screen.Painter) {
		p.Print(1, 0, st.Rule.Render(strings.Repeat("─", cols)))
		p.Print(1, cols-margin-2-ansi.StringWidth(label), st.PageIndicator.Render(label))
	})
}

// clearContent blanks the sensor grid and the info line.
func (d *Dashboard) clearContent() {
	rows, cols := d.scr.Size()
	d.scr.ClearRect(headerRows, 0, rows-headerRows-1, cols)
}

func (d *Dashboard) drawBanner(msg string) {
	rows, cols := d.scr.Size()
	st := d.styles()
	row := headerRows + (rows-headerRows-footerRows)/2
	col := max(0, (cols-ansi.StringWidth(msg))/2)
	d.scr.Batch(func(p screen.Painter) {
		p.ClearRect(row, 0, 1, cols)
		p.Print(row, col, st.Banner.Render(msg))
	})
}

// drawPage clears the content area and draws page. Runs under lockUpdate.
func (d *Dashboard) drawPage(now time.Time, page Page) {
	d.clearContent()
	switch page.Kind {
	case PageHelp:
		d.unselect()
		d.drawHelp(page.No)
	case PageList:
		d.unselect()
		d.drawList()
	case PageStatusBar:
		d.unselect()
	default:
		d.drawSensors(now, page.No)
	}
	d.drawPageIndicator(page)
}

func (d *Dashboard) drawSensors(now time.Time, pageNo int) {
	lay := d.layout
	if lay == nil {
		return
	}
	for _, s := range lay.Order {
		rec := lay.Records[s]
		if rec.Page == pageNo {
			d.drawSensor(s, rec, false)
		}
	}

	prev := d.selected
	d.selected = nil
	if rec, ok := lay.Records[prev]; ok && prev != nil && rec.Page == pageNo {
		d.selected = prev
		d.selectSensor(now, 0, SelectRelative)
		return
	}
	d.selectSensor(now, 0, SelectAbsolute)
}

// drawSensor draws a grid entry, label and value together.
func (d *Dashboard) drawSensor(s *sensors.Sensor, rec *Record, selected bool) {
	lay := d.layout
	label := rec.Styled
	if selected {
		label = rec.StyledSelected
	}
	value := lay.Styles.Value.Render(padLeft(s.Value().String(), lay.ValueWidth))
	d.scr.Batch(func(p screen.Painter) {
		p.Print(rec.Row, rec.Col, label)
		p.Print(rec.Row, lay.ValueCol(rec), value)
	})
}

// drawLabel redraws only the label, to move the selection marker.
func (d *Dashboard) drawLabel(rec *Record, selected bool) {
	label := rec.Styled
	if selected {
		label = rec.StyledSelected
	}
	d.scr.Print(rec.Row, rec.Col, label)
}

// drawValue redraws a sensor's value wherever it shows on page.
func (d *Dashboard) drawValue(s *sensors.Sensor, rec *Record, page Page) {
	lay := d.layout
	v := s.Value().String()
	onGrid := page.Kind == PageNormal && rec.Page > 0 && rec.Page == page.No
	value := lay.Styles.Value.Render(padLeft(v, lay.ValueWidth))
	d.scr.Batch(func(p screen.Painter) {
		if onGrid {
			p.Print(rec.Row, lay.ValueCol(rec), value)
		}
		for _, x := range rec.Extras {
			printExtra(p, lay.Styles, x, v)
		}
	})
}

func printExtra(p screen.Painter, st Styles, x Extra, v string) {
	col := x.Col
	if x.Item.Header != "" {
		p.Print(x.Row, col, st.BarHeader.Render(x.Item.Header))
		col += ansi.StringWidth(x.Item.Header)
	}
	p.Print(x.Row, col, st.BarValue.Render(padLeft(v, x.Item.Width)))
	col += x.Item.Width
	if x.Item.Footer != "" {
		p.Print(x.Row, col, st.BarHeader.Render(x.Item.Footer))
	}
}

// drawBar redraws the bottom row with every status-bar display.
func (d *Dashboard) drawBar() {
	lay := d.layout
	if lay == nil {
		return
	}
	_, cols := d.scr.Size()
	d.scr.Batch(func(p screen.Painter) {
		p.ClearRect(lay.BarRow, 0, 1, cols)
		for _, sep := range lay.Separators {
			p.Print(sep.Row, sep.Col, lay.Styles.BarSeparator.Render(sep.Item.Header))
		}
		for s, rec := range lay.Records {
			if len(rec.Extras) == 0 {
				continue
			}
			v := s.Value().String()
			for _, x := range rec.Extras {
				printExtra(p, lay.Styles, x, v)
			}
		}
	})
}

// drawList shows every sensor the providers offer, watched ones marked.
func (d *Dashboard) drawList() {
	lay := d.layout
	if lay == nil {
		return
	}
	rows := lay.RowsPerCol
	width := d.layout.Cols - 2*margin
	st := lay.Styles

	watched := make(map[string]bool, len(lay.Records))
	for s := range lay.Records {
		watched[s.Path()] = true
	}

	d.scr.Batch(func(p screen.Painter) {
		for i, desc := range d.available {
			if i == rows-1 && len(d.available) > rows {
				more := fmt.Sprintf("... and %d more (sensdash list shows all)", len(d.available)-i)
				p.Print(lay.Top+i, lay.Left, st.Info.Render(truncate(more, width)))
				break
			}
			mark := "  "
			if watched[desc.Path()] {
				mark = "* "
			}
			line := mark + pad(desc.Path(), lay.LabelWidth) + " " + desc.Description
			p.Print(lay.Top+i, lay.Left, st.Label.Render(truncate(line, width)))
		}
	})
}
