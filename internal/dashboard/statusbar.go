package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/sensors"
)

// BarItem describes one mini display of a sensor value.
type BarItem struct {
	Pattern string
	Header  string
	Footer  string
	// Width is the value's width in cells.
	Width int
	// Fixed items sit at Row/Col instead of being packed into the bottom
	// row. A negative Row counts up from the bottom.
	Fixed bool
	Row   int
	Col   int
}

// cells is how wide the item is on screen.
func (b BarItem) cells() int {
	return ansi.StringWidth(b.Header) + b.Width + ansi.StringWidth(b.Footer)
}

// builtinBar is the status bar every session starts with.
func builtinBar() []BarItem {
	return []BarItem{
		{Pattern: "uptime/system", Header: "up ", Width: 11, Fixed: true, Row: 0, Col: 12},
		{Pattern: "cpu/usage", Header: "cpu ", Width: 6},
		{Pattern: "load/1min", Header: "load ", Width: 5},
		{Pattern: "mem/used_pct", Header: "mem ", Width: 6},
		{Pattern: "thermal/zone0", Header: "", Width: 7},
	}
}

// ParseBarSpec parses "description:pattern". The pattern is everything after
// the last colon; the description becomes the header.
func ParseBarSpec(spec string) (BarItem, error) {
	i := strings.LastIndex(spec, ":")
	if i < 0 {
		return BarItem{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Status bar entry '%s' is missing ':'", spec),
			"Write entries as description:pattern, e.g. \"GPU :gpu/temp\".")
	}
	desc, pattern := spec[:i], strings.TrimSpace(spec[i+1:])
	if pattern == "" {
		return BarItem{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Status bar entry '%s' has an empty pattern", spec),
			"Write entries as description:pattern, e.g. \"GPU :gpu/temp\".")
	}
	return BarItem{Pattern: pattern, Header: desc, Width: 8}, nil
}

// barItems returns the built-in table followed by the parsed specs.
func barItems(specs []string) ([]BarItem, error) {
	items := builtinBar()
	for _, spec := range specs {
		item, err := ParseBarSpec(spec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Extra is one placed status-bar display of a sensor.
type Extra struct {
	Item BarItem
	Row  int
	Col  int
}

// barPacker hands out auto-packed slots along the bottom row. Each slot is
// followed by a separator cell; once an item doesn't fit, packing stops and
// every later auto item is dropped.
type barPacker struct {
	row         int
	cols        int
	leftToRight bool
	cursor      int // next separator cell
	seps        []int
	full        bool
}

func newBarPacker(rows, cols int, leftToRight bool) *barPacker {
	p := &barPacker{row: rows - 1, cols: cols, leftToRight: leftToRight}
	if leftToRight {
		p.cursor = 0
	} else {
		p.cursor = cols - 1
	}
	return p
}

// place returns the column for an item of the given width.
func (p *barPacker) place(width int) (col int, ok bool) {
	if p.full || width <= 0 {
		return 0, false
	}
	if p.leftToRight {
		col = p.cursor + 1
		end := col + width // closing separator
		if end > p.cols-1 {
			p.full = true
			return 0, false
		}
		if len(p.seps) == 0 {
			p.seps = append(p.seps, p.cursor)
		}
		p.cursor = end
		p.seps = append(p.seps, end)
		return col, true
	}
	col = p.cursor - width
	start := col - 1
	if start < 0 {
		p.full = true
		return 0, false
	}
	if len(p.seps) == 0 {
		p.seps = append(p.seps, p.cursor)
	}
	p.cursor = start
	p.seps = append(p.seps, start)
	return col, true
}

// separators returns the cells and characters that frame the packed items
// so the bar reads [item|item|item].
func (p *barPacker) separators() []Extra {
	if len(p.seps) == 0 {
		return nil
	}
	out := make([]Extra, len(p.seps))
	last := len(p.seps) - 1
	for i, c := range p.seps {
		ch := "|"
		switch {
		case i == 0 && p.leftToRight, i == last && !p.leftToRight:
			ch = "["
		case i == 0, i == last:
			ch = "]"
		}
		out[i] = Extra{Item: BarItem{Header: ch}, Row: p.row, Col: c}
	}
	return out
}

// attachExtras matches every sensor against items and places an Extra for
// each match. Fixed items are dropped when they fall off screen.
func attachExtras(watched []*sensors.Sensor, items []BarItem, rows, cols int, p *barPacker) map[*sensors.Sensor][]Extra {
	out := make(map[*sensors.Sensor][]Extra)
	for _, s := range watched {
		for _, item := range items {
			if !sensors.Match(item.Pattern, s.Path(), false) {
				continue
			}
			if item.Header == "" {
				item.Header = s.Label + " "
			}
			if item.Fixed {
				row := item.Row
				if row < 0 {
					row += rows
				}
				if row < 0 || row >= rows || item.Col < 0 || item.Col+item.cells() > cols {
					continue
				}
				out[s] = append(out[s], Extra{Item: item, Row: row, Col: item.Col})
				continue
			}
			col, ok := p.place(item.cells())
			if !ok {
				continue
			}
			out[s] = append(out[s], Extra{Item: item, Row: p.row, Col: col})
		}
	}
	return out
}
