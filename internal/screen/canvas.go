package screen

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// reset closes an open style.
const reset = "\x1b[0m"

// Painter writes to a canvas. Coordinates are 0-based cells; writes past
// the edge are clipped.
type Painter interface {
	Print(row, col int, s string)
	ClearRect(row, col, height, width int)
}

// Canvas is a fixed-size grid of styled cells that both the event loop and
// the update job draw into. Every write holds the canvas lock, which doubles
// as the output stream lock: use Batch for multi-write sequences that must
// not interleave.
type Canvas struct {
	mu       sync.Mutex
	rows     int
	cols     int
	cells    [][]cell
	onChange func()
}

// cell is one terminal column. A wide grapheme lives in its first cell and
// marks the next one as a continuation with empty text.
type cell struct {
	text  string
	style string
	wide  bool
	cont  bool
}

var blankCell = cell{text: " "}

// NewCanvas creates a blank canvas.
func NewCanvas(rows, cols int) *Canvas {
	c := &Canvas{}
	c.resize(rows, cols)
	return c
}

// SetOnChange registers fn to run after every write, outside the lock.
func (c *Canvas) SetOnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (rows, cols int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows, c.cols
}

// Resize changes the dimensions, keeping what still fits.
func (c *Canvas) Resize(rows, cols int) {
	c.mu.Lock()
	c.resize(rows, cols)
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Canvas) resize(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	grid := make([][]cell, rows)
	for r := range grid {
		line := make([]cell, cols)
		for i := range line {
			line[i] = blankCell
		}
		if r < len(c.cells) {
			copy(line, c.cells[r])
			// A wide grapheme cut in half by the new edge.
			if cols > 0 && line[cols-1].wide {
				line[cols-1] = blankCell
			}
		}
		grid[r] = line
	}
	c.rows, c.cols, c.cells = rows, cols, grid
}

// Batch runs fn with the lock held so its writes land together.
func (c *Canvas) Batch(fn func(p Painter)) {
	c.mu.Lock()
	fn(painter{c})
	cb := c.onChange
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Print writes s at (row, col).
func (c *Canvas) Print(row, col int, s string) {
	c.Batch(func(p Painter) { p.Print(row, col, s) })
}

// ClearRect blanks a rectangle.
func (c *Canvas) ClearRect(row, col, height, width int) {
	c.Batch(func(p Painter) { p.ClearRect(row, col, height, width) })
}

// Clear blanks the whole canvas.
func (c *Canvas) Clear() {
	c.Batch(func(p Painter) {
		rows, cols := c.rows, c.cols
		p.ClearRect(0, 0, rows, cols)
	})
}

// String renders the canvas as newline-separated lines. Each line opens a
// style only where it changes and closes it before the line ends.
func (c *Canvas) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b strings.Builder
	for r, line := range c.cells {
		if r > 0 {
			b.WriteByte('\n')
		}
		renderLine(&b, line)
	}
	return b.String()
}

// Line returns one line with styling stripped.
func (c *Canvas) Line(row int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row < 0 || row >= len(c.cells) {
		return ""
	}
	var b strings.Builder
	for _, cl := range c.cells[row] {
		b.WriteString(cl.text)
	}
	return b.String()
}

// Text returns the whole canvas with styling stripped.
func (c *Canvas) Text() string {
	return ansi.Strip(c.String())
}

func renderLine(b *strings.Builder, line []cell) {
	style := ""
	for _, cl := range line {
		if cl.cont {
			continue
		}
		if cl.style != style {
			if style != "" {
				b.WriteString(reset)
			}
			b.WriteString(cl.style)
			style = cl.style
		}
		b.WriteString(cl.text)
	}
	if style != "" {
		b.WriteString(reset)
	}
}

type painter struct{ c *Canvas }

// Print decodes s into graphemes and SGR styles and overwrites the cells
// from col on. Other escape sequences are dropped.
func (p painter) Print(row, col int, s string) {
	c := p.c
	if row < 0 || row >= c.rows || col >= c.cols || s == "" {
		return
	}
	line := c.cells[row]
	var (
		state byte
		style string
	)
	for len(s) > 0 && col < c.cols {
		seq, width, n, next := ansi.DecodeSequence(s, state, nil)
		if n == 0 {
			n = 1
		}
		state = next
		s = s[n:]
		switch {
		case width == 0 && isSGR(seq):
			if seq == reset || seq == "\x1b[m" {
				style = ""
			} else {
				style += seq
			}
		case width == 0:
			// Control or non-style sequence.
		case col < 0:
			col += width
		case col+width > c.cols:
			col = c.cols
		default:
			put(line, col, cell{text: seq, style: style, wide: width > 1})
			for i := 1; i < width; i++ {
				put(line, col+i, cell{style: style, cont: true})
			}
			col += width
		}
	}
}

// put overwrites one cell, blanking the other half of any wide grapheme it
// breaks.
func put(line []cell, i int, cl cell) {
	old := line[i]
	if old.cont && i > 0 && !cl.cont {
		line[i-1] = blankCell
	}
	if old.wide && i+1 < len(line) {
		line[i+1] = blankCell
	}
	line[i] = cl
}

func isSGR(seq string) bool {
	return strings.HasPrefix(seq, "\x1b[") && strings.HasSuffix(seq, "m")
}

func (p painter) ClearRect(row, col, height, width int) {
	c := p.c
	if col < 0 {
		width += col
		col = 0
	}
	if col+width > c.cols {
		width = c.cols - col
	}
	if width <= 0 {
		return
	}
	for r := row; r < row+height; r++ {
		if r < 0 || r >= c.rows {
			continue
		}
		for i := col; i < col+width; i++ {
			put(c.cells[r], i, blankCell)
		}
	}
}

// fit pads or truncates s to exactly width cells.
func fit(s string, width int) string {
	w := ansi.StringWidth(s)
	switch {
	case w > width:
		return ansi.Truncate(s, width, "")
	case w < width:
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
