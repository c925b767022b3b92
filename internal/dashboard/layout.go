package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
	"github.com/rileyhilliard/sensdash/internal/sensors"
)

// Screen geometry around the sensor grid.
const (
	headerRows    = 2
	footerRows    = 2
	margin        = 1
	columnGap     = 2
	minLabelWidth = 6
	ellipsis      = "…"

	defaultValueWidth = 10
	fallbackTick      = time.Second
)

// Record is where and how one sensor is drawn. Row and Col are screen cells
// of the label's first character; the value follows after one space.
type Record struct {
	Row  int
	Col  int
	Page int // 0 for sensors that only feed the status bar

	Label          string // plain, truncated to the label width
	Styled         string // padded and colored
	StyledSelected string
	Info           string

	Prev *sensors.Sensor
	Next *sensors.Sensor

	Extras []Extra
}

// Options are the inputs of one layout pass.
type Options struct {
	Rows int
	Cols int
	Dark bool

	MultiColumn bool
	ValueWidth  int
	LabelWidth  int // cap on label width; 0 fits the longest label
	MinRows     int
	MinCols     int

	Bar            []BarItem
	BarLeftToRight bool
	// ExplicitOnly keeps the status bar to explicitly watched sensors.
	ExplicitOnly bool
	// BarAttempts records the patterns that matched no sensor, so they
	// aren't re-listed on every pass. A pattern that got a watch is not
	// recorded and is watched again if that watch is deleted. May be nil.
	BarAttempts map[string]bool

	DefaultPeriod time.Duration
	Precision     time.Duration
	WindowCheck   time.Duration
	Timeout       time.Duration
}

// Layout is the result of a pass: the record store plus the geometry it was
// built for.
type Layout struct {
	Rows int
	Cols int

	Styles  Styles
	Records map[*sensors.Sensor]*Record
	// Order lists the sensors on the grid in display order.
	Order []*sensors.Sensor
	// First holds the first sensor of each page, index page-1.
	First []*sensors.Sensor

	Pages      int
	Columns    int
	ColWidth   int
	LabelWidth int
	ValueWidth int
	RowsPerCol int
	Top        int
	Left       int

	// SensorPeriod is the merged period of all watched sensors; Tick also
	// covers the window check and the timeout.
	SensorPeriod time.Duration
	Tick         time.Duration

	BarRow     int
	Separators []Extra
}

// PerPage is how many sensors fit on one page.
func (l *Layout) PerPage() int { return l.Columns * l.RowsPerCol }

// ValueCol is the first cell of a record's value.
func (l *Layout) ValueCol(r *Record) int { return r.Col + l.LabelWidth + 1 }

// Compute lays out the watched sensors of src. It also reconciles the
// implicit status-bar watches, so it must run with the update job locked out.
// The returned layout is complete or nil; callers keep their previous one on
// error.
func Compute(src Source, o Options, log logger.Logger) (*Layout, error) {
	if log == nil {
		log = logger.Noop()
	}
	if o.Rows < o.MinRows || o.Cols < o.MinCols {
		return nil, errors.New(errors.ErrLayout,
			fmt.Sprintf("Terminal is %dx%d, need at least %dx%d", o.Cols, o.Rows, o.MinCols, o.MinRows),
			"Enlarge the window or lower layout.min_rows / layout.min_cols.")
	}
	rowsPerCol := o.Rows - headerRows - footerRows
	width := o.Cols - 2*margin
	if rowsPerCol < 1 || width < minLabelWidth+2 {
		return nil, errors.New(errors.ErrLayout,
			fmt.Sprintf("No room for sensors in a %dx%d terminal", o.Cols, o.Rows), "")
	}

	if dropped := src.Refresh(); dropped > 0 {
		log.Info("layout: %d sensors vanished", dropped)
	}
	if o.ExplicitOnly {
		src.RemoveImplicit()
	} else {
		ensureBarWatches(src, o, log)
	}

	sensorPeriod := src.UnifiedPeriod(o.Precision)
	tick := sensors.MergePeriods(o.Precision, sensorPeriod, o.WindowCheck, o.Timeout)
	if tick <= 0 {
		tick = fallbackTick
	}

	src.RLock()
	watched := append([]*sensors.Sensor(nil), src.Watched()...)
	src.RUnlock()

	var explicit []*sensors.Sensor
	natural := 0
	for _, s := range watched {
		if s.Implicit() {
			continue
		}
		explicit = append(explicit, s)
		if w := ansi.StringWidth(s.Path()); w > natural {
			natural = w
		}
	}
	if o.LabelWidth > 0 && natural > o.LabelWidth {
		natural = o.LabelWidth
	}
	if natural < minLabelWidth {
		natural = minLabelWidth
	}

	valueWidth := o.ValueWidth
	if valueWidth <= 0 {
		valueWidth = defaultValueWidth
	}

	n := len(explicit)
	pagesFor := func(columns int) int {
		per := rowsPerCol * columns
		return max(1, (n+per-1)/per)
	}

	columns := 1
	if o.MultiColumn {
		minCol := minLabelWidth + 1 + valueWidth
		maxCols := max(1, (width+columnGap)/(minCol+columnGap))
		best := pagesFor(maxCols)
		for c := 1; c <= maxCols; c++ {
			if pagesFor(c) == best {
				columns = c
				break
			}
		}
	}

	budget := (width - columnGap*(columns-1)) / columns
	colWidth := min(natural+1+valueWidth, budget)
	if valueWidth > colWidth-2 {
		valueWidth = max(1, colWidth-2)
	}
	labelWidth := colWidth - 1 - valueWidth

	st := NewStyles(o.Dark)
	l := &Layout{
		Rows:         o.Rows,
		Cols:         o.Cols,
		Styles:       st,
		Records:      make(map[*sensors.Sensor]*Record, len(watched)),
		Order:        explicit,
		Pages:        pagesFor(columns),
		Columns:      columns,
		ColWidth:     colWidth,
		LabelWidth:   labelWidth,
		ValueWidth:   valueWidth,
		RowsPerCol:   rowsPerCol,
		Top:          headerRows,
		Left:         margin,
		SensorPeriod: sensorPeriod,
		Tick:         tick,
		BarRow:       o.Rows - 1,
	}

	perPage := l.PerPage()
	var prev *sensors.Sensor
	for i, s := range explicit {
		j := i % perPage
		rec := &Record{
			Page: i/perPage + 1,
			Row:  l.Top + j%rowsPerCol,
			Col:  l.Left + (j/rowsPerCol)*(colWidth+columnGap),
			Info: s.Description,
			Prev: prev,
		}
		rec.Label = truncate(s.Path(), labelWidth)
		padded := pad(rec.Label, labelWidth)
		rec.Styled = st.Label.Render(padded)
		rec.StyledSelected = st.LabelSelected.Render(padded)

		if prev != nil {
			l.Records[prev].Next = s
		}
		if j == 0 {
			l.First = append(l.First, s)
		}
		l.Records[s] = rec
		prev = s
	}

	packer := newBarPacker(o.Rows, o.Cols, o.BarLeftToRight)
	for s, extras := range attachExtras(watched, o.Bar, o.Rows, o.Cols, packer) {
		rec, ok := l.Records[s]
		if !ok {
			rec = &Record{Label: s.Path(), Info: s.Description}
			l.Records[s] = rec
		}
		rec.Extras = extras
	}
	l.Separators = packer.separators()

	log.Debug("layout: %d sensors, %d pages, %d columns of %d, tick %s",
		n, l.Pages, columns, colWidth, tick)
	return l, nil
}

// ensureBarWatches adds an implicit watch for every status-bar pattern that
// no watched sensor matches yet.
func ensureBarWatches(src Source, o Options, log logger.Logger) {
	src.RLock()
	watched := append([]*sensors.Sensor(nil), src.Watched()...)
	src.RUnlock()

	for _, item := range o.Bar {
		if o.BarAttempts != nil && o.BarAttempts[item.Pattern] {
			continue
		}
		matched := false
		for _, s := range watched {
			if sensors.Match(item.Pattern, s.Path(), false) {
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		n, err := src.AddWatch(item.Pattern, o.DefaultPeriod, false, true)
		if err != nil || n == 0 {
			// Nothing to watch; don't retry until the bar is reset.
			if o.BarAttempts != nil {
				o.BarAttempts[item.Pattern] = true
			}
		}
		if err != nil {
			log.Warn("status bar %s: %v", item.Pattern, err)
			continue
		}
		log.Debug("status bar %s: %d implicit watches", item.Pattern, n)
	}
}

// truncate shortens s to width cells, ending in an ellipsis when cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, ellipsis)
}

// pad right-pads s with spaces to width cells.
func pad(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// padLeft right-aligns s in width cells, truncating if needed.
func padLeft(s string, width int) string {
	s = truncate(s, width)
	if w := ansi.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}
