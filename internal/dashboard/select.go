package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/rileyhilliard/sensdash/internal/screen"
	"github.com/rileyhilliard/sensdash/internal/sensors"
)

// SelectMode says how selectSensor reads its offset.
type SelectMode int

const (
	// SelectRelative moves offset steps from the current selection.
	SelectRelative SelectMode = iota
	// SelectAbsolute moves offset steps from the first sensor on the page.
	SelectAbsolute
)

// minInfoLabel is how far the info line may shorten the sensor path.
const minInfoLabel = 8

// selectSensor moves the selection along the display chain of the current
// page. It never leaves the page: walking stops at the last sensor in the
// direction of travel even if steps remain. Caller holds the job mutex.
func (d *Dashboard) selectSensor(now time.Time, offset int, mode SelectMode) bool {
	lay := d.layout
	cur := d.selected
	d.unselect()

	page := d.State().Page
	if lay == nil || page.Special() || page.No < 1 || page.No > len(lay.First) {
		return false
	}

	if rec, ok := lay.Records[cur]; mode == SelectAbsolute || cur == nil || !ok || rec.Page != page.No {
		if mode == SelectRelative {
			offset = 0
		}
		cur = lay.First[page.No-1]
	}

	steps := offset
	if steps < 0 {
		steps = -steps
	}
	for ; steps > 0; steps-- {
		rec := lay.Records[cur]
		next := rec.Next
		if offset < 0 {
			next = rec.Prev
		}
		if next == nil || lay.Records[next].Page != page.No {
			break
		}
		cur = next
	}

	rec := lay.Records[cur]
	d.selected = cur
	d.drawLabel(rec, true)
	d.drawInfo(cur, rec, now)
	return true
}

// unselect removes the marker and the info line. Caller holds the job mutex.
func (d *Dashboard) unselect() {
	s := d.selected
	d.selected = nil
	if s == nil || d.layout == nil {
		return
	}
	if rec, ok := d.layout.Records[s]; ok && rec.Page > 0 && d.State().OnPage(rec.Page) {
		d.drawLabel(rec, false)
	}
	d.clearInfo()
}

func (d *Dashboard) infoRow() int {
	rows, _ := d.scr.Size()
	return rows - footerRows
}

func (d *Dashboard) clearInfo() {
	_, cols := d.scr.Size()
	d.scr.ClearRect(d.infoRow(), 0, 1, cols)
}

func (d *Dashboard) drawInfo(s *sensors.Sensor, rec *Record, now time.Time) {
	_, cols := d.scr.Size()
	base := fmt.Sprintf("every %s, next %s", s.Period(), countdown(s.NextUpdate().Sub(now)))
	line := fitInfo(cols-2*margin, s.Path(), base, rec.Info)
	st := d.layout.Styles
	row := d.infoRow()
	d.scr.Batch(func(p screen.Painter) {
		p.ClearRect(row, 0, 1, cols)
		p.Print(row, margin, st.Info.Render(line))
	})
}

// countdown formats the time until the next read.
func countdown(d time.Duration) string {
	switch {
	case d <= 0:
		return "now"
	case d < 10*time.Second:
		return "in " + d.Round(100*time.Millisecond).String()
	default:
		return "in " + d.Round(time.Second).String()
	}
}

// fitInfo joins the info fields into width cells. When they don't fit the
// label is shortened first (down to minInfoLabel), then the base info, then
// the extra info.
func fitInfo(width int, label, base, extra string) string {
	fields := []string{label, base, extra}
	floors := []int{minInfoLabel, 0, 0}
	for i := range fields {
		over := infoWidth(fields) - width
		if over <= 0 {
			break
		}
		w := ansi.StringWidth(fields[i])
		keep := max(floors[i], w-over)
		if keep >= w {
			continue
		}
		if keep <= 1 {
			fields[i] = ""
			continue
		}
		fields[i] = truncate(fields[i], keep)
	}
	return truncate(joinInfo(fields), width)
}

func joinInfo(fields []string) string {
	var parts []string
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "  ")
}

func infoWidth(fields []string) int {
	return ansi.StringWidth(joinInfo(fields))
}
