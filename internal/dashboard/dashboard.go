package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/sensdash/internal/config"
	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
	"github.com/rileyhilliard/sensdash/internal/screen"
	"github.com/rileyhilliard/sensdash/internal/sensors"
)

// Source is the watch list the dashboard shows. sensors.Registry is the
// implementation; Watched requires the read or write lock.
type Source interface {
	RLock()
	RUnlock()
	Lock()
	Unlock()
	Watched() []*sensors.Sensor
	Available() []sensors.Descriptor
	AddWatch(pattern string, period time.Duration, caseSensitive, implicit bool) (int, error)
	RemoveWatch(pattern string, caseSensitive bool) int
	RemoveImplicit() int
	Refresh() int
	Update(s *sensors.Sensor, now time.Time) sensors.UpdateStatus
	UnifiedPeriod(tolerance time.Duration) time.Duration
}

// Screen is the drawing surface. Print, ClearRect, Clear and Batch may be
// called from the update job; Prompt and Suspend only from the event
// handler.
type Screen interface {
	Size() (rows, cols int)
	Print(row, col int, s string)
	ClearRect(row, col, height, width int)
	Clear()
	Batch(fn func(p screen.Painter))
	Prompt(label, def string, done func(value string, ok bool))
	Suspend()
	DarkBackground() bool
}

// Runner delivers screen events to a handler until it asks to exit.
type Runner interface {
	Run(ctx context.Context, tick time.Duration, h screen.Handler) error
}

// Dashboard is the controller for one interactive session.
type Dashboard struct {
	src  Source
	scr  Screen
	cfg  *config.Config
	log  logger.Logger
	bar  []BarItem
	keys keyMap

	stMu  sync.Mutex
	state State

	job *job
	// Guarded by job.mu; the event loop is the only writer.
	layout   *Layout
	selected *sensors.Sensor

	// Event loop only.
	dark         bool
	multi        bool
	explicitOnly bool
	barAttempts  map[string]bool
	available    []sensors.Descriptor
	lastPattern  string
	lastPeriod   time.Duration
	started      time.Time
	nextWindow   time.Time
	nextSensors  time.Time
	deadline     time.Time
	restoreLog   func()
	err          error
}

// New builds a dashboard over src drawing to scr.
func New(src Source, scr Screen, cfg *config.Config, log logger.Logger) (*Dashboard, error) {
	if log == nil {
		log = logger.Noop()
	}
	bar, err := barItems(cfg.StatusBar)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		src:          src,
		scr:          scr,
		cfg:          cfg,
		log:          log,
		bar:          bar,
		keys:         defaultKeyMap(),
		state:        NewState(),
		multi:        cfg.Layout.MultiColumn,
		explicitOnly: cfg.StatusBarExplicitOnly,
		barAttempts:  make(map[string]bool),
		lastPeriod:   cfg.SensorTimer,
	}
	switch cfg.Theme {
	case config.ThemeDark:
		d.dark = true
	case config.ThemeLight:
		d.dark = false
	default:
		d.dark = scr.DarkBackground()
	}
	d.job = newJob(d.scan)
	return d, nil
}

// Run computes the first layout and hands the terminal to r. A terminal
// below the configured minimum size is refused with an ErrTerminal error.
func (d *Dashboard) Run(ctx context.Context, r Runner) error {
	rows, cols := d.scr.Size()
	if rows < d.cfg.Layout.MinRows || cols < d.cfg.Layout.MinCols {
		return errors.New(errors.ErrTerminal,
			fmt.Sprintf("Terminal is %dx%d, the dashboard needs %dx%d",
				cols, rows, d.cfg.Layout.MinCols, d.cfg.Layout.MinRows),
			"Enlarge the window or lower layout.min_rows / layout.min_cols.")
	}

	if err := d.recompute(); err != nil {
		return err
	}
	if err := r.Run(ctx, d.layout.Tick, d.Handle); err != nil {
		return err
	}
	return d.err
}

// Handle is the screen event handler.
func (d *Dashboard) Handle(ev screen.Event, now time.Time, p *screen.Payload) screen.Result {
	switch ev {
	case screen.EventInit:
		return d.onInit(now)
	case screen.EventStart:
		return d.onStart(now)
	case screen.EventLoop:
		return d.onLoop(now, p)
	case screen.EventTimer:
		return d.onTimer(now)
	case screen.EventInput:
		return d.onInput(now, p.Key)
	case screen.EventEnd:
		d.onEnd()
	case screen.EventExit:
		d.onExit()
	}
	return screen.ResultContinue
}

// State returns a copy of the current state.
func (d *Dashboard) State() State {
	d.stMu.Lock()
	defer d.stMu.Unlock()
	return d.state
}

// Layout returns the layout in use. Only safe from the event loop or with
// the update job stopped.
func (d *Dashboard) Layout() *Layout { return d.layout }

// Selected returns the selected sensor, if any. It waits out a running scan,
// which may clear the selection when a sensor family changes.
func (d *Dashboard) Selected() *sensors.Sensor {
	d.lockUpdate()
	defer d.unlockUpdate()
	return d.selected
}

// Updates returns how many sensor updates the job has drawn.
func (d *Dashboard) Updates() int { return d.job.Updates() }

func (d *Dashboard) update(fn func(s *State)) {
	d.stMu.Lock()
	defer d.stMu.Unlock()
	fn(&d.state)
}

func (d *Dashboard) setFlags(f Flags) {
	d.update(func(s *State) { s.Set(f) })
}

// lockUpdate keeps the update job out until unlockUpdate. Taking the source's
// write lock once makes sure no scan is still holding its read lock.
func (d *Dashboard) lockUpdate() {
	d.job.mu.Lock()
	d.src.Lock()
	d.src.Unlock()
}

func (d *Dashboard) unlockUpdate() {
	d.job.mu.Unlock()
}

func (d *Dashboard) options() Options {
	rows, cols := d.scr.Size()
	return Options{
		Rows:           rows,
		Cols:           cols,
		Dark:           d.dark,
		MultiColumn:    d.multi,
		ValueWidth:     d.cfg.Layout.ValueWidth,
		LabelWidth:     d.cfg.Layout.LabelWidth,
		MinRows:        d.cfg.Layout.MinRows,
		MinCols:        d.cfg.Layout.MinCols,
		Bar:            d.bar,
		BarLeftToRight: d.cfg.Layout.BarLeftToRight,
		ExplicitOnly:   d.explicitOnly,
		BarAttempts:    d.barAttempts,
		DefaultPeriod:  d.cfg.SensorTimer,
		Precision:      d.cfg.Precision,
		WindowCheck:    d.cfg.WindowCheck,
		Timeout:        d.cfg.Timeout,
	}
}

// recompute swaps in a fresh layout. The previous one stays on error.
func (d *Dashboard) recompute() error {
	d.lockUpdate()
	defer d.unlockUpdate()

	d.update(func(s *State) { s.Clear(FlagCompute) })
	d.unselect()
	lay, err := Compute(d.src, d.options(), d.log)
	if err != nil {
		return err
	}
	d.layout = lay
	d.update(func(s *State) {
		s.Clamp(d.pageCount(s.Page.Kind))
		s.Set(FlagDraw)
	})
	return nil
}

// pageCount is how many pages a numbered page kind has.
func (d *Dashboard) pageCount(kind PageKind) int {
	switch kind {
	case PageNormal:
		if d.layout == nil {
			return 1
		}
		return d.layout.Pages
	case PageHelp:
		return d.helpPages()
	default:
		return 1
	}
}

func (d *Dashboard) onInit(now time.Time) screen.Result {
	d.started = now
	d.nextWindow = now.Add(d.cfg.WindowCheck)
	d.nextSensors = now
	if d.cfg.Timeout > 0 {
		d.deadline = now.Add(d.cfg.Timeout)
	}
	if d.cfg.LogFile != "" {
		restore, err := logger.Redirect(d.cfg.LogFile)
		if err != nil {
			d.log.Warn("keeping log on stderr: %v", err)
		} else {
			d.restoreLog = restore
		}
	}
	return screen.ResultContinue
}

func (d *Dashboard) onStart(now time.Time) screen.Result {
	if err := d.job.start(); err != nil {
		d.err = err
		return screen.ResultExit
	}
	d.scr.Clear()
	d.drawHeader(now)
	d.setFlags(FlagDraw)
	return screen.ResultContinue
}

func (d *Dashboard) onLoop(now time.Time, p *screen.Payload) screen.Result {
	if d.State().Has(FlagCompute) {
		d.drawBanner("Please wait...")
		if err := d.recompute(); err != nil {
			d.log.Warn("layout: %v", err)
			d.setFlags(FlagDraw)
		} else if d.layout.Tick != p.Tick {
			// The draw happens on the first tick of the new timer.
			p.Tick = d.layout.Tick
			return screen.ResultNewTimer
		}
	}

	st := d.State()
	if st.Has(FlagDraw | FlagDrawSpecial) {
		d.lockUpdate()
		if st.Has(FlagDraw) {
			d.drawPage(now, st.Page)
		}
		d.drawBar()
		d.unlockUpdate()
	}
	d.update(func(s *State) { s.Clear(FlagDraw | FlagDrawSpecial) })

	if st.Has(FlagCheckUpdates | FlagDraw | FlagCompute) {
		d.job.wake(now)
	}
	return screen.ResultContinue
}

func (d *Dashboard) onTimer(now time.Time) screen.Result {
	d.drawClock(now)

	if !d.deadline.IsZero() && !now.Before(d.deadline) {
		d.log.Info("timeout of %s reached", d.cfg.Timeout)
		return screen.ResultExit
	}

	if !now.Before(d.nextWindow) {
		d.nextWindow = now.Add(d.cfg.WindowCheck)
		rows, cols := d.scr.Size()
		changed := d.layout == nil || rows != d.layout.Rows || cols != d.layout.Cols
		if changed && rows >= d.cfg.Layout.MinRows && cols >= d.cfg.Layout.MinCols {
			d.log.Debug("window is now %dx%d", cols, rows)
			d.setFlags(FlagCompute)
		}
	}

	if !now.Before(d.nextSensors) {
		period := time.Duration(0)
		if d.layout != nil {
			period = d.layout.SensorPeriod
			if period <= 0 {
				period = d.layout.Tick
			}
		}
		if period <= 0 {
			period = fallbackTick
		}
		d.nextSensors = now.Add(period)
		d.setFlags(FlagCheckUpdates)
	}
	return screen.ResultContinue
}

func (d *Dashboard) onEnd() {
	if err := d.job.halt(jobStopTimeout); err != nil {
		d.log.Error("%v", err)
	}
	d.log.Debug("update job drew %d updates in %s", d.job.Updates(), time.Since(d.started).Round(time.Second))
}

func (d *Dashboard) onExit() {
	if d.restoreLog != nil {
		d.restoreLog()
		d.restoreLog = nil
	}
}

// scan is the update job's pass over the visible sensors. It runs with the
// job mutex held.
func (d *Dashboard) scan(now time.Time) {
	lay := d.layout
	if lay == nil {
		return
	}
	page := d.State().Page

	reload := false
	d.src.RLock()
	for _, s := range d.src.Watched() {
		if d.job.stopping() {
			break
		}
		rec := lay.Records[s]
		if rec == nil || !visible(rec, page) {
			continue
		}
		switch d.src.Update(s, now) {
		case sensors.Updated:
			d.job.updates++
			d.drawValue(s, rec, page)
			if s == d.selected {
				d.drawInfo(s, rec, now)
			}
		case sensors.Unchanged:
			if s == d.selected {
				d.drawInfo(s, rec, now)
			}
		case sensors.NeedsReload:
			reload = true
		}
		if reload {
			break
		}
	}
	d.src.RUnlock()

	if reload {
		d.log.Debug("sensor family changed, recomputing")
		d.setFlags(FlagCompute)
		d.unselect()
	}
}

// visible reports whether the job should check a sensor on page.
func visible(rec *Record, page Page) bool {
	if len(rec.Extras) > 0 {
		return true
	}
	return page.Kind == PageNormal && rec.Page > 0 && rec.Page == page.No
}
