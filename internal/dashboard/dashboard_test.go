package dashboard

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensdash/internal/config"
	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
	"github.com/rileyhilliard/sensdash/internal/screen"
	screentest "github.com/rileyhilliard/sensdash/internal/screen/testing"
	"github.com/rileyhilliard/sensdash/internal/sensors"
	sensorstest "github.com/rileyhilliard/sensdash/internal/sensors/testing"
)

// harness drives a Dashboard by hand. Unless a test calls start, the update
// job never runs and scans happen only through scan.
type harness struct {
	t    *testing.T
	reg  *sensors.Registry
	scr  *screentest.FakeScreen
	log  *logger.BufferLogger
	d    *Dashboard
	now  time.Time
	tick time.Duration
}

func newHarness(t *testing.T, rows, cols int, configure func(*config.Config), providers ...sensors.Provider) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.LogFile = ""
	cfg.Theme = config.ThemeDark
	cfg.Watches = nil
	if configure != nil {
		configure(cfg)
	}

	h := &harness{
		t:   t,
		reg: sensors.NewRegistry(logger.Noop(), providers...),
		scr: screentest.NewFakeScreen(rows, cols),
		log: logger.NewBufferLogger(),
		now: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
	d, err := New(h.reg, h.scr, cfg, h.log)
	require.NoError(t, err)
	h.d = d
	return h
}

func (h *harness) watch(pattern string) {
	h.t.Helper()
	watch(h.t, h.reg, pattern, time.Second)
}

// boot does what Run and the start event do, minus the update job.
func (h *harness) boot() {
	h.t.Helper()
	require.NoError(h.t, h.d.recompute())
	h.tick = h.d.layout.Tick
	h.fire(screen.EventInit)
	h.d.drawHeader(h.now)
	h.loop()
}

func (h *harness) fire(ev screen.Event) screen.Result {
	return h.d.Handle(ev, h.now, &screen.Payload{Tick: h.tick})
}

// loop runs a loop event. A new timer is followed by the loop its first
// tick would bring.
func (h *harness) loop() screen.Result {
	p := &screen.Payload{Tick: h.tick}
	res := h.d.Handle(screen.EventLoop, h.now, p)
	if res == screen.ResultNewTimer {
		h.tick = p.Tick
		res = h.d.Handle(screen.EventLoop, h.now, &screen.Payload{Tick: h.tick})
	}
	return res
}

// press sends a key and, like the engine, follows it with a loop event.
func (h *harness) press(k string) screen.Result {
	res := h.d.Handle(screen.EventInput, h.now, &screen.Payload{Key: keyMsg(k), Tick: h.tick})
	if res == screen.ResultExit {
		return res
	}
	return h.loop()
}

func (h *harness) timer(after time.Duration) screen.Result {
	return h.d.Handle(screen.EventTimer, h.now.Add(after), &screen.Payload{Tick: h.tick})
}

// scan runs one update-job pass on the calling goroutine.
func (h *harness) scan(after time.Duration) {
	h.d.job.mu.Lock()
	defer h.d.job.mu.Unlock()
	h.d.scan(h.now.Add(after))
}

func (h *harness) selected() string {
	if s := h.d.Selected(); s != nil {
		return s.Path()
	}
	return ""
}

func (h *harness) watched() []string {
	h.reg.RLock()
	defer h.reg.RUnlock()
	var out []string
	for _, s := range h.reg.Watched() {
		out = append(out, s.Path())
	}
	return out
}

func keyMsg(k string) tea.KeyMsg {
	types := map[string]tea.KeyType{
		"up":     tea.KeyUp,
		"down":   tea.KeyDown,
		"left":   tea.KeyLeft,
		"right":  tea.KeyRight,
		"pgup":   tea.KeyPgUp,
		"pgdown": tea.KeyPgDown,
		"home":   tea.KeyHome,
		"end":    tea.KeyEnd,
		"tab":    tea.KeyTab,
		"esc":    tea.KeyEsc,
		"ctrl+z": tea.KeyCtrlZ,
		"ctrl+l": tea.KeyCtrlL,
	}
	if t, ok := types[k]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestNew_BadStatusBarSpec(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StatusBar = []string{"no colon here"}
	_, err := New(sensors.NewRegistry(nil), screentest.NewFakeScreen(24, 80), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestNew_Theme(t *testing.T) {
	tests := []struct {
		theme      string
		background bool
		want       bool
	}{
		{config.ThemeAuto, true, true},
		{config.ThemeAuto, false, false},
		{config.ThemeDark, false, true},
		{config.ThemeLight, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			h := newHarness(t, 24, 80, func(c *config.Config) { c.Theme = tt.theme })
			h.scr.Dark = tt.background
			d, err := New(h.reg, h.scr, h.d.cfg, nil)
			require.NoError(t, err)
			require.NoError(t, d.recompute())
			assert.Equal(t, tt.want, d.Layout().Styles.Dark)
		})
	}
}

func TestDashboard_NoSensors(t *testing.T) {
	h := newHarness(t, 24, 80, nil)
	h.boot()

	assert.Contains(t, h.scr.Line(0), "sensdash")
	assert.Contains(t, h.scr.Line(0), "12:00:00")
	assert.Contains(t, h.scr.Line(1), "page 1/1")
	for row := 2; row < 24; row++ {
		assert.Empty(t, strings.TrimSpace(h.scr.Line(row)), "row %d", row)
	}
	assert.Empty(t, h.selected())

	h.scan(0)
	assert.Zero(t, h.d.Updates())
}

func TestDashboard_DrawsSensors(t *testing.T) {
	fake := sensorstest.Numbered("fake", 3)
	fake.Set("s1", 42)
	h := newHarness(t, 24, 80, nil, fake)
	h.watch("fake/*")
	h.boot()

	assert.Contains(t, h.scr.Line(2), "fake/s0")
	assert.Contains(t, h.scr.Line(2), "--", "not read yet")
	assert.Contains(t, h.scr.Line(4), "fake/s2")
	assert.Equal(t, "fake/s0", h.selected())
	assert.Contains(t, h.scr.Line(22), "fake/s0  every 1s, next now  fake s0")

	h.scan(0)
	assert.Equal(t, 3, h.d.Updates())
	assert.Contains(t, h.scr.Line(3), "42")
	assert.Contains(t, h.scr.Line(22), "next in 1s")

	fake.Set("s1", 43)
	h.scan(500 * time.Millisecond)
	assert.Equal(t, 3, h.d.Updates(), "nothing due yet")
	assert.Contains(t, h.scr.Line(22), "next in 500ms")

	h.scan(time.Second)
	assert.Equal(t, 4, h.d.Updates(), "only the changed value counts")
	assert.Contains(t, h.scr.Line(3), "43")
}

func TestDashboard_ScanSkipsHiddenPages(t *testing.T) {
	fake := sensorstest.Numbered("fake", 30)
	h := newHarness(t, 24, 80, nil, fake)
	h.watch("fake/*")
	h.boot()

	h.scan(0)
	assert.Equal(t, 1, fake.Reads("s0"))
	assert.Zero(t, fake.Reads("s25"))

	h.press("n")
	h.scan(time.Second)
	assert.Equal(t, 1, fake.Reads("s0"))
	assert.Equal(t, 1, fake.Reads("s25"))
}

func TestDashboard_Selection(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 30))
	h.watch("fake/*")
	h.boot()
	require.Equal(t, "fake/s0", h.selected())

	steps := []struct {
		key  string
		want string
	}{
		{"down", "fake/s1"},
		{"j", "fake/s2"},
		{"up", "fake/s1"},
		{"pgdown", "fake/s19"}, // stops at the page boundary
		{"down", "fake/s19"},
		{"k", "fake/s18"},
		{"home", "fake/s0"},
		{"up", "fake/s0"},
		{"end", "fake/s19"},
		{"pgup", "fake/s0"},
		{"n", "fake/s20"}, // new page selects its first sensor
		{"pgdown", "fake/s29"},
		{"p", "fake/s0"},
	}
	for _, step := range steps {
		h.press(step.key)
		assert.Equal(t, step.want, h.selected(), "after %s", step.key)
	}

	assert.Contains(t, h.scr.Line(22), "fake/s0")
}

func TestDashboard_SelectionMultiColumn(t *testing.T) {
	h := newHarness(t, 24, 80, func(c *config.Config) { c.Layout.MultiColumn = true },
		sensorstest.Numbered("fake", 50))
	h.watch("fake/*")
	h.boot()
	require.Equal(t, 3, h.d.Layout().Columns)

	h.press("right")
	assert.Equal(t, "fake/s20", h.selected())
	h.press("right")
	assert.Equal(t, "fake/s40", h.selected())
	h.press("right")
	assert.Equal(t, "fake/s49", h.selected(), "walks as far as the page allows")
	h.press("left")
	assert.Equal(t, "fake/s29", h.selected())
}

func TestDashboard_Paging(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 50))
	h.watch("fake/*")
	h.boot()

	steps := []struct {
		key  string
		page Page
	}{
		{"n", Page{PageNormal, 2}},
		{"n", Page{PageNormal, 3}},
		{"n", Page{PageNormal, 1}},
		{"p", Page{PageNormal, 3}},
		{"2", Page{PageNormal, 2}},
		{"9", Page{PageNormal, 2}},
		{"?", Page{PageHelp, 1}},
		{"n", Page{PageHelp, 2}},
		{"?", Page{PageNormal, 2}},
	}
	for _, step := range steps {
		h.press(step.key)
		assert.Equal(t, step.page, h.d.State().Page, "after %s", step.key)
	}
	assert.Contains(t, h.scr.Line(1), "page 2/3")
	assert.Contains(t, h.scr.Line(2), "fake/s20")
	assert.False(t, h.d.State().Has(FlagDraw), "loop clears the draw flag")
}

func TestDashboard_HelpPage(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 3))
	h.watch("fake/*")
	h.boot()

	h.press("?")
	assert.Contains(t, h.scr.Line(1), "help 1/2")
	assert.Contains(t, h.scr.Line(2), "Keyboard Shortcuts")
	assert.Contains(t, h.scr.Text(), "Toggle multi-column layout")
	assert.Empty(t, h.selected())

	h.press("n")
	assert.Contains(t, h.scr.Text(), "Settings")
	assert.Contains(t, h.scr.Text(), "3 on 1 pages")
}

func TestDashboard_ListPage(t *testing.T) {
	h := newHarness(t, 24, 80, nil,
		sensorstest.Numbered("fake", 3),
		sensorstest.NewFakeProvider("extra", "a"))
	h.watch("fake/*")
	h.boot()

	h.press("l")
	assert.Equal(t, PageList, h.d.State().Page.Kind)
	assert.Contains(t, h.scr.Line(1), "sensors")
	assert.Contains(t, h.scr.Line(2), "* fake/s0")
	assert.Contains(t, h.scr.Line(2), "fake s0")
	assert.Contains(t, h.scr.Line(5), "extra/a")
	assert.NotContains(t, h.scr.Line(5), "*")
	assert.Empty(t, h.selected())

	h.press("l")
	assert.Equal(t, Page{PageNormal, 1}, h.d.State().Page)
	assert.Equal(t, "fake/s0", h.selected())
}

func TestDashboard_StatusBar(t *testing.T) {
	cpu := sensorstest.NewFakeProvider("cpu", "usage")
	cpu.Set("usage", 12.5)
	h := newHarness(t, 24, 80, nil, cpu, sensorstest.Numbered("fake", 2))
	h.watch("fake/*")
	h.boot()

	assert.Equal(t, []string{"fake/s0", "fake/s1", "cpu/usage"}, h.watched())
	assert.Contains(t, h.scr.Line(23), "cpu     --]")

	h.scan(0)
	assert.Contains(t, h.scr.Line(23), "[cpu   12.5]")
	assert.NotContains(t, h.scr.Text(), "cpu/usage", "implicit watches stay off the grid")

	t.Run("status bar only page", func(t *testing.T) {
		h.press("b")
		assert.Equal(t, PageStatusBar, h.d.State().Page.Kind)
		assert.Contains(t, h.scr.Line(1), "status bar")
		assert.Empty(t, strings.TrimSpace(h.scr.Line(2)))
		assert.Contains(t, h.scr.Line(23), "12.5")

		cpu.Set("usage", 50)
		h.scan(time.Second)
		assert.Contains(t, h.scr.Line(23), "50")
		h.press("b")
	})

	t.Run("explicit only toggle", func(t *testing.T) {
		h.press("O")
		assert.Equal(t, []string{"fake/s0", "fake/s1"}, h.watched())
		assert.Empty(t, strings.TrimSpace(h.scr.Line(23)))

		h.press("O")
		assert.Equal(t, []string{"fake/s0", "fake/s1", "cpu/usage"}, h.watched())
	})
}

func TestDashboard_AddWatch(t *testing.T) {
	gpu := sensorstest.NewFakeProvider("gpu", "temp")
	gpu.Set("temp", 52.5)
	h := newHarness(t, 24, 80, func(c *config.Config) {
		c.StatusBar = []string{"GPU :gpu/temp"}
		c.StatusBarExplicitOnly = true
	}, sensorstest.Numbered("fake", 2), gpu)
	h.watch("fake/*")
	h.boot()
	assert.Empty(t, strings.TrimSpace(h.scr.Line(23)))

	h.scr.Answer(screentest.Answer{Value: "gpu/temp", OK: true}, screentest.Answer{Value: "2s", OK: true})
	h.d.Handle(screen.EventInput, h.now, &screen.Payload{Key: keyMsg("a")})

	assert.Equal(t, []screentest.PromptCall{
		{Label: "Watch pattern: ", Default: ""},
		{Label: "Update period: ", Default: "1s"},
	}, h.scr.Prompts())
	assert.True(t, h.d.State().Has(FlagCompute))

	h.loop()
	assert.False(t, h.d.State().Has(FlagCompute))
	assert.Equal(t, []string{"fake/s0", "fake/s1", "gpu/temp"}, h.watched())
	assert.Contains(t, h.scr.Line(4), "gpu/temp")
	assert.Contains(t, h.scr.Line(23), "[GPU ")

	h.scan(0)
	assert.Contains(t, h.scr.Line(23), "52.5]")

	t.Run("remembers the last answers", func(t *testing.T) {
		h.d.Handle(screen.EventInput, h.now, &screen.Payload{Key: keyMsg("a")})
		prompts := h.scr.Prompts()
		require.Len(t, prompts, 3)
		assert.Equal(t, "gpu/temp", prompts[2].Default)
	})
}

func TestDashboard_AddWatchRejected(t *testing.T) {
	tests := []struct {
		name    string
		answers []screentest.Answer
		prompts int
		warn    bool
	}{
		{"cancelled", nil, 1, false},
		{"empty pattern", []screentest.Answer{{Value: "", OK: true}}, 1, false},
		{"period cancelled", []screentest.Answer{{Value: "extra/*", OK: true}}, 2, false},
		{"bad period", []screentest.Answer{{Value: "extra/*", OK: true}, {Value: "soon", OK: true}}, 2, true},
		{"bad pattern", []screentest.Answer{{Value: "extra/[", OK: true}, {Value: "1s", OK: true}}, 2, true},
		{"no match", []screentest.Answer{{Value: "nothing/*", OK: true}, {Value: "1s", OK: true}}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 24, 80, nil, sensorstest.NewFakeProvider("extra", "a"))
			h.boot()
			h.scr.Answer(tt.answers...)
			h.d.Handle(screen.EventInput, h.now, &screen.Payload{Key: keyMsg("a")})

			assert.Len(t, h.scr.Prompts(), tt.prompts)
			assert.False(t, h.d.State().Has(FlagCompute))
			assert.Equal(t, tt.warn, h.log.HasLevel("warn"))
		})
	}
}

func TestDashboard_DeleteWatch(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 3))
	h.watch("fake/*")
	h.boot()

	h.scr.Answer(screentest.Answer{Value: "fake/s0", OK: true})
	h.press("D")
	assert.Equal(t, "fake/s0", h.scr.Prompts()[0].Default, "exact delete offers the selection")
	assert.Equal(t, []string{"fake/s1", "fake/s2"}, h.watched())
	assert.Equal(t, "fake/s1", h.selected())
	assert.Contains(t, h.scr.Line(2), "fake/s1")
	assert.Empty(t, strings.TrimSpace(h.scr.Line(4)))

	h.scr.Answer(screentest.Answer{Value: "FAKE/S1", OK: true})
	h.press("D")
	assert.Len(t, h.watched(), 2, "exact delete is case-sensitive")

	h.scr.Answer(screentest.Answer{Value: "FAKE/*", OK: true})
	h.press("d")
	assert.Empty(t, h.watched())
	assert.Empty(t, h.selected())
}

func TestDashboard_ExactPromptsWhileJobRuns(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 3))
	h.watch("fake/*")
	h.boot()
	require.NoError(t, h.d.job.start())
	defer func() { assert.NoError(t, h.d.job.halt(time.Second)) }()

	for i := 0; i < 20; i++ {
		h.d.job.wake(h.now.Add(time.Duration(i) * time.Second))
		key := "A"
		if i%2 == 1 {
			key = "D"
		}
		h.d.Handle(screen.EventInput, h.now, &screen.Payload{Key: keyMsg(key)})
	}

	prompts := h.scr.Prompts()
	require.Len(t, prompts, 20)
	for _, p := range prompts {
		assert.Equal(t, "fake/s0", p.Default)
	}
}

func TestDashboard_FamilyChange(t *testing.T) {
	t.Run("stops the scan and recomputes", func(t *testing.T) {
		a := sensorstest.NewFakeProvider("a", "x", "y")
		b := sensorstest.Numbered("b", 3)
		h := newHarness(t, 24, 80, nil, a, b)
		h.watch("a/*")
		h.watch("b/*")
		h.boot()
		h.scan(0)
		require.Equal(t, 5, h.d.Updates())

		b.Add("new")
		h.scan(time.Second)
		assert.Equal(t, 2, a.Reads("y"))
		assert.Equal(t, 2, b.Reads("s0"))
		assert.Equal(t, 1, b.Reads("s1"), "rest of the pass is skipped")
		assert.Equal(t, 1, b.Reads("s2"))
		assert.True(t, h.d.State().Has(FlagCompute))
		assert.Empty(t, h.selected())

		h.loop()
		assert.False(t, h.d.State().Has(FlagCompute))
		assert.Equal(t, "a/x", h.selected())
		assert.Len(t, h.watched(), 5, "new sensors aren't watched implicitly")

		h.scan(2 * time.Second)
		assert.Equal(t, 2, b.Reads("s1"))
	})

	t.Run("drops vanished sensors", func(t *testing.T) {
		b := sensorstest.Numbered("b", 3)
		h := newHarness(t, 24, 80, nil, b)
		h.watch("b/*")
		h.boot()

		b.Remove("s2")
		h.scan(0)
		require.True(t, h.d.State().Has(FlagCompute))

		h.loop()
		assert.Equal(t, []string{"b/s0", "b/s1"}, h.watched())
		assert.Len(t, h.d.Layout().Order, 2)
		assert.Empty(t, strings.TrimSpace(h.scr.Line(4)))
	})
}

func TestDashboard_ColumnsToggle(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 50))
	h.watch("fake/*")
	h.boot()
	require.Equal(t, 3, h.d.Layout().Pages)

	h.press("3")
	h.press("x")
	assert.Equal(t, 3, h.d.Layout().Columns)
	assert.Equal(t, 1, h.d.Layout().Pages)
	assert.Equal(t, Page{PageNormal, 1}, h.d.State().Page, "page clamped to the new count")

	h.press("tab")
	assert.Equal(t, 1, h.d.Layout().Columns)
	assert.Equal(t, 3, h.d.Layout().Pages)
}

func TestDashboard_ThemeToggle(t *testing.T) {
	h := newHarness(t, 24, 80, nil)
	h.boot()
	require.True(t, h.d.Layout().Styles.Dark)

	h.press("t")
	assert.False(t, h.d.Layout().Styles.Dark)
	h.press("t")
	assert.True(t, h.d.Layout().Styles.Dark)
}

func TestDashboard_SuspendAndRedraw(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 2))
	h.watch("fake/*")
	h.boot()

	h.press("ctrl+z")
	assert.Equal(t, 1, h.scr.Suspends())

	h.scr.Clear()
	h.press("ctrl+l")
	assert.Contains(t, h.scr.Line(0), "sensdash")
	assert.Contains(t, h.scr.Line(2), "fake/s0")
}

func TestDashboard_Quit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		h := newHarness(t, 24, 80, nil)
		h.boot()
		assert.Equal(t, screen.ResultExit, h.press(k), k)
	}
}

func TestDashboard_Timer(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		h := newHarness(t, 24, 80, func(c *config.Config) { c.Timeout = 5 * time.Second })
		h.boot()
		assert.Equal(t, screen.ResultContinue, h.timer(4*time.Second))
		assert.Contains(t, h.scr.Line(0), "12:00:04")
		assert.Equal(t, screen.ResultExit, h.timer(5*time.Second))
	})

	t.Run("sensor deadline", func(t *testing.T) {
		h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 1))
		h.watch("fake/*")
		h.boot()

		h.timer(0)
		assert.True(t, h.d.State().Has(FlagCheckUpdates))
		h.loop()
		assert.True(t, h.d.State().Has(FlagCheckUpdates), "check updates stays set")
	})

	t.Run("window resize", func(t *testing.T) {
		h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 30))
		h.watch("fake/*")
		h.boot()

		h.timer(500 * time.Millisecond)
		assert.False(t, h.d.State().Has(FlagCompute), "window check not due")

		h.scr.Resize(40, 100)
		h.timer(time.Second)
		assert.True(t, h.d.State().Has(FlagCompute))
		h.loop()
		assert.Equal(t, 40, h.d.Layout().Rows)
		assert.Equal(t, 1, h.d.Layout().Pages)

		h.scr.Resize(5, 20)
		h.timer(2 * time.Second)
		assert.False(t, h.d.State().Has(FlagCompute), "too small to lay out")
		assert.Equal(t, 40, h.d.Layout().Rows)
	})
}

func TestDashboard_NewTimerOnTickChange(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.NewFakeProvider("fast", "x"))
	h.boot()
	require.Equal(t, time.Second, h.tick)

	watch(t, h.reg, "fast/x", 250*time.Millisecond)
	h.d.setFlags(FlagCompute)
	p := &screen.Payload{Tick: h.tick}
	assert.Equal(t, screen.ResultNewTimer, h.d.Handle(screen.EventLoop, h.now, p))
	assert.Equal(t, 250*time.Millisecond, p.Tick)
	assert.Contains(t, h.scr.Text(), "Please wait...")
}

// scriptRunner plays a fixed sequence of events, the way the screen engine
// would deliver them.
type scriptRunner struct {
	tick   time.Duration
	script func(h screen.Handler)
}

func (r *scriptRunner) Run(_ context.Context, tick time.Duration, h screen.Handler) error {
	r.tick = tick
	r.script(h)
	return nil
}

func TestDashboard_Run(t *testing.T) {
	fake := sensorstest.Numbered("fake", 4)
	logFile := filepath.Join(t.TempDir(), "logs", "sensdash.log")
	h := newHarness(t, 24, 80, func(c *config.Config) { c.LogFile = logFile }, fake)
	h.watch("fake/*")

	var results []screen.Result
	r := &scriptRunner{script: func(handle screen.Handler) {
		now := h.now
		p := &screen.Payload{Tick: time.Second}
		for _, ev := range []screen.Event{screen.EventInit, screen.EventStart, screen.EventLoop} {
			results = append(results, handle(ev, now, p))
		}
		require.Eventually(t, func() bool { return h.d.Updates() == 4 }, time.Second, 10*time.Millisecond)

		results = append(results, handle(screen.EventTimer, now.Add(time.Second), p))
		results = append(results, handle(screen.EventInput, now, &screen.Payload{Key: keyMsg("q")}))
		handle(screen.EventEnd, now, p)
		handle(screen.EventExit, now, p)
	}}

	require.NoError(t, h.d.Run(context.Background(), r))
	assert.Equal(t, time.Second, r.tick)
	assert.Equal(t, []screen.Result{
		screen.ResultContinue, screen.ResultContinue, screen.ResultContinue,
		screen.ResultContinue, screen.ResultExit,
	}, results)
	assert.FileExists(t, logFile)
	assert.Contains(t, h.scr.Line(2), "fake/s0")

	assert.False(t, h.d.job.running.Load())
}

func TestDashboard_RunJobStartFails(t *testing.T) {
	h := newHarness(t, 24, 80, nil, sensorstest.Numbered("fake", 2))
	h.watch("fake/*")

	var started screen.Result
	r := &scriptRunner{script: func(handle screen.Handler) {
		p := &screen.Payload{Tick: time.Second}
		handle(screen.EventInit, h.now, p)
		// A worker that is already running makes the start event's launch fail.
		require.NoError(t, h.d.job.start())
		started = handle(screen.EventStart, h.now, p)
		handle(screen.EventEnd, h.now, p)
		handle(screen.EventExit, h.now, p)
	}}

	err := h.d.Run(context.Background(), r)
	assert.Equal(t, screen.ResultExit, started)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrWorker))
	assert.False(t, h.d.job.running.Load(), "end still stops the worker")
}

func TestDashboard_RunTooSmall(t *testing.T) {
	h := newHarness(t, 5, 20, nil)
	r := &scriptRunner{script: func(screen.Handler) { t.Fatal("runner should not start") }}

	err := h.d.Run(context.Background(), r)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTerminal))
}

func TestFitInfo(t *testing.T) {
	tests := []struct {
		name  string
		width int
		label string
		base  string
		extra string
		want  string
	}{
		{"fits", 80, "fake/s0", "every 1s, next now", "fake s0", "fake/s0  every 1s, next now  fake s0"},
		{"label shortened", 28, "cpu/some_long_label", "every 1s", "x", "cpu/some_long_…  every 1s  x"},
		{"label floor then base", 20, "cpu/some_long_label", "every 1s", "x", "cpu/som…  every …  x"},
		{"base dropped then extra", 10, "cpu/some_long_label", "every 1s", "x", "cpu/som…"},
		{"no extra", 80, "a/b", "every 1s", "", "a/b  every 1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitInfo(tt.width, tt.label, tt.base, tt.extra)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), tt.width)
		})
	}
}

func TestCountdown(t *testing.T) {
	assert.Equal(t, "now", countdown(0))
	assert.Equal(t, "now", countdown(-time.Second))
	assert.Equal(t, "in 400ms", countdown(400*time.Millisecond))
	assert.Equal(t, "in 1s", countdown(time.Second))
	assert.Equal(t, "in 12s", countdown(12400*time.Millisecond))
}
