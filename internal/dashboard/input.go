package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/sensdash/internal/screen"
)

// keyMap is every binding the dashboard reacts to.
type keyMap struct {
	Quit         key.Binding
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Home         key.Binding
	End          key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	GoToPage     key.Binding
	Columns      key.Binding
	Add          key.Binding
	AddExact     key.Binding
	Delete       key.Binding
	DeleteExact  key.Binding
	Theme        key.Binding
	ExplicitOnly key.Binding
	Help         key.Binding
	List         key.Binding
	BarOnly      key.Binding
	Suspend      key.Binding
	Redraw       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q / Esc", "Quit")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑ / k", "Select previous sensor")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓ / j", "Select next sensor")),
		Left:         key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "Select one column left")),
		Right:        key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "Select one column right")),
		PageUp:       key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "Select first on page")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "Select last on page")),
		Home:         key.NewBinding(key.WithKeys("home"), key.WithHelp("Home", "Select first on page")),
		End:          key.NewBinding(key.WithKeys("end"), key.WithHelp("End", "Select last on page")),
		NextPage:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Next page")),
		PrevPage:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Previous page")),
		GoToPage:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "Go to page")),
		Columns:      key.NewBinding(key.WithKeys("x", "tab"), key.WithHelp("x / Tab", "Toggle multi-column layout")),
		Add:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "Watch sensors matching a pattern")),
		AddExact:     key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "Watch pattern (case-sensitive, selected)")),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "Stop watching a pattern")),
		DeleteExact:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "Stop watching (case-sensitive, selected)")),
		Theme:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "Toggle dark / light colors")),
		ExplicitOnly: key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "Status bar: explicit watches only")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle this help")),
		List:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "Toggle list of available sensors")),
		BarOnly:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "Toggle status bar only")),
		Suspend:      key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("Ctrl+Z", "Suspend")),
		Redraw:       key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("Ctrl+L", "Redraw the screen")),
	}
}

// helpBindings is the order keys are listed on the help page.
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Quit, k.Up, k.Down, k.Left, k.Right, k.Home, k.End,
		k.NextPage, k.PrevPage, k.GoToPage, k.Columns,
		k.Add, k.AddExact, k.Delete, k.DeleteExact,
		k.Theme, k.ExplicitOnly, k.List, k.BarOnly,
		k.Redraw, k.Suspend, k.Help,
	}
}

func (d *Dashboard) onInput(now time.Time, msg tea.KeyMsg) screen.Result {
	k := d.keys
	switch {
	case key.Matches(msg, k.Quit):
		return screen.ResultExit

	case key.Matches(msg, k.Up):
		d.moveSelection(now, -1, SelectRelative)
	case key.Matches(msg, k.Down):
		d.moveSelection(now, 1, SelectRelative)
	case key.Matches(msg, k.Left):
		d.moveSelection(now, -d.rowsPerCol(), SelectRelative)
	case key.Matches(msg, k.Right):
		d.moveSelection(now, d.rowsPerCol(), SelectRelative)
	case key.Matches(msg, k.PageUp):
		d.moveSelection(now, -d.perPage(), SelectRelative)
	case key.Matches(msg, k.PageDown):
		d.moveSelection(now, d.perPage(), SelectRelative)
	case key.Matches(msg, k.Home):
		d.moveSelection(now, 0, SelectAbsolute)
	case key.Matches(msg, k.End):
		d.moveSelection(now, d.perPage()-1, SelectAbsolute)

	case key.Matches(msg, k.NextPage):
		d.update(func(s *State) { s.Next(d.pageCount(s.Page.Kind)) })
	case key.Matches(msg, k.PrevPage):
		d.update(func(s *State) { s.Prev(d.pageCount(s.Page.Kind)) })
	case key.Matches(msg, k.GoToPage):
		n := int(msg.Runes[0] - '0')
		d.update(func(s *State) { s.GoTo(n, d.pageCount(s.Page.Kind)) })

	case key.Matches(msg, k.Columns):
		d.multi = !d.multi
		d.setFlags(FlagCompute)
	case key.Matches(msg, k.Add):
		d.promptAdd(false)
	case key.Matches(msg, k.AddExact):
		d.promptAdd(true)
	case key.Matches(msg, k.Delete):
		d.promptDelete(false)
	case key.Matches(msg, k.DeleteExact):
		d.promptDelete(true)
	case key.Matches(msg, k.Theme):
		d.dark = !d.dark
		d.setFlags(FlagCompute)
	case key.Matches(msg, k.ExplicitOnly):
		d.explicitOnly = !d.explicitOnly
		clear(d.barAttempts)
		d.setFlags(FlagCompute)
		if d.State().Page.Kind == PageHelp {
			d.setFlags(FlagDraw)
		}

	case key.Matches(msg, k.Help):
		d.update(func(s *State) { s.Toggle(PageHelp) })
	case key.Matches(msg, k.List):
		if d.State().Page.Kind != PageList {
			d.available = d.src.Available()
		}
		d.update(func(s *State) { s.Toggle(PageList) })
	case key.Matches(msg, k.BarOnly):
		d.update(func(s *State) { s.Toggle(PageStatusBar) })

	case key.Matches(msg, k.Suspend):
		d.scr.Suspend()
		d.setFlags(FlagDraw)
	case key.Matches(msg, k.Redraw):
		d.scr.Clear()
		d.drawHeader(now)
		d.setFlags(FlagDraw)
	}
	return screen.ResultContinue
}

func (d *Dashboard) moveSelection(now time.Time, offset int, mode SelectMode) {
	d.lockUpdate()
	defer d.unlockUpdate()
	d.selectSensor(now, offset, mode)
}

func (d *Dashboard) rowsPerCol() int {
	if d.layout == nil {
		return 1
	}
	return d.layout.RowsPerCol
}

func (d *Dashboard) perPage() int {
	if d.layout == nil {
		return 1
	}
	return d.layout.PerPage()
}
