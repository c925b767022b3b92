package screen

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
)

// DefaultTick is used when Run is given a non-positive period.
const DefaultTick = time.Second

// Engine owns the terminal for one dashboard session: it runs the bubbletea
// program, turns its messages into handler events and renders the canvas.
//
// Print, ClearRect, Clear and Batch are safe from any goroutine. Prompt and
// Suspend must be called from the handler, which runs on the event loop.
type Engine struct {
	canvas *Canvas
	in     io.Reader
	out    io.Writer
	rows   int
	cols   int
	dark   *bool
	log    logger.Logger

	// Event loop only.
	pending []tea.Cmd
	prompt  *prompt

	repaint chan struct{}
}

type prompt struct {
	input textinput.Model
	done  func(value string, ok bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSize fixes the initial geometry instead of querying the terminal. The
// output does not need to be a TTY.
func WithSize(rows, cols int) Option {
	return func(e *Engine) { e.rows, e.cols = rows, cols }
}

// WithDarkBackground skips background sampling.
func WithDarkBackground(dark bool) Option {
	return func(e *Engine) { e.dark = &dark }
}

// WithInput sets where keys are read from. Defaults to stdin.
func WithInput(r io.Reader) Option {
	return func(e *Engine) { e.in = r }
}

// WithOutput sets where the screen is drawn. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.out = w }
}

// WithLogger sets the engine's logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New prepares an engine. Unless WithSize is given, the output must be an
// interactive terminal; otherwise an ErrTerminal error is returned so the
// caller can fall back to plain output.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		in:      os.Stdin,
		out:     os.Stdout,
		log:     logger.Default(),
		repaint: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.rows == 0 || e.cols == 0 {
		rows, cols, err := querySize(e.in, e.out)
		if err != nil {
			return nil, err
		}
		e.rows, e.cols = rows, cols
	}

	// Sample before bubbletea owns stdin; the answer would otherwise arrive
	// as key presses.
	if e.dark == nil {
		dark := termenv.NewOutput(e.out).HasDarkBackground()
		e.dark = &dark
	}

	e.canvas = NewCanvas(e.rows, e.cols)
	e.canvas.SetOnChange(func() {
		select {
		case e.repaint <- struct{}{}:
		default:
		}
	})
	return e, nil
}

func querySize(in io.Reader, out io.Writer) (rows, cols int, err error) {
	for _, stream := range []any{in, out} {
		f, ok := stream.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return 0, 0, errors.New(errors.ErrTerminal,
				"Not an interactive terminal",
				"Run sensdash in a terminal, or pipe it to get plain periodic output.")
		}
	}
	f := out.(*os.File)
	cols, rows, err = term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0, errors.WrapWithCode(err, errors.ErrTerminal,
			"Can't read the terminal size", "")
	}
	return rows, cols, nil
}

// Size returns the current screen geometry.
func (e *Engine) Size() (rows, cols int) { return e.canvas.Size() }

func (e *Engine) Print(row, col int, s string)          { e.canvas.Print(row, col, s) }
func (e *Engine) ClearRect(row, col, height, width int) { e.canvas.ClearRect(row, col, height, width) }
func (e *Engine) Clear()                                { e.canvas.Clear() }

// Batch holds the screen lock across fn so its writes are never interleaved
// with another goroutine's.
func (e *Engine) Batch(fn func(p Painter)) { e.canvas.Batch(fn) }

// DarkBackground reports what the terminal background looked like at startup.
func (e *Engine) DarkBackground() bool { return *e.dark }

// Prompt shows a one-line input on the bottom row, pre-filled with def. done
// runs on the event loop with the entered text, or ok=false on Esc. The row
// underneath is restored once the prompt closes.
func (e *Engine) Prompt(label, def string, done func(value string, ok bool)) {
	p := &prompt{input: textinput.New(), done: done}
	p.input.Prompt = label
	p.input.CharLimit = 256
	_, cols := e.canvas.Size()
	if w := cols - ansi.StringWidth(label) - 1; w > 0 {
		p.input.Width = w
	}
	p.input.SetValue(def)
	e.pending = append(e.pending, p.input.Focus())
	e.prompt = p
}

// Prompting reports whether a prompt is open.
func (e *Engine) Prompting() bool { return e.prompt != nil }

// Suspend stops the process group once the handler returns. The terminal is
// restored first and taken back on resume.
func (e *Engine) Suspend() {
	e.pending = append(e.pending, tea.Suspend)
}

func (e *Engine) takePending() []tea.Cmd {
	cmds := e.pending
	e.pending = nil
	return cmds
}

// Run delivers events to h until it returns ResultExit, the context is
// cancelled or the program fails. EventInit fires before the terminal is
// taken over and EventExit after it has been restored.
func (e *Engine) Run(ctx context.Context, tick time.Duration, h Handler) error {
	if tick <= 0 {
		tick = DefaultTick
	}
	p := &Payload{Tick: tick}
	switch h(EventInit, time.Now(), p) {
	case ResultExit:
		h(EventExit, time.Now(), p)
		return nil
	case ResultNewTimer:
		if p.Tick > 0 {
			tick = p.Tick
		}
	}

	m := newModel(e, tick, h)
	prog := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(e.in),
		tea.WithOutput(e.out),
	)

	quit := make(chan struct{})
	go func() {
		for {
			select {
			case <-e.repaint:
				prog.Send(repaintMsg{})
			case <-quit:
				return
			}
		}
	}()

	_, err := prog.Run()
	close(quit)
	m.end()
	h(EventExit, time.Now(), &Payload{Tick: m.tick})

	if err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return errors.WrapWithCode(err, errors.ErrTerminal, "Dashboard terminal error", "")
	}
	return nil
}

type startMsg struct{}

type tickMsg struct {
	gen int
	at  time.Time
}

type repaintMsg struct{}

// model adapts the handler to bubbletea. Every method runs on the event
// loop goroutine.
type model struct {
	e     *Engine
	h     Handler
	tick  time.Duration
	gen   int
	ended bool
}

func newModel(e *Engine, tick time.Duration, h Handler) *model {
	return &model{e: e, h: h, tick: tick}
}

func (m *model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (m *model) schedule() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.ended {
		return m, nil
	}
	switch msg := msg.(type) {
	case startMsg:
		return m, tea.Batch(m.schedule(), m.dispatch(EventStart, &Payload{}))

	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		next := m.schedule()
		return m, tea.Batch(next, m.dispatch(EventTimer, &Payload{}))

	case tea.WindowSizeMsg:
		m.e.canvas.Resize(msg.Height, msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.e.prompt != nil {
			return m, m.updatePrompt(msg)
		}
		return m, m.dispatch(EventInput, &Payload{Key: msg})

	case tea.ResumeMsg:
		return m, m.dispatch(EventLoop, &Payload{})
	}
	return m, nil
}

// dispatch delivers ev, then the loop event closing the iteration.
func (m *model) dispatch(ev Event, p *Payload) tea.Cmd {
	events := []Event{ev, EventLoop}
	if ev == EventLoop {
		events = events[:1]
	}

	var cmds []tea.Cmd
	for _, ev := range events {
		p.Tick = m.tick
		res := m.h(ev, time.Now(), p)
		cmds = append(cmds, m.e.takePending()...)
		switch res {
		case ResultExit:
			m.end()
			return tea.Quit
		case ResultNewTimer:
			if p.Tick > 0 && p.Tick != m.tick {
				m.e.log.Debug("tick %s -> %s", m.tick, p.Tick)
				m.tick = p.Tick
				m.gen++
				cmds = append(cmds, m.schedule())
			}
		}
	}
	return tea.Batch(cmds...)
}

func (m *model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	p := m.e.prompt
	switch msg.Type {
	case tea.KeyEnter:
		m.e.prompt = nil
		p.done(strings.TrimSpace(p.input.Value()), true)
		return m.dispatch(EventLoop, &Payload{})
	case tea.KeyEsc, tea.KeyCtrlC:
		m.e.prompt = nil
		p.done("", false)
		return m.dispatch(EventLoop, &Payload{})
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// end fires EventEnd once.
func (m *model) end() {
	if m.ended {
		return
	}
	m.ended = true
	m.h(EventEnd, time.Now(), &Payload{Tick: m.tick})
}

func (m *model) View() string {
	if m.ended {
		return ""
	}
	view := m.e.canvas.String()
	p := m.e.prompt
	if p == nil {
		return view
	}
	rows, cols := m.e.canvas.Size()
	if rows == 0 {
		return view
	}
	lines := strings.Split(view, "\n")
	lines[len(lines)-1] = fit(p.input.View()+reset, cols)
	return strings.Join(lines, "\n")
}
