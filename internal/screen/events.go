package screen

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Event is what the engine tells the handler happened.
type Event int

const (
	// EventInit fires once before the terminal is taken over.
	EventInit Event = iota
	// EventStart fires once the event loop is running.
	EventStart
	// EventLoop closes every iteration: after start, each timer tick, each
	// key and each finished prompt.
	EventLoop
	// EventTimer fires once per tick.
	EventTimer
	// EventInput carries a decoded key in Payload.Key.
	EventInput
	// EventEnd fires when the handler asked to exit, while the terminal is
	// still owned.
	EventEnd
	// EventExit fires after the terminal has been restored.
	EventExit
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventInit:
		return "init"
	case EventStart:
		return "start"
	case EventLoop:
		return "loop"
	case EventTimer:
		return "timer"
	case EventInput:
		return "input"
	case EventEnd:
		return "end"
	case EventExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Result tells the engine what to do after a handler returns.
type Result int

const (
	ResultContinue Result = iota
	// ResultNewTimer replaces the tick with Payload.Tick.
	ResultNewTimer
	ResultExit
)

// Payload is the event-specific data. Tick holds the current period on the
// way in; a handler returning ResultNewTimer writes the new one there.
type Payload struct {
	Key  tea.KeyMsg
	Tick time.Duration
}

// Handler receives every event along with the time it fired.
type Handler func(ev Event, now time.Time, p *Payload) Result
