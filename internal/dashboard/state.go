package dashboard

// PageKind says what the content area shows.
type PageKind int

const (
	PageNormal PageKind = iota
	PageHelp
	PageList
	PageStatusBar
)

// String returns a human-readable page kind.
func (k PageKind) String() string {
	switch k {
	case PageNormal:
		return "normal"
	case PageHelp:
		return "help"
	case PageList:
		return "list"
	case PageStatusBar:
		return "status bar"
	default:
		return "unknown"
	}
}

// Page is the active page. No is 1-based and only meaningful for the
// normal and help kinds.
type Page struct {
	Kind PageKind
	No   int
}

// Special reports whether the page is anything but the sensor grid.
func (p Page) Special() bool { return p.Kind != PageNormal }

// Flags are pending actions for the next loop iteration.
type Flags uint8

const (
	// FlagDraw redraws the content area.
	FlagDraw Flags = 1 << iota
	// FlagCompute recomputes the layout before drawing.
	FlagCompute
	// FlagCheckUpdates wakes the update job on every loop.
	FlagCheckUpdates
	// FlagDrawSpecial redraws the status bar only.
	FlagDrawSpecial
)

// State is the dashboard's page plus its pending flags. The zero value is
// not usable; start from NewState.
type State struct {
	Page  Page
	Flags Flags
	// saved is the normal page to return to when a special page closes.
	saved int
}

// NewState starts on normal page 1 with a full draw pending.
func NewState() State {
	return State{Page: Page{Kind: PageNormal, No: 1}, Flags: FlagDraw}
}

func (s *State) Set(f Flags)   { s.Flags |= f }
func (s *State) Clear(f Flags) { s.Flags &^= f }

// Has reports whether any of f is set.
func (s State) Has(f Flags) bool { return s.Flags&f != 0 }

// OnPage reports whether normal page n is showing.
func (s State) OnPage(n int) bool { return s.Page.Kind == PageNormal && s.Page.No == n }

// Next advances one page, wrapping from total back to 1. Only normal and
// help pages are numbered.
func (s *State) Next(total int) bool {
	if !s.numbered() || total < 1 {
		return false
	}
	s.Page.No = s.Page.No%total + 1
	s.Set(FlagDraw)
	return true
}

// Prev goes back one page, wrapping from 1 to total.
func (s *State) Prev(total int) bool {
	if !s.numbered() || total < 1 {
		return false
	}
	s.Page.No--
	if s.Page.No < 1 {
		s.Page.No = total
	}
	s.Set(FlagDraw)
	return true
}

// GoTo jumps to page n of the current kind if it exists.
func (s *State) GoTo(n, total int) bool {
	if !s.numbered() || n < 1 || n > total || n == s.Page.No {
		return false
	}
	s.Page.No = n
	s.Set(FlagDraw)
	return true
}

// Clamp keeps the page number within [1, total] after a recompute.
func (s *State) Clamp(total int) {
	if total < 1 {
		total = 1
	}
	if s.Page.No > total {
		s.Page.No = total
	}
	if s.Page.No < 1 {
		s.Page.No = 1
	}
	if s.saved > total {
		s.saved = total
	}
}

// Toggle opens the special page kind, or closes it if it is already open,
// restoring the normal page that was active before.
func (s *State) Toggle(kind PageKind) {
	switch {
	case kind == PageNormal:
		return
	case s.Page.Kind == kind:
		s.Page = Page{Kind: PageNormal, No: s.saved}
		if s.Page.No < 1 {
			s.Page.No = 1
		}
	default:
		if s.Page.Kind == PageNormal {
			s.saved = s.Page.No
		}
		s.Page = Page{Kind: kind, No: 1}
	}
	s.Set(FlagDraw)
}

func (s State) numbered() bool {
	return s.Page.Kind == PageNormal || s.Page.Kind == PageHelp
}
